// Package packager zips the detailed results of a test so they can be
// attached to a tracker issue.
package packager

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bugtrack/internal/config"
	"bugtrack/internal/errors"
)

// excludedExtensions are never archived: videos are too big and zip files
// are archives of previous runs.
var excludedExtensions = map[string]bool{
	".avi":  true,
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".zip":  true,
}

// Result is the outcome of packaging. Archive is empty when nothing was
// produced; Err then tells why, unless packaging was disabled.
type Result struct {
	Archive string
	Err     error
}

// OK reports whether an archive was produced.
func (r Result) OK() bool {
	return r.Archive != "" && r.Err == nil
}

// Remove deletes the archive file, if any.
func (r Result) Remove() error {
	if r.Archive == "" {
		return nil
	}
	if err := os.Remove(r.Archive); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ArtifactPackager builds the detailed result archive of a test.
type ArtifactPackager interface {
	Package(ctx context.Context, outputRoot, testName string) Result
}

// ZipPackager copies the test result folder and the shared resources folder
// into a scoped temporary directory and zips it.
type ZipPackager struct {
	logger zerolog.Logger
	// tempDir is where temporary trees and archives go; empty means os.TempDir.
	tempDir string
	// resources is the folder shared by all tests, relative to the output root.
	resources string
}

// New creates a ZipPackager writing temporary files under tempDir.
func New(logger zerolog.Logger, tempDir string) *ZipPackager {
	return &ZipPackager{logger: logger, tempDir: tempDir, resources: config.DefaultResourcesDir}
}

// WithResourcesDir sets the shared resources folder archived with every test.
func (p *ZipPackager) WithResourcesDir(dir string) *ZipPackager {
	if dir != "" {
		p.resources = dir
	}
	return p
}

// Package zips <outputRoot>/<testName> and the shared resources folder.
// The test folder is required; a missing resources folder is tolerated.
// The temporary tree is removed on every path.
func (p *ZipPackager) Package(ctx context.Context, outputRoot, testName string) Result {
	if testName == "" || strings.Contains(testName, "..") {
		return failed(errors.Wrapf(errors.ErrInvalidTrace, "unsafe test name %q", testName))
	}

	outRoot, err := os.MkdirTemp(p.tempDir, "result")
	if err != nil {
		return failed(errors.Wrap(err, "create temporary directory"))
	}
	defer func() {
		if rmErr := os.RemoveAll(outRoot); rmErr != nil {
			p.logger.Warn().Err(rmErr).Str("dir", outRoot).Msg("temporary directory not removed")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return copyTree(gctx, filepath.Join(outputRoot, testName), filepath.Join(outRoot, testName))
	})
	g.Go(func() error {
		if err := copyTree(gctx, filepath.Join(outputRoot, p.resources), filepath.Join(outRoot, p.resources)); err != nil {
			p.logger.Debug().Err(err).Str("test", testName).Msg("resources folder not archived")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return failed(errors.Wrapf(err, "copy results of %s", testName))
	}

	archive, err := os.CreateTemp(p.tempDir, "result*.zip")
	if err != nil {
		return failed(errors.Wrap(err, "create archive"))
	}
	if err := zipFolder(ctx, outRoot, archive); err != nil {
		_ = archive.Close()
		_ = os.Remove(archive.Name())
		return failed(errors.Wrapf(err, "zip results of %s", testName))
	}
	if err := archive.Close(); err != nil {
		_ = os.Remove(archive.Name())
		return failed(errors.Wrap(err, "close archive"))
	}
	return Result{Archive: archive.Name()}
}

func failed(err error) Result {
	return Result{Err: errors.Mark(err, errors.ErrPackaging)}
}

// Disabled never produces an archive.
type Disabled struct{}

// Package returns an empty result.
func (Disabled) Package(context.Context, string, string) Result {
	return Result{}
}

var (
	_ ArtifactPackager = (*ZipPackager)(nil)
	_ ArtifactPackager = Disabled{}
)

// Excluded reports whether a file is left out of archives.
func Excluded(name string) bool {
	return excludedExtensions[strings.ToLower(filepath.Ext(name))]
}

// copyTree copies src into dst, skipping excluded files.
func copyTree(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errors.New("not a directory: " + src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() || Excluded(d.Name()) {
			return nil
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// zipFolder writes every regular file under root into w, with slash separated
// names relative to root.
func zipFolder(ctx context.Context, root string, w io.Writer) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}
