package tracker

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bugtrack/internal/domain"
)

// issueFile is the on-disk layout of the file tracker.
type issueFile struct {
	Issues []domain.Issue `json:"issues"`
}

// ArchiveDir is the folder, next to the issue file, holding the detailed
// results of the stored issues.
const ArchiveDir = "archives"

// File is a Memory tracker persisted to a JSON file after every change.
// It suits local runs without a remote tracker.
type File struct {
	*Memory
	path string
}

// NewFile loads the store at path; a missing file is an empty store.
func NewFile(path string) (*File, error) {
	f := &File{Memory: NewMemory(), path: path}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read issue file: %w", err)
	default:
		var stored issueFile
		if err := json.Unmarshal(data, &stored); err != nil {
			return nil, fmt.Errorf("parse issue file %s: %w", path, err)
		}
		f.issues = stored.Issues
	}

	f.onChange = f.save
	f.keepArchive = f.copyArchive
	return f, nil
}

func (f *File) Type() string { return TypeFile }

// Path returns the location of the store.
func (f *File) Path() string { return f.path }

func (f *File) save(issues []domain.Issue) error {
	data, err := json.MarshalIndent(issueFile{Issues: issues}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create issue dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write issues: %w", err)
	}
	return os.Rename(tmp, f.path)
}

// copyArchive copies the detailed result of issue id into the archive folder.
func (f *File) copyArchive(id, archive string) (string, error) {
	dir := filepath.Join(filepath.Dir(f.path), ArchiveDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(archive)
	if err != nil {
		return "", fmt.Errorf("open detailed result: %w", err)
	}
	defer src.Close()

	kept := filepath.Join(dir, id+filepath.Ext(archive))
	dst, err := os.Create(kept)
	if err != nil {
		return "", fmt.Errorf("create archive copy: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(kept)
		return "", fmt.Errorf("copy detailed result: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close archive copy: %w", err)
	}
	return kept, nil
}

var _ Tracker = (*File)(nil)
