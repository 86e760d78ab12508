package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bugtrack/internal/parser"
)

// Scanner scans an output directory for trace files
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all trace files under root, sorted by path
func (s *Scanner) Scan(root string) ([]string, error) {
	var traces []string

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("output path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("output path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			// Skip hidden directories (starting with .)
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}

			if s.skipDirs[name] {
				return filepath.SkipDir
			}

			return nil
		}

		if parser.IsTrace(d.Name()) {
			traces = append(traces, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(traces)
	return traces, nil
}
