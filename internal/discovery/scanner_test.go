package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir, err := os.MkdirTemp("", "bugtrack-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create trace files and result folders
	files := []string{
		"checkout/testPay.trace.json",
		"checkout/testPay/error.png",
		"login/testLogin.trace.yaml",
		"login/testLogout.trace.yml",
		"resources/shared.trace.json",
		"videos/testPay.trace.json",
		".cache/old.trace.json",
		"bugtrack-report.json",
		"notes.txt",
	}
	for _, file := range files {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"resources", "videos"})

	t.Run("scans trace files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Should find 3 traces, not the ones in resources/videos/.cache
		if len(results) != 3 {
			t.Fatalf("expected 3 trace files, got %d: %v", len(results), results)
		}
		if results[0] != filepath.Join(tmpDir, "checkout/testPay.trace.json") {
			t.Errorf("expected sorted results, got %v", results)
		}
	})

	t.Run("scans a hidden root", func(t *testing.T) {
		results, err := scanner.Scan(filepath.Join(tmpDir, ".cache"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 trace file, got %d", len(results))
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(tmpDir, "notes.txt"))
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}
