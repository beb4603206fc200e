package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/snonux/jsontranslate/internal/jsontree"
)

// MustParse parses a JSON document or fails the test.
func MustParse(t *testing.T, s string) jsontree.Value {
	t.Helper()

	v, err := jsontree.Parse([]byte(s), 0)
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", s, err)
	}
	return v
}

// AssertJSON checks that actual encodes to the same JSON as expected,
// ignoring insignificant whitespace but not key order.
func AssertJSON(t *testing.T, expected string, actual []byte) {
	t.Helper()

	var want, got bytes.Buffer
	if err := json.Compact(&want, []byte(expected)); err != nil {
		t.Fatalf("Invalid expected JSON %s: %v", expected, err)
	}
	if err := json.Compact(&got, actual); err != nil {
		t.Fatalf("Invalid JSON %s: %v", actual, err)
	}

	if want.String() != got.String() {
		t.Errorf("JSON mismatch\nExpected: %s\nActual:   %s", want.String(), got.String())
	}
}

// CreateTestFile creates a test file with content
func CreateTestFile(t *testing.T, path string, content []byte) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
}

// CaptureOutput captures stdout during test execution
func CaptureOutput(t *testing.T, f func()) string {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		data, _ := io.ReadAll(r)
		done <- data
	}()

	f()

	w.Close()
	os.Stdout = oldStdout

	return string(<-done)
}
