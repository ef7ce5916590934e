package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// TestLogListenStatus_WildcardHost verifies wildcard hosts map to localhost.
func TestLogListenStatus_WildcardHost(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	logListenStatus(l, "0.0.0.0:8788")
	if !strings.Contains(buf.String(), "http://localhost:8788/api/state") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

// TestLogToolStatus_AbsoluteDirectory verifies directories are not accepted as binaries.
func TestLogToolStatus_AbsoluteDirectory(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	logToolStatus(l, "adb", t.TempDir())
	if !strings.Contains(buf.String(), "path is a directory") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

// TestFileExists verifies files and directories are told apart.
func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.json")
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !fileExists(path) || fileExists(dir) || fileExists(filepath.Join(dir, "absent")) {
		t.Fatalf("fileExists misreported")
	}
}
