package steps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeTestFile writes content to a file in dir, failing the test on error.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// writeScript writes an executable shell script and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a POSIX shell")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o700); err != nil {
		t.Fatal(err)
	}
	return path
}

// fakeRunner records invocations and answers with a fixed result.
type fakeRunner struct {
	calls    []Invocation
	exitCode int
	stderr   string
	err      error
}

func (f *fakeRunner) Run(_ context.Context, inv Invocation) (*Result, error) {
	f.calls = append(f.calls, inv)
	if f.err != nil {
		return nil, f.err
	}
	return &Result{ExitCode: f.exitCode, StderrTail: []byte(f.stderr)}, nil
}
