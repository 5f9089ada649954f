package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultStderrTail = 4 << 10
	killGracePeriod   = 5 * time.Second
)

// Invocation is one external process to start.
type Invocation struct {
	Executable string
	Args       []string
	Dir        string
	Stdout     io.Writer
	Stderr     io.Writer
	Timeout    time.Duration // zero waits forever
}

// Result holds the outcome of a finished process.
type Result struct {
	ExitCode   int
	StderrTail []byte // last bytes written to stderr
	Duration   time.Duration
}

// Runner starts external processes. ExecRunner is the real one; tests
// substitute a recorder.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

// ExecRunner runs invocations with os/exec and waits for them to exit.
type ExecRunner struct {
	StderrTail int // bytes of stderr kept for error messages
}

// Run starts inv and waits for it. A non-zero exit status is not an error;
// it is reported in Result.ExitCode. Errors are returned when the executable
// cannot be found, the process cannot start, or ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	path, err := ResolveExecutable(inv.Executable, inv.Dir)
	if err != nil {
		return nil, err
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	limit := r.StderrTail
	if limit <= 0 {
		limit = defaultStderrTail
	}
	tail := &tailWriter{limit: limit}

	cmd := exec.CommandContext(runCtx, path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = writerOrDiscard(inv.Stdout)
	cmd.Stderr = io.MultiWriter(writerOrDiscard(inv.Stderr), tail)
	cmd.WaitDelay = killGracePeriod

	start := time.Now()
	runErr := cmd.Run()
	result := &Result{ExitCode: 0, StderrTail: tail.Bytes(), Duration: time.Since(start)}

	if runErr == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return result, fmt.Errorf("running %s: %w", inv.Executable, ctx.Err())
	}
	if runCtx.Err() != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%w: %s timed out after %s", ErrStepFailed, inv.Executable, inv.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	return result, fmt.Errorf("executing %s: %w", inv.Executable, runErr)
}

// ResolveExecutable locates name the way the release expects: a bare name is
// looked up in PATH, anything with a path separator is taken relative to dir.
func ResolveExecutable(name, dir string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: empty tool path", ErrToolNotFound)
	}

	if !strings.ContainsAny(name, `/\`) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
		}
		return path, nil
	}

	path := filepath.FromSlash(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrToolNotFound, name)
	}
	return path, nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}

// tailWriter keeps the last limit bytes written to it.
type tailWriter struct {
	buf   bytes.Buffer
	limit int
}

func (w *tailWriter) Write(p []byte) (int, error) {
	n := len(p)
	if len(p) >= w.limit {
		w.buf.Reset()
		w.buf.Write(p[len(p)-w.limit:])
		return n, nil
	}
	if over := w.buf.Len() + len(p) - w.limit; over > 0 {
		w.buf.Next(over)
	}
	w.buf.Write(p)
	return n, nil
}

func (w *tailWriter) Bytes() []byte {
	return bytes.Clone(w.buf.Bytes())
}
