package steps

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type commandStep struct {
	name       string
	executable string
	args       []string
	timeout    time.Duration
	runner     Runner
}

// NewCommandStep creates a step that runs an external tool.
func NewCommandStep(name, executable string, args []string, timeout time.Duration, runner Runner) Step {
	return &commandStep{name: name, executable: executable, args: args, timeout: timeout, runner: runner}
}

func (s *commandStep) Name() string { return s.name }

func (s *commandStep) Run(ctx context.Context, sctx StepContext) (*StepResult, error) {
	slog.Info("running command", "step", s.name, "tool", s.executable, "args", s.args, "dir", sctx.WorkDir)

	res, err := s.runner.Run(ctx, Invocation{
		Executable: s.executable,
		Args:       s.args,
		Dir:        sctx.WorkDir,
		Stdout:     sctx.Stdout,
		Stderr:     sctx.Stderr,
		Timeout:    s.timeout,
	})
	if err != nil {
		if res != nil {
			return &StepResult{ExitCode: res.ExitCode}, err
		}
		return nil, err
	}

	slog.Debug("command finished", "step", s.name, "exitCode", res.ExitCode, "duration", res.Duration)

	if res.ExitCode != 0 {
		msg := fmt.Sprintf("%s exited with status %d", s.executable, res.ExitCode)
		if tail := strings.TrimSpace(string(res.StderrTail)); tail != "" {
			msg += "\nstderr: " + tail
		}
		return &StepResult{ExitCode: res.ExitCode}, fmt.Errorf("%w: %s", ErrStepFailed, msg)
	}

	return &StepResult{}, nil
}
