package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/systemstart/mkrelease/pkg/plan"
	"github.com/systemstart/mkrelease/pkg/steps"
)

// Options configure a release run.
type Options struct {
	Runner steps.Runner // defaults to steps.ExecRunner
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes the plan phase by phase, one step at a time. The first
// failing required step stops the run; every later step is reported as
// skipped. The returned report is never nil.
func Run(ctx context.Context, p *plan.Plan, opts Options) (*Report, error) {
	if opts.Runner == nil {
		opts.Runner = &steps.ExecRunner{}
	}

	report := newReport(uuid.NewString(), p)
	log := slog.With("run", report.RunID)
	log.Info("starting release", "root", p.Root, "steps", len(report.Steps))

	err := runPhases(ctx, log, p, opts, report)
	report.finish(err)

	if err != nil {
		log.Error("release failed", "error", err, "duration", report.Duration)
		return report, err
	}

	report.Artifacts, err = collectArtifacts(p.Root, p.Artifacts)
	if err != nil {
		log.Warn("could not collect artifacts", "error", err)
	}
	log.Info("release succeeded", "duration", report.Duration, "artifacts", len(report.Artifacts))
	return report, nil
}

func runPhases(ctx context.Context, log *slog.Logger, p *plan.Plan, opts Options, report *Report) error {
	for _, phase := range p.Phases {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir, err := enterPhase(p.Root, phase)
		if err != nil {
			return err
		}
		log.Info("entering phase", "phase", phase.Name, "dir", dir)

		for _, s := range phase.Steps {
			if err := runOne(ctx, log, s, dir, opts, report); err != nil {
				return err
			}
		}

		log.Debug("returning to project root", "phase", phase.Name, "root", p.Root)
	}
	return nil
}

// enterPhase resolves the working directory of phase against root.
// The process working directory is never changed; each step receives dir.
func enterPhase(root string, phase plan.Phase) (string, error) {
	dir := phase.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", &steps.PhaseError{Phase: phase.Name, Dir: dir, Err: fmt.Errorf("%w: %w", steps.ErrDirectoryChange, err)}
	}
	if !info.IsDir() {
		return "", &steps.PhaseError{Phase: phase.Name, Dir: dir, Err: fmt.Errorf("%w: not a directory", steps.ErrDirectoryChange)}
	}
	return dir, nil
}

func runOne(ctx context.Context, log *slog.Logger, s plan.Step, dir string, opts Options, report *Report) error {
	entry := report.step(s.Number)

	if !s.Enabled {
		entry.Status = StatusDisabled
		log.Info("step disabled, not running", "step", s.Name, "phase", s.Phase)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return &steps.StepError{Number: s.Number, Phase: s.Phase, Name: s.Name, Err: err}
	}

	impl, err := steps.NewStep(s, opts.Runner)
	if err != nil {
		return &steps.StepError{Number: s.Number, Phase: s.Phase, Name: s.Name, Err: err}
	}

	log.Info("running step", "number", s.Number, "step", s.Name, "phase", s.Phase)
	entry.Dir = dir

	start := time.Now()
	result, err := impl.Run(ctx, steps.StepContext{WorkDir: dir, Stdout: opts.Stdout, Stderr: opts.Stderr})
	if err == nil && len(s.Expect) > 0 {
		var found []string
		found, err = steps.CheckExpected(dir, s.Expect)
		if err == nil && result != nil {
			result.Outputs = append(result.Outputs, found...)
		}
	}
	entry.setDuration(time.Since(start))
	if result != nil {
		entry.ExitCode = result.ExitCode
		entry.Outputs = result.Outputs
	}

	if err == nil {
		entry.Status = StatusOK
		return nil
	}

	entry.Error = err.Error()

	if !s.Required && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		entry.Status = StatusTolerated
		log.Warn("step failed, continuing", "step", s.Name, "phase", s.Phase, "error", err)
		return nil
	}

	entry.Status = StatusFailed
	return &steps.StepError{Number: s.Number, Phase: s.Phase, Name: s.Name, Err: err}
}
