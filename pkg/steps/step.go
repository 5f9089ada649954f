package steps

import (
	"context"
	"io"
)

// StepContext provides the runtime context for a step.
type StepContext struct {
	WorkDir string // absolute
	Stdout  io.Writer
	Stderr  io.Writer
}

// StepResult holds the outcome of a step.
type StepResult struct {
	ExitCode int
	Outputs  []string // files produced, relative to WorkDir
}

// Step is the interface all release steps implement.
type Step interface {
	Name() string
	Run(ctx context.Context, sctx StepContext) (*StepResult, error)
}
