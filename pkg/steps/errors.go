package steps

import (
	"errors"
	"fmt"
)

// Failure kinds. Every one of them stops the release.
var (
	ErrToolNotFound    = errors.New("tool not found")
	ErrStepFailed      = errors.New("step failed")
	ErrDirectoryChange = errors.New("directory change failed")
)

// StepError identifies the step that stopped a release.
type StepError struct {
	Number int
	Phase  string
	Name   string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d %q (phase %s): %v", e.Number, e.Name, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// PhaseError reports a phase whose working directory could not be entered.
type PhaseError struct {
	Phase string
	Dir   string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: entering %s: %v", e.Phase, e.Dir, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
