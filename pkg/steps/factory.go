package steps

import (
	"fmt"

	"github.com/systemstart/mkrelease/pkg/api"
	"github.com/systemstart/mkrelease/pkg/plan"
)

// NewStep creates a Step implementation from a resolved plan step.
func NewStep(s plan.Step, runner Runner) (Step, error) {
	switch s.Type {
	case api.StepTypeCommand:
		if runner == nil {
			return nil, fmt.Errorf("step %q: no runner configured", s.Name)
		}
		return NewCommandStep(s.Name, s.Executable, s.Args, s.Timeout, runner), nil
	case api.StepTypeIndex:
		if s.Index == nil {
			return nil, fmt.Errorf("step %q: missing index page", s.Name)
		}
		return NewIndexStep(s.Name, IndexConfig{
			Output:    s.Index.Output,
			Title:     s.Index.Title,
			Template:  s.Index.Template,
			Documents: s.Index.Documents,
		}), nil
	default:
		return nil, fmt.Errorf("unknown step type: %s", s.Type)
	}
}
