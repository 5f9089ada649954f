package processing

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/systemstart/mkrelease/pkg/plan"
	"github.com/systemstart/mkrelease/pkg/steps"
	"gopkg.in/yaml.v3"
)

// Step statuses recorded in a Report.
const (
	StatusPending   = "pending"
	StatusOK        = "ok"
	StatusFailed    = "failed"
	StatusTolerated = "tolerated"
	StatusSkipped   = "skipped"
	StatusDisabled  = "disabled"
)

// Report records what a release run did.
type Report struct {
	RunID     string        `yaml:"runID"`
	Root      string        `yaml:"root"`
	Started   time.Time     `yaml:"started"`
	Duration  string        `yaml:"duration"`
	Success   bool          `yaml:"success"`
	Error     string        `yaml:"error,omitempty"`
	Failed    string        `yaml:"failed,omitempty"` // first failed step or phase
	Steps     []*StepReport `yaml:"steps"`
	Artifacts []string      `yaml:"artifacts,omitempty"`
}

// StepReport records one step of a run.
type StepReport struct {
	Number   int      `yaml:"number"`
	Phase    string   `yaml:"phase"`
	Name     string   `yaml:"name"`
	Command  string   `yaml:"command"`
	Dir      string   `yaml:"dir,omitempty"`
	Status   string   `yaml:"status"`
	ExitCode int      `yaml:"exitCode,omitempty"`
	Duration string   `yaml:"duration,omitempty"`
	Outputs  []string `yaml:"outputs,omitempty"`
	Error    string   `yaml:"error,omitempty"`
}

func newReport(runID string, p *plan.Plan) *Report {
	r := &Report{RunID: runID, Root: p.Root, Started: time.Now()}
	for _, s := range p.Steps() {
		r.Steps = append(r.Steps, &StepReport{
			Number:  s.Number,
			Phase:   s.Phase,
			Name:    s.Name,
			Command: s.CommandLine(),
			Status:  StatusPending,
		})
	}
	return r
}

// step returns the entry for a plan step number.
func (r *Report) step(number int) *StepReport {
	return r.Steps[number-1]
}

func (s *StepReport) setDuration(d time.Duration) {
	s.Duration = d.Round(time.Millisecond).String()
}

func (r *Report) finish(err error) {
	r.Duration = time.Since(r.Started).Round(time.Millisecond).String()
	r.Success = err == nil

	for _, s := range r.Steps {
		if s.Status == StatusPending {
			s.Status = StatusSkipped
		}
	}

	if err == nil {
		return
	}
	r.Error = err.Error()

	var stepErr *steps.StepError
	var phaseErr *steps.PhaseError
	switch {
	case errors.As(err, &stepErr):
		r.Failed = fmt.Sprintf("step %d %s", stepErr.Number, stepErr.Name)
	case errors.As(err, &phaseErr):
		r.Failed = "phase " + phaseErr.Phase
	}
}

// Executed returns the names of steps that were started, in order.
func (r *Report) Executed() []string {
	var out []string
	for _, s := range r.Steps {
		switch s.Status {
		case StatusOK, StatusFailed, StatusTolerated:
			out = append(out, s.Name)
		}
	}
	return out
}

// WriteReport writes r as YAML to filename.
func WriteReport(filename string, r *Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
