package api

import (
	"fmt"
	"strings"
	"time"
)

var validStepTypes = map[string]bool{
	StepTypeCommand: true,
	StepTypeIndex:   true,
}

// Validate checks the release configuration for errors.
func (r *Release) Validate() error {
	if len(r.Phases) == 0 {
		return fmt.Errorf("release has no phases")
	}

	if err := r.validateTools(); err != nil {
		return err
	}
	if err := r.validateDocuments(); err != nil {
		return err
	}

	phases := make(map[string]int)
	steps := make(map[string]string)

	for i, phase := range r.Phases {
		if phase.Name == "" {
			return fmt.Errorf("phase %d: name is required", i)
		}
		if prev, exists := phases[phase.Name]; exists {
			return fmt.Errorf("phase %d: duplicate phase name %q (first defined at phase %d)", i, phase.Name, prev)
		}
		phases[phase.Name] = i

		if len(phase.Steps) == 0 {
			return fmt.Errorf("phase %q: no steps", phase.Name)
		}

		for j, step := range phase.Steps {
			if step.Name == "" {
				return fmt.Errorf("phase %q: step %d: name is required", phase.Name, j)
			}
			if prev, exists := steps[step.Name]; exists {
				return fmt.Errorf("phase %q: duplicate step name %q (first defined in phase %q)", phase.Name, step.Name, prev)
			}
			steps[step.Name] = phase.Name

			if !validStepTypes[step.Type] {
				return fmt.Errorf("step %q: unknown type %q", step.Name, step.Type)
			}

			if err := r.validateStepConfig(step); err != nil {
				return fmt.Errorf("step %q: %w", step.Name, err)
			}
		}
	}

	return nil
}

func (r *Release) validateTools() error {
	for name, tool := range r.Tools {
		if strings.TrimSpace(tool.Path) == "" {
			return fmt.Errorf("tool %q: path is required", name)
		}
	}
	return nil
}

func (r *Release) validateDocuments() error {
	sources := make(map[string]int)
	outputs := make(map[string]int)
	for i, doc := range r.Documents {
		if doc.Source == "" {
			return fmt.Errorf("document %d: source is required", i)
		}
		if doc.Output == "" {
			return fmt.Errorf("document %d (%s): output is required", i, doc.Source)
		}
		if prev, exists := sources[doc.Source]; exists {
			return fmt.Errorf("document %d: duplicate source %q (first used by document %d)", i, doc.Source, prev)
		}
		sources[doc.Source] = i
		if prev, exists := outputs[doc.Output]; exists {
			return fmt.Errorf("document %d: duplicate output %q (first used by document %d)", i, doc.Output, prev)
		}
		outputs[doc.Output] = i
	}
	return nil
}

func (r *Release) validateStepConfig(step StepConfig) error {
	if step.Timeout != "" {
		d, err := time.ParseDuration(step.Timeout)
		if err != nil {
			return fmt.Errorf("timeout %q: %w", step.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("timeout %q must be positive", step.Timeout)
		}
	}

	switch step.Type {
	case StepTypeCommand:
		return r.validateCommandConfig(step)
	case StepTypeIndex:
		return r.validateIndexConfig(step)
	}
	return nil
}

func (r *Release) validateCommandConfig(step StepConfig) error {
	if step.Command == nil {
		return fmt.Errorf("command config is required")
	}
	if step.Command.Tool == "" {
		return fmt.Errorf("command.tool is required")
	}
	if _, ok := r.Tools[step.Command.Tool]; !ok {
		return fmt.Errorf("command.tool %q is not defined in tools", step.Command.Tool)
	}
	switch step.Command.ForEach {
	case "":
	case ForEachDocuments:
		if len(r.Documents) == 0 {
			return fmt.Errorf("command.foreach is %q but no documents are configured", ForEachDocuments)
		}
	default:
		return fmt.Errorf("command.foreach %q is not valid (valid: %s)", step.Command.ForEach, ForEachDocuments)
	}
	return nil
}

func (r *Release) validateIndexConfig(step StepConfig) error {
	if step.Index == nil {
		return fmt.Errorf("index config is required")
	}
	if step.Index.Output == "" {
		return fmt.Errorf("index.output is required")
	}
	if len(r.Documents) == 0 {
		return fmt.Errorf("index step needs at least one document")
	}
	return nil
}
