package plan

import (
	"fmt"
	"io"
)

// Print writes a human-readable listing of the plan, one line per step.
func Print(w io.Writer, p *Plan) error {
	if _, err := fmt.Fprintf(w, "root: %s\n", p.Root); err != nil {
		return err
	}
	for _, phase := range p.Phases {
		if _, err := fmt.Fprintf(w, "phase %s (dir %s)\n", phase.Name, phase.Dir); err != nil {
			return err
		}
		for _, s := range phase.Steps {
			flags := ""
			if !s.Enabled {
				flags += " [disabled]"
			}
			if !s.Required {
				flags += " [allow-failure]"
			}
			if s.Timeout > 0 {
				flags += fmt.Sprintf(" [timeout %s]", s.Timeout)
			}
			line := s.CommandLine()
			if s.Index != nil {
				line = fmt.Sprintf("write index %s (%d documents)", s.Index.Output, len(s.Index.Documents))
			}
			if _, err := fmt.Fprintf(w, "  %2d. %s%s: %s\n", s.Number, s.Name, flags, line); err != nil {
				return err
			}
		}
	}
	return nil
}
