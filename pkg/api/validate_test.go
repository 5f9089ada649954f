package api

import (
	"strings"
	"testing"
)

func commandStep(name, tool string, args ...string) StepConfig {
	return StepConfig{
		Name:    name,
		Type:    StepTypeCommand,
		Command: &CommandConfig{Tool: tool, Args: args},
	}
}

func minimalRelease(steps ...StepConfig) *Release {
	return &Release{
		Tools:     map[string]Tool{"setup": {Path: "python", Args: []string{"setup.py"}}},
		Documents: []Document{{Source: "a.txt", Output: "a.html"}},
		Phases:    []PhaseConfig{{Name: "packaging", Steps: steps}},
	}
}

func TestValidate_Default(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default release to be valid, got error: %v", err)
	}
}

func TestValidate_DefaultDisablesCustomInstaller(t *testing.T) {
	var enabled []string
	for _, phase := range Default().Phases {
		for _, step := range phase.Steps {
			if step.IsEnabled() {
				enabled = append(enabled, step.Name)
			}
			if step.Name == "installer-custom" && step.IsEnabled() {
				t.Error("installer-custom must be disabled by default")
			}
		}
	}
	want := "render,navigation,clean,sdist-manifest,build-installer"
	if got := strings.Join(enabled, ","); got != want {
		t.Errorf("enabled steps = %s, want %s", got, want)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		release *Release
		wantErr string
	}{
		{
			name:    "no phases",
			release: &Release{},
			wantErr: "no phases",
		},
		{
			name: "phase without name",
			release: &Release{
				Phases: []PhaseConfig{{Steps: []StepConfig{commandStep("a", "setup")}}},
			},
			wantErr: "name is required",
		},
		{
			name: "duplicate phase",
			release: &Release{
				Tools: map[string]Tool{"setup": {Path: "python"}},
				Phases: []PhaseConfig{
					{Name: "p", Steps: []StepConfig{commandStep("a", "setup")}},
					{Name: "p", Steps: []StepConfig{commandStep("b", "setup")}},
				},
			},
			wantErr: "duplicate phase name",
		},
		{
			name:    "empty phase",
			release: minimalRelease(),
			wantErr: "no steps",
		},
		{
			name:    "missing step name",
			release: minimalRelease(commandStep("", "setup")),
			wantErr: "name is required",
		},
		{
			name:    "duplicate step name",
			release: minimalRelease(commandStep("a", "setup"), commandStep("a", "setup")),
			wantErr: "duplicate step name",
		},
		{
			name:    "unknown type",
			release: minimalRelease(StepConfig{Name: "a", Type: "shell"}),
			wantErr: "unknown type",
		},
		{
			name:    "missing command config",
			release: minimalRelease(StepConfig{Name: "a", Type: StepTypeCommand}),
			wantErr: "command config is required",
		},
		{
			name:    "missing tool",
			release: minimalRelease(StepConfig{Name: "a", Type: StepTypeCommand, Command: &CommandConfig{}}),
			wantErr: "command.tool is required",
		},
		{
			name:    "undefined tool",
			release: minimalRelease(commandStep("a", "make")),
			wantErr: `"make" is not defined`,
		},
		{
			name: "bad foreach",
			release: minimalRelease(StepConfig{
				Name: "a", Type: StepTypeCommand,
				Command: &CommandConfig{Tool: "setup", ForEach: "files"},
			}),
			wantErr: "command.foreach",
		},
		{
			name: "bad timeout",
			release: minimalRelease(StepConfig{
				Name: "a", Type: StepTypeCommand, Timeout: "soon",
				Command: &CommandConfig{Tool: "setup"},
			}),
			wantErr: "timeout",
		},
		{
			name: "negative timeout",
			release: minimalRelease(StepConfig{
				Name: "a", Type: StepTypeCommand, Timeout: "-1s",
				Command: &CommandConfig{Tool: "setup"},
			}),
			wantErr: "must be positive",
		},
		{
			name:    "missing index config",
			release: minimalRelease(StepConfig{Name: "a", Type: StepTypeIndex}),
			wantErr: "index config is required",
		},
		{
			name:    "missing index output",
			release: minimalRelease(StepConfig{Name: "a", Type: StepTypeIndex, Index: &IndexConfig{}}),
			wantErr: "index.output is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.release.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_ToolWithoutPath(t *testing.T) {
	r := minimalRelease(commandStep("a", "setup"))
	r.Tools["setup"] = Tool{Path: "  "}

	err := r.Validate()
	if err == nil {
		t.Fatal("expected error for tool without path")
	}
	if !strings.Contains(err.Error(), "path is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Documents(t *testing.T) {
	tests := []struct {
		name    string
		docs    []Document
		wantErr string
	}{
		{"missing source", []Document{{Output: "a.html"}}, "source is required"},
		{"missing output", []Document{{Source: "a.txt"}}, "output is required"},
		{"duplicate output", []Document{{Source: "a.txt", Output: "x.html"}, {Source: "b.txt", Output: "x.html"}}, "duplicate output"},
		{"duplicate source", []Document{{Source: "a.txt", Output: "a.html"}, {Source: "a.txt", Output: "a2.html"}}, "duplicate source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := minimalRelease(commandStep("a", "setup"))
			r.Documents = tt.docs
			err := r.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_ForEachWithoutDocuments(t *testing.T) {
	r := minimalRelease(StepConfig{
		Name: "render", Type: StepTypeCommand,
		Command: &CommandConfig{Tool: "setup", ForEach: ForEachDocuments},
	})
	r.Documents = nil

	err := r.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no documents are configured") {
		t.Fatalf("unexpected error: %v", err)
	}
}
