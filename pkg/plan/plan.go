// Package plan resolves a release configuration into the ordered, immutable
// list of steps the engine executes.
package plan

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/systemstart/mkrelease/pkg/api"
)

// Plan is a fully resolved release: every template rendered, every
// per-document step expanded.
type Plan struct {
	Root      string
	Context   map[string]any
	Phases    []Phase
	Artifacts []string
}

// Phase is a group of steps sharing a working directory.
type Phase struct {
	Name  string
	Dir   string // relative to Root
	Steps []Step
}

// Step is one resolved invocation.
type Step struct {
	Number     int // 1-based position across the whole plan
	Phase      string
	Name       string
	Type       string
	Executable string
	Args       []string
	Required   bool
	Enabled    bool
	Timeout    time.Duration // zero means wait forever
	Expect     []string
	Document   *api.Document
	Index      *IndexPage
}

// IndexPage holds what an index step needs.
type IndexPage struct {
	Output    string
	Title     string
	Template  string
	Documents []api.Document
}

// CommandLine renders the step invocation for logs and dry runs.
func (s Step) CommandLine() string {
	if s.Type != api.StepTypeCommand {
		return fmt.Sprintf("(%s)", s.Type)
	}
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, quote(s.Executable))
	for _, a := range s.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

// Steps returns every step of the plan in execution order.
func (p *Plan) Steps() []Step {
	var out []Step
	for _, phase := range p.Phases {
		out = append(out, phase.Steps...)
	}
	return out
}

// Options adjust how a release is resolved.
type Options struct {
	// Root overrides the project root. Defaults to the release file directory.
	Root string
	// Context layers applied over the release context, in order.
	Context []map[string]any
	// Enable and Disable toggle steps by name, after the configured flag.
	Enable  []string
	Disable []string
}

// Build resolves r into a Plan. No step runs if Build fails.
func Build(r *api.Release, opts Options) (*Plan, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating release: %w", err)
	}

	root, err := resolveRoot(r, opts.Root)
	if err != nil {
		return nil, err
	}

	if err := checkToggles(r, opts.Enable, opts.Disable); err != nil {
		return nil, err
	}

	layers := append([]map[string]any{r.Context}, opts.Context...)
	ctx := MergeContext(layers...)
	if err := InterpolateContext(ctx); err != nil {
		return nil, fmt.Errorf("interpolating context: %w", err)
	}

	tools, err := resolveTools(r.Tools, ctx)
	if err != nil {
		return nil, err
	}

	b := &builder{
		release: r,
		ctx:     ctx,
		tools:   tools,
		root:    root,
		enable:  opts.Enable,
		disable: opts.Disable,
	}

	p := &Plan{Root: root, Context: ctx}
	for _, phaseCfg := range r.Phases {
		phase, err := b.phase(phaseCfg)
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", phaseCfg.Name, err)
		}
		p.Phases = append(p.Phases, phase)
	}

	p.Artifacts, err = renderAll("artifacts", r.Artifacts, b.data(nil, ""))
	if err != nil {
		return nil, err
	}

	return p, nil
}

func resolveRoot(r *api.Release, override string) (string, error) {
	root := override
	if root == "" {
		root = r.Dir
	}
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return abs, nil
}

func checkToggles(r *api.Release, enable, disable []string) error {
	known := make(map[string]bool)
	for _, phase := range r.Phases {
		for _, step := range phase.Steps {
			known[step.Name] = true
		}
	}
	for _, name := range slices.Concat(enable, disable) {
		if !known[name] {
			return fmt.Errorf("unknown step %q", name)
		}
	}
	for _, name := range enable {
		if slices.Contains(disable, name) {
			return fmt.Errorf("step %q is both enabled and disabled", name)
		}
	}
	return nil
}

func resolveTools(tools map[string]api.Tool, ctx map[string]any) (map[string]api.Tool, error) {
	out := make(map[string]api.Tool, len(tools))
	for name, tool := range tools {
		path, err := render("tools."+name+".path", tool.Path, ctx)
		if err != nil {
			return nil, fmt.Errorf("tool %q path: %w", name, err)
		}
		args, err := renderAll("tools."+name+".args", tool.Args, ctx)
		if err != nil {
			return nil, fmt.Errorf("tool %q: %w", name, err)
		}
		out[name] = api.Tool{Path: strings.TrimSpace(path), Args: args}
	}
	return out, nil
}

type builder struct {
	release *api.Release
	ctx     map[string]any
	tools   map[string]api.Tool
	root    string
	enable  []string
	disable []string
	number  int
}

// data is the template scope of a step: the context plus the reserved
// keys root, phase and doc.
func (b *builder) data(doc *api.Document, phase string) map[string]any {
	d := MergeContext(b.ctx, map[string]any{"root": b.root, "phase": phase})
	if doc != nil {
		d["doc"] = *doc
	}
	return d
}

func (b *builder) phase(cfg api.PhaseConfig) (Phase, error) {
	dir, err := render("dir", cfg.Dir, b.data(nil, cfg.Name))
	if err != nil {
		return Phase{}, fmt.Errorf("dir: %w", err)
	}
	if dir == "" {
		dir = "."
	}

	phase := Phase{Name: cfg.Name, Dir: filepath.Clean(filepath.FromSlash(dir))}

	for _, stepCfg := range cfg.Steps {
		steps, err := b.steps(cfg.Name, stepCfg)
		if err != nil {
			return Phase{}, fmt.Errorf("step %q: %w", stepCfg.Name, err)
		}
		phase.Steps = append(phase.Steps, steps...)
	}
	return phase, nil
}

func (b *builder) enabled(cfg api.StepConfig) bool {
	switch {
	case slices.Contains(b.enable, cfg.Name):
		return true
	case slices.Contains(b.disable, cfg.Name):
		return false
	default:
		return cfg.IsEnabled()
	}
}

func (b *builder) steps(phase string, cfg api.StepConfig) ([]Step, error) {
	var timeout time.Duration
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("timeout: %w", err)
		}
		timeout = d
	}

	base := Step{
		Phase:    phase,
		Name:     cfg.Name,
		Type:     cfg.Type,
		Required: !cfg.AllowFailure,
		Enabled:  b.enabled(cfg),
		Timeout:  timeout,
	}

	switch cfg.Type {
	case api.StepTypeCommand:
		if cfg.Command.ForEach == api.ForEachDocuments {
			out := make([]Step, 0, len(b.release.Documents))
			for _, doc := range b.release.Documents {
				s, err := b.command(base, cfg, &doc)
				if err != nil {
					return nil, fmt.Errorf("document %s: %w", doc.Source, err)
				}
				s.Name = fmt.Sprintf("%s[%s]", cfg.Name, doc.Source)
				out = append(out, b.numbered(s))
			}
			return out, nil
		}
		s, err := b.command(base, cfg, nil)
		if err != nil {
			return nil, err
		}
		return []Step{b.numbered(s)}, nil

	case api.StepTypeIndex:
		s, err := b.index(base, cfg)
		if err != nil {
			return nil, err
		}
		return []Step{b.numbered(s)}, nil
	}

	return nil, fmt.Errorf("unknown step type: %s", cfg.Type)
}

func (b *builder) numbered(s Step) Step {
	b.number++
	s.Number = b.number
	return s
}

func (b *builder) command(s Step, cfg api.StepConfig, doc *api.Document) (Step, error) {
	tool, ok := b.tools[cfg.Command.Tool]
	if !ok {
		return Step{}, fmt.Errorf("tool %q is not defined", cfg.Command.Tool)
	}

	data := b.data(doc, s.Phase)
	args, err := renderAll("args", cfg.Command.Args, data)
	if err != nil {
		return Step{}, err
	}
	expect, err := renderAll("expect", cfg.Expect, data)
	if err != nil {
		return Step{}, err
	}

	s.Executable = tool.Path
	s.Args = slices.Concat(tool.Args, args)
	s.Expect = expect
	if doc != nil {
		d := *doc
		s.Document = &d
	}
	return s, nil
}

func (b *builder) index(s Step, cfg api.StepConfig) (Step, error) {
	data := b.data(nil, s.Phase)
	output, err := render("index.output", cfg.Index.Output, data)
	if err != nil {
		return Step{}, fmt.Errorf("index.output: %w", err)
	}
	title, err := render("index.title", cfg.Index.Title, data)
	if err != nil {
		return Step{}, fmt.Errorf("index.title: %w", err)
	}
	if title == "" {
		title = api.DefaultIndexTitle
	}
	expect, err := renderAll("expect", cfg.Expect, data)
	if err != nil {
		return Step{}, err
	}

	s.Expect = expect
	s.Index = &IndexPage{
		Output:    output,
		Title:     title,
		Template:  cfg.Index.Template,
		Documents: slices.Clone(b.release.Documents),
	}
	return s, nil
}
