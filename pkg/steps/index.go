package steps

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/mkrelease/pkg/api"
)

// DefaultIndexTemplate links every document output by name.
const DefaultIndexTemplate = `<html>
<head><title>{{ .Title }}</title></head>
<body>
<h1>{{ .Title }}</h1>
<ul>
{{- range .Documents }}
<li><a href="{{ .Output }}">{{ .Output | trimSuffix ".html" }}</a></li>
{{- end }}
</ul>
</body>
</html>
`

// IndexConfig configures the index step.
type IndexConfig struct {
	Output    string
	Title     string
	Template  string
	Documents []api.Document
}

type indexStep struct {
	name string
	cfg  IndexConfig
}

// NewIndexStep creates a step that writes an HTML page linking every document.
func NewIndexStep(name string, cfg IndexConfig) Step {
	return &indexStep{name: name, cfg: cfg}
}

func (s *indexStep) Name() string { return s.name }

func (s *indexStep) Run(ctx context.Context, sctx StepContext) (*StepResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := s.cfg.Template
	if text == "" {
		text = DefaultIndexTemplate
	}

	tmpl, err := template.New(s.name).Funcs(sprig.HtmlFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.cfg); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	outPath := filepath.Join(sctx.WorkDir, filepath.FromSlash(s.cfg.Output))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	if err := os.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}

	slog.Info("index step wrote file", "step", s.name, "output", s.cfg.Output, "documents", len(s.cfg.Documents))
	return &StepResult{Outputs: []string{s.cfg.Output}}, nil
}
