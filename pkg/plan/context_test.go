package plan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadContextFile(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(f, []byte("compiler: msvc\njobs: 4\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, err := LoadContextFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ctx["compiler"] != "msvc" {
		t.Errorf("expected compiler=msvc, got %v", ctx["compiler"])
	}
	if ctx["jobs"] != 4 {
		t.Errorf("expected jobs=4, got %v", ctx["jobs"])
	}
}

func TestLoadContextFile_Empty(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(f, []byte(""), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, err := LoadContextFile(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx == nil || len(ctx) != 0 {
		t.Errorf("expected empty map, got %v", ctx)
	}
}

func TestLoadContextFile_NotFound(t *testing.T) {
	_, err := LoadContextFile("/nonexistent/context.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestMergeContext(t *testing.T) {
	base := map[string]any{"a": "1", "b": "2"}
	file := map[string]any{"b": "file"}
	flags := map[string]any{"c": "3"}

	merged := MergeContext(base, file, flags)

	if merged["a"] != "1" || merged["b"] != "file" || merged["c"] != "3" {
		t.Errorf("unexpected merge result: %v", merged)
	}
	if base["b"] != "2" {
		t.Error("MergeContext must not modify its inputs")
	}
}

func TestMergeContext_NilLayers(t *testing.T) {
	merged := MergeContext(nil, nil)
	if merged == nil {
		t.Fatal("expected non-nil map")
	}
}

func TestParseOverrides(t *testing.T) {
	got, err := ParseOverrides([]string{"compiler=msvc", "stylesheet=a=b.css", "empty="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["compiler"] != "msvc" {
		t.Errorf("compiler = %v", got["compiler"])
	}
	if got["stylesheet"] != "a=b.css" {
		t.Errorf("stylesheet = %v, want value split at the first '='", got["stylesheet"])
	}
	if v, ok := got["empty"]; !ok || v != "" {
		t.Errorf("empty = %v, %v", v, ok)
	}
}

func TestParseOverrides_Invalid(t *testing.T) {
	for _, pair := range []string{"novalue", "=x"} {
		if _, err := ParseOverrides([]string{pair}); err == nil {
			t.Errorf("expected error for %q", pair)
		}
	}
}

func TestInterpolateContext(t *testing.T) {
	t.Setenv("MKRELEASE_TEST_PYTHON", `C:\Python24\python.exe`)

	ctx := map[string]any{
		"python":  `{{ env "MKRELEASE_TEST_PYTHON" | default "python" }}`,
		"scripts": `{{ .pyhome }}/Scripts`,
		"pyhome":  `C:/Python24`,
		"tool":    `{{ .scripts }}/rst2html.py`,
		"jobs":    4,
	}

	if err := InterpolateContext(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ctx["python"] != `C:\Python24\python.exe` {
		t.Errorf("python = %v", ctx["python"])
	}
	if ctx["tool"] != "C:/Python24/Scripts/rst2html.py" {
		t.Errorf("tool = %v", ctx["tool"])
	}
	if ctx["jobs"] != 4 {
		t.Errorf("non-string values must be left alone, got %v", ctx["jobs"])
	}
}

func TestInterpolateContext_MissingKey(t *testing.T) {
	ctx := map[string]any{"a": "{{ .missing }}"}
	err := InterpolateContext(ctx)
	if err == nil {
		t.Fatal("expected error for missing key")
	}
	if !strings.Contains(err.Error(), `context key "a"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInterpolateContext_Circular(t *testing.T) {
	ctx := map[string]any{"a": "x{{ .b }}", "b": "y{{ .a }}"}
	err := InterpolateContext(ctx)
	if err == nil {
		t.Fatal("expected error for circular reference")
	}
	if !strings.Contains(err.Error(), "did not settle") {
		t.Errorf("unexpected error: %v", err)
	}
}
