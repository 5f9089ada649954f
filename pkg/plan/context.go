package plan

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxInterpolationPasses bounds how deep context values may reference each other.
const maxInterpolationPasses = 8

// LoadContextFile reads a YAML file and returns it as a map.
func LoadContextFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var ctx map[string]any
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}

	if ctx == nil {
		ctx = make(map[string]any)
	}

	return ctx, nil
}

// MergeContext performs a shallow merge of the given maps.
// Later maps override earlier ones at the top level.
func MergeContext(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, layer := range layers {
		maps.Copy(merged, layer)
	}
	return merged
}

// ParseOverrides turns key=value pairs into a context map.
func ParseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// InterpolateContext renders every string value of ctx as a template over
// ctx itself, until no value changes. Values may reference each other and
// the environment through sprig's env function.
func InterpolateContext(ctx map[string]any) error {
	for pass := 0; pass < maxInterpolationPasses; pass++ {
		changed := false
		for key, value := range ctx {
			s, ok := value.(string)
			if !ok || !strings.Contains(s, "{{") {
				continue
			}
			rendered, err := render("context."+key, s, ctx)
			if err != nil {
				return fmt.Errorf("context key %q: %w", key, err)
			}
			if rendered != s {
				ctx[key] = rendered
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
	return fmt.Errorf("context did not settle after %d passes (circular reference?)", maxInterpolationPasses)
}
