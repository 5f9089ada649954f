package processing

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/systemstart/mkrelease/pkg/steps"
)

// collectArtifacts lists the files under root matching the artifact
// patterns. Patterns that match nothing are logged, not treated as errors.
func collectArtifacts(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, nil
	}

	fsys := os.DirFS(root)
	var all []string
	for _, pattern := range patterns {
		matches, err := steps.GlobFiles(fsys, []string{pattern})
		if err != nil {
			return nil, fmt.Errorf("collecting artifacts: %w", err)
		}
		if len(matches) == 0 {
			slog.Warn("artifact pattern matched nothing", "pattern", pattern, "root", root)
			continue
		}
		for _, m := range matches {
			slog.Info("artifact", "path", m)
		}
		all = append(all, matches...)
	}
	slices.Sort(all)
	return slices.Compact(all), nil
}
