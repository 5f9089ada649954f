package steps

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobFiles returns the regular files in fsys matching any of patterns,
// sorted and without duplicates. Patterns use forward slashes and may
// contain ** to cross directories.
func GlobFiles(fsys fs.FS, patterns []string) ([]string, error) {
	var result []string
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		result = append(result, matches...)
	}
	slices.Sort(result)
	return slices.Compact(result), nil
}

// CheckExpected verifies that each pattern matches at least one file in dir.
// A pattern naming an existing regular file matches that file literally, so
// output names containing glob metacharacters or leading outside dir work.
// It returns every matched file.
func CheckExpected(dir string, patterns []string) ([]string, error) {
	fsys := os.DirFS(dir)
	var found []string
	for _, pattern := range patterns {
		if isRegularFile(dir, pattern) {
			found = append(found, filepath.ToSlash(filepath.Clean(filepath.FromSlash(pattern))))
			continue
		}
		if !filepath.IsLocal(filepath.FromSlash(pattern)) {
			return nil, fmt.Errorf("%w: expected output %q was not produced in %s", ErrStepFailed, pattern, dir)
		}
		matches, err := GlobFiles(fsys, []string{pattern})
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: expected output %q was not produced in %s", ErrStepFailed, pattern, dir)
		}
		found = append(found, matches...)
	}
	slices.Sort(found)
	return slices.Compact(found), nil
}

func isRegularFile(dir, name string) bool {
	path := filepath.FromSlash(name)
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
