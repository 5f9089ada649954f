package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadRelease reads a release.yaml file, sets Dir/FilePath, and validates it.
func LoadRelease(filename string) (*Release, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading release file: %w", err)
	}

	r, err := ParseRelease(data)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	r.FilePath = absPath
	r.Dir = filepath.Dir(absPath)

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("validating release %s: %w", filename, err)
	}

	return r, nil
}

// ParseRelease decodes release YAML without validating it.
// Unknown keys are rejected so typos in step fields surface early.
func ParseRelease(data []byte) (*Release, error) {
	var r Release
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing release file: %w", err)
	}
	return &r, nil
}

// MarshalRelease renders r as YAML, the format LoadRelease reads.
func MarshalRelease(r *Release) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding release: %w", err)
	}
	return data, nil
}
