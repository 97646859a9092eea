package gateways

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ArtifactFinder locates cached archives, extractions and checkouts of a formula
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindCached returns every cache entry named <formula>--<version>[.tar.gz], sorted.
// A missing cache directory yields no entries.
func (f *ArtifactFinder) FindCached(cacheDir, formula string) ([]string, error) {
	if formula == "" || strings.ContainsAny(formula, `/\*?[`) {
		return nil, fmt.Errorf("invalid formula name: %q", formula)
	}

	if _, err := os.Stat(cacheDir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	pattern := filepath.Join(cacheDir, formula+"--*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
	}

	// Glob also matches longer names sharing the prefix, e.g. lofetch--extra--1.0
	var artifacts []string
	for _, path := range matches {
		version := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), formula+"--"), ".tar.gz")
		if version == "" || strings.Contains(version, "--") {
			continue
		}
		artifacts = append(artifacts, path)
	}

	sort.Strings(artifacts)
	return artifacts, nil
}
