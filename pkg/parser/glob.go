package parser

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
)

// ExpandGlobs expands a list of file paths and glob patterns into a deduplicated,
// sorted list of matching file paths. Patterns may use ** to match across
// directories. Patterns that match nothing are returned in unmatched, in the
// order given, and contribute no files.
func ExpandGlobs(patterns []string) (files []string, unmatched []string, err error) {
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		// doublestar only reports bad syntax when it reaches a candidate name
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		matches, err := doublestar.Glob(pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			unmatched = append(unmatched, pattern)
			continue
		}

		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				files = append(files, match)
			}
		}
	}

	// Sort for deterministic ordering
	sort.Strings(files)

	return files, unmatched, nil
}
