package walker

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides which directories a walk prunes, by exact name or by
// glob over the slash separated path relative to the walk root.
type Matcher struct {
	names    map[string]bool
	patterns []string
}

func NewMatcher(skipDirs []string, exclude []string) (*Matcher, error) {
	m := &Matcher{names: make(map[string]bool, len(skipDirs))}
	for _, name := range skipDirs {
		m.names[name] = true
	}
	for _, pattern := range exclude {
		if err := m.AddPattern(pattern); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddPattern adds a glob. Patterns without a slash match at any depth.
func (m *Matcher) AddPattern(pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}
	pattern = strings.TrimSuffix(strings.TrimPrefix(pattern, "/"), "/")
	if !strings.Contains(pattern, "/") {
		pattern = "**/" + pattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return &PatternError{Pattern: pattern}
	}
	m.patterns = append(m.patterns, pattern)
	return nil
}

// Skip reports whether the directory at relPath should not be visited.
func (m *Matcher) Skip(relPath string) bool {
	if relPath == "." || relPath == "" {
		return false
	}

	base := relPath
	if idx := strings.LastIndex(relPath, "/"); idx >= 0 {
		base = relPath[idx+1:]
	}
	if m.names[base] {
		return true
	}

	for _, pattern := range m.patterns {
		if matched, _ := doublestar.Match(pattern, relPath); matched {
			return true
		}
		if !strings.HasSuffix(pattern, "/**") {
			if matched, _ := doublestar.Match(pattern+"/**", relPath); matched {
				return true
			}
		}
	}
	return false
}

type PatternError struct {
	Pattern string
}

func (e *PatternError) Error() string {
	return "invalid exclude pattern: " + e.Pattern
}
