// Package refs extracts story references from free-text blocker descriptions.
package refs

import (
	"fmt"
	"regexp"
)

// DefaultHost is the Pivotal Tracker web host used by Extract.
const DefaultHost = "www.pivotaltracker.com"

// Pattern is a single reference format. Group is the index of the capture
// group holding the story identifier.
type Pattern struct {
	Name   string
	Regexp *regexp.Regexp
	Group  int
}

// Extractor applies an ordered list of patterns to a description.
type Extractor struct {
	patterns []Pattern
}

var defaultExtractor = NewExtractor(DefaultHost)

// DefaultPatterns returns the built-in reference formats for a tracker host:
// short tags like "#123", canonical story URLs and project-scoped story URLs.
func DefaultPatterns(host string) []Pattern {
	h := regexp.QuoteMeta(host)
	return []Pattern{
		{
			Name:   "short-tag",
			Regexp: regexp.MustCompile(`#([0-9]+)`),
			Group:  1,
		},
		{
			Name:   "story-url",
			Regexp: regexp.MustCompile(fmt.Sprintf(`https://%s/story/show/([0-9]+)`, h)),
			Group:  1,
		},
		{
			Name:   "project-story-url",
			Regexp: regexp.MustCompile(fmt.Sprintf(`https://%s/n/projects/([0-9]+)/stories/([0-9]+)`, h)),
			Group:  2,
		},
	}
}

// NewExtractor builds an extractor for host. Extra patterns run after the
// built-in ones, in the order given.
func NewExtractor(host string, extra ...Pattern) *Extractor {
	patterns := DefaultPatterns(host)
	patterns = append(patterns, extra...)
	return &Extractor{patterns: patterns}
}

// Patterns returns a copy of the extractor's patterns in application order.
func (e *Extractor) Patterns() []Pattern {
	out := make([]Pattern, len(e.patterns))
	copy(out, e.patterns)
	return out
}

// Extract returns every story identifier referenced by description. Matches
// are grouped by pattern: all matches of the first pattern (left to right),
// then all matches of the second, and so on. Duplicates are kept. A
// description without references yields an empty, non-nil slice.
func (e *Extractor) Extract(description string) []string {
	ids := []string{}
	for _, p := range e.patterns {
		for _, match := range p.Regexp.FindAllStringSubmatch(description, -1) {
			if p.Group < len(match) {
				ids = append(ids, match[p.Group])
			}
		}
	}
	return ids
}

// Extract runs the default extractor for www.pivotaltracker.com.
func Extract(description string) []string {
	return defaultExtractor.Extract(description)
}
