// Package report parses the loosely structured markdown that model calls
// return into named sections.
package report

import (
	"strings"
)

// Sections splits markdown on "## Heading" lines and returns a map of
// normalized heading -> body text. Content before the first heading is keyed
// under "".
func Sections(markdown string) map[string]string {
	out := map[string]string{}
	current := ""
	var body []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			out[current] = text
		}
		body = body[:0]
	}

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = Normalize(strings.TrimPrefix(trimmed, "## "))
			continue
		}
		body = append(body, line)
	}
	flush()
	return out
}

// Normalize lowercases a heading and strips punctuation so "Judging Criteria:"
// and "judging criteria" key the same section.
func Normalize(heading string) string {
	h := strings.ToLower(strings.TrimSpace(heading))
	h = strings.Trim(h, ":.#*")
	return strings.TrimSpace(h)
}

// Pick returns the first non-empty section among the given keys, or def.
func Pick(sections map[string]string, def string, keys ...string) string {
	for _, k := range keys {
		if v, ok := sections[Normalize(k)]; ok && v != "" {
			return v
		}
	}
	return def
}
