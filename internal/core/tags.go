package core

import (
	"regexp"
	"strings"
)

var tagSeparator = regexp.MustCompile(`[\s,]+`)

// ParseTags splits a free-form tag string ("#food, #travel") into clean
// tag names with leading hashes stripped.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range tagSeparator.Split(s, -1) {
		tag := strings.TrimSpace(strings.TrimPrefix(part, "#"))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// FormatTags renders tags back into the "#a #b" display form.
func FormatTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + t
	}
	return strings.Join(parts, " ")
}
