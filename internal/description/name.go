package description

import (
	"fmt"
	"regexp"
	"strings"
)

// segmentRegex matches a single path segment, e.g. `Invoice` or `totals_2`.
var segmentRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidSegmentName checks for undesirable but technically valid names.
func isValidSegmentName(name string) bool {
	return name != "-"
}

// ParseName validates a dot-separated name and returns its segments.
func ParseName(name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}

	segments := strings.Split(name, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, fmt.Errorf("name %q contains empty segment", name)
		}
		if !segmentRegex.MatchString(segment) || !isValidSegmentName(segment) {
			return nil, fmt.Errorf("invalid name segment %q in %q", segment, name)
		}
	}
	return segments, nil
}

// Join builds a dotted name from its parts, skipping empty parts.
func Join(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ".")
}

// HasPrefix reports whether prefix is a leading run of whole segments of
// name. `a.b` is a prefix of `a.b` and `a.b.c`, but not of `a.bc`.
func HasPrefix(name, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(name, prefix) {
		return false
	}
	return len(name) == len(prefix) || name[len(prefix)] == '.'
}
