// Package slug derives and checks the URL-safe keys tags are stored under.
package slug

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmpty is returned when a slug is empty.
	ErrEmpty = errors.New("slug must not be empty")

	// ErrFormat is returned when a slug does not match the required pattern.
	ErrFormat = errors.New("slug must contain only lowercase alphanumeric characters and hyphens, and must not start or end with a hyphen")

	// pattern matches a single lowercase alphanumeric character or a string
	// of lowercase alphanumeric characters and hyphens that does not start or
	// end with a hyphen.
	pattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-]*[a-z0-9])?$`)

	stripRe = regexp.MustCompile(`[^a-z0-9-]`)
)

// Derive turns a display name into a slug: lowercase, spaces and
// underscores become hyphens, anything outside [a-z0-9-] is dropped and
// runs of hyphens collapse. The result may be empty.
func Derive(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = stripRe.ReplaceAllString(s, "")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// Validate checks that s conforms to the slug format.
func Validate(s string) error {
	if s == "" {
		return ErrEmpty
	}
	if !pattern.MatchString(s) {
		return ErrFormat
	}
	return nil
}

// Valid reports whether name derives to a usable slug.
func Valid(name string) bool {
	return Validate(Derive(name)) == nil
}
