// Package slug holds the pure string transforms between display names,
// URL-safe slugs, folder hierarchies and `/repl/...` deep-link paths, plus
// track and step lookup by slug. Everything here is stateless; the only side
// effect in the package is an advisory log line when a slug lookup is
// ambiguous.
package slug

import (
	"regexp"
	"strings"
)

// Fallback is the slug produced for names with no alphanumeric content.
const Fallback = "untitled"

// Prefix is the URL path prefix for track deep links.
const Prefix = "/repl"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make converts a display name to a URL-safe slug: lowercase, any run of
// non-alphanumeric characters collapsed to a single hyphen, leading and
// trailing hyphens trimmed. Names with nothing left fall back to "untitled".
// Make is idempotent: Make(Make(x)) == Make(x).
func Make(name string) string {
	s := strings.ToLower(name)
	s = nonAlnum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// FolderPath slugifies each segment of a slash-joined folder path
// independently and rejoins them. Empty segments and segments that slugify to
// the literal fallback are dropped, so a folder named only punctuation
// silently disappears from the URL path.
func FolderPath(path string) string {
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		s := Make(seg)
		if s == Fallback {
			continue
		}
		out = append(out, s)
	}
	return strings.Join(out, "/")
}
