package slug

import (
	"net/url"
	"regexp"
	"strings"

	strudelfs "github.com/dygy/strudel-client-sub004"
)

// Folder references arrive in two shapes depending on the era of the record:
// legacy rows stored the folder's opaque id on tracks, newer rows store the
// folder's path string. The id shapes recognized are nanoid-style 20-22 char
// strings and hyphenated UUIDs.
var (
	nanoidPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,22}$`)
	uuidPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// IsID reports whether raw is shaped like an opaque node id rather than a
// folder path.
func IsID(raw string) bool {
	if strings.Contains(raw, "/") {
		return false
	}
	return nanoidPattern.MatchString(raw) || uuidPattern.MatchString(raw)
}

// FolderRef is a folder reference normalized once at the boundary: exactly one
// of ID or Path is set.
type FolderRef struct {
	ID   string
	Path string
}

// ParseFolderRef classifies a raw folder value by shape.
func ParseFolderRef(raw string) FolderRef {
	if IsID(raw) {
		return FolderRef{ID: raw}
	}
	return FolderRef{Path: raw}
}

// ResolvePath returns the folder path for the ref, consulting paths (folder
// id -> path) when the ref is an id. Returns "" when an id ref cannot be
// resolved.
func (r FolderRef) ResolvePath(paths map[string]string) string {
	if r.ID == "" {
		return r.Path
	}
	return paths[r.ID]
}

// TrackURL builds the shareable deep link for a track:
// "/repl/<folder-slug-path>/<track-slug>", or "/repl/<track-slug>" for a
// root-level track. The folder argument may be a path string or an opaque
// folder id; id refs are resolved through folderPaths first, and a track
// whose folder id cannot be resolved links as if it were at the root.
func TrackURL(trackName, folder string, folderPaths map[string]string) string {
	trackSlug := Make(trackName)
	if folder == "" {
		return Prefix + "/" + trackSlug
	}
	folderSlug := FolderPath(ParseFolderRef(folder).ResolvePath(folderPaths))
	if folderSlug == "" {
		return Prefix + "/" + trackSlug
	}
	return Prefix + "/" + folderSlug + "/" + trackSlug
}

// TrackAddress is the parsed form of a track deep link.
type TrackAddress struct {
	FolderPath string // slug path of the containing folder; "" for root tracks
	TrackSlug  string
}

// ParseTrackURL is the inverse of TrackURL: it strips any query string and
// the "/repl" prefix, treats the last remaining segment as the track slug and
// everything before it as the folder path.
func ParseTrackURL(rawURL string) TrackAddress {
	path := rawURL
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimPrefix(path, Prefix)
	path = strings.Trim(path, "/")
	if path == "" {
		return TrackAddress{}
	}
	segments := strings.Split(path, "/")
	last := len(segments) - 1
	return TrackAddress{
		FolderPath: strings.Join(segments[:last], "/"),
		TrackSlug:  segments[last],
	}
}

// StepFromURL reads the "step" query parameter used for multitrack deep
// linking. Returns "" when absent or when the URL does not parse.
func StepFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("step")
}

// StepSlug returns the slug for a step's display name.
func StepSlug(step strudelfs.Step) string {
	return Make(step.Name)
}

// StepIndexByName resolves a step's display name to its index, comparing
// slugs so the match is case- and punctuation-insensitive. Returns -1 when no
// step matches.
func StepIndexByName(steps []strudelfs.Step, name string) int {
	want := Make(name)
	for i, step := range steps {
		if Make(step.Name) == want {
			return i
		}
	}
	return -1
}
