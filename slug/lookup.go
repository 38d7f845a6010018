package slug

import (
	"fmt"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/dygy/strudel-client-sub004/internal/util"
)

// folderValue normalizes a track's stored folder reference; nil means root.
func folderValue(t *strudelfs.LegacyTrack) string {
	if t.Folder == nil {
		return ""
	}
	return *t.Folder
}

// FindTrackByFolderAndSlug returns the first track whose slugified name
// matches trackSlug and whose stored folder value equals folderPath exactly.
// A root lookup ("" folder) only matches tracks without a folder. When
// duplicate names in the same folder produce several candidates the first is
// returned deterministically and a warning is logged; this is a known
// ambiguity, not an error.
func FindTrackByFolderAndSlug(tracks []*strudelfs.LegacyTrack, folderPath, trackSlug string) *strudelfs.LegacyTrack {
	var matches []*strudelfs.LegacyTrack
	for _, t := range tracks {
		if Make(t.Name) != trackSlug {
			continue
		}
		if folderValue(t) != folderPath {
			continue
		}
		matches = append(matches, t)
	}
	if len(matches) == 0 {
		return nil
	}
	if len(matches) > 1 {
		logger := util.GetLogger("slug")
		logger.Warn().
			Str("slug", trackSlug).
			Str("folder", folderPath).
			Int("candidates", len(matches)).
			Msg("Ambiguous track slug, returning first match")
	}
	return matches[0]
}

// Unique returns the slug for name, suffixed with -2, -3, ... until it
// collides with no sibling track in the same folder. excludeID skips the
// track being renamed so a rename to the same name keeps its slug.
func Unique(name string, existing []*strudelfs.LegacyTrack, folderPath, excludeID string) string {
	taken := make(map[string]struct{})
	for _, t := range existing {
		if t.ID == excludeID {
			continue
		}
		if folderValue(t) != folderPath {
			continue
		}
		taken[Make(t.Name)] = struct{}{}
	}

	base := Make(name)
	candidate := base
	for i := 2; ; i++ {
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
