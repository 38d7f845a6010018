package strudelfs

import "time"

// LegacyFolder is a row of the flat-era folders table. Path is the
// slash-joined ancestor names including the folder's own name, so a root
// folder has Path == Name. Parent was written inconsistently across eras
// (sometimes an id, sometimes a path); the migration derives the parent from
// Path instead and only keeps the column around for decoding old rows.
type LegacyFolder struct {
	ID      string
	UserID  string
	Name    string
	Path    string
	Parent  *string
	Created time.Time
}

// LegacyTrack is a row of the flat-era tracks table. Folder holds the owning
// folder's path string, except in the oldest rows where it holds the folder's
// opaque id. Nil means the track lives at the root.
type LegacyTrack struct {
	ID           string
	UserID       string
	Name         string
	Code         string
	Created      time.Time
	Modified     time.Time
	Folder       *string
	IsMultitrack bool
	Steps        []Step
	ActiveStep   int
}
