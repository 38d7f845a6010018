package store

import "errors"

var (
	// ErrNotFound reports that the requested node does not exist for the user.
	ErrNotFound = errors.New("node not found")

	// ErrNameConflict reports that a sibling with the same name already
	// exists. It is the recoverable uniqueness failure callers must surface
	// to the user, never a crash.
	ErrNameConflict = errors.New("name already in use among siblings")
)
