package strudelfs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NodeType tags a node as a folder or a track. The set is closed; the
// persistence schema enforces it with a CHECK constraint.
type NodeType string

const (
	FolderNode NodeType = "folder"
	TrackNode  NodeType = "track"
)

// Step is one pattern of a multitrack track. Steps are ordered; a track's
// ActiveStep indexes into its Steps slice.
type Step struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Code     string    `json:"code"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Node is the single record shape for both folders and tracks. The opaque ID
// is the join key everywhere; it is never inferred from name or path. ParentID
// is the sole source of the hierarchy; nil means root-level. Path strings are
// always derived by graph traversal, never stored.
type Node struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     NodeType  `json:"type"`
	ParentID *string   `json:"parentId"`
	UserID   string    `json:"userId"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Track-only fields; zero-valued on folders.
	Code         string `json:"code,omitempty"`
	IsMultitrack bool   `json:"isMultitrack,omitempty"`
	Steps        []Step `json:"steps,omitempty"`
	ActiveStep   int    `json:"activeStep,omitempty"`
}

// IsFolder reports whether the node is a folder.
func (n *Node) IsFolder() bool { return n.Type == FolderNode }

// IsTrack reports whether the node is a track.
func (n *Node) IsTrack() bool { return n.Type == TrackNode }

// Touch updates the modified timestamp.
func (n *Node) Touch() { n.Modified = time.Now().UTC() }

// NewFolder constructs a folder node with a fresh id and timestamps.
func NewFolder(userID, name string, parentID *string) (*Node, error) {
	return newNode(userID, name, FolderNode, parentID)
}

// NewTrack constructs a track node with a fresh id and timestamps.
func NewTrack(userID, name string, parentID *string, code string) (*Node, error) {
	n, err := newNode(userID, name, TrackNode, parentID)
	if err != nil {
		return nil, err
	}
	n.Code = code
	return n, nil
}

func newNode(userID, name string, typ NodeType, parentID *string) (*Node, error) {
	if userID == "" {
		return nil, fmt.Errorf("cannot create %s node without a user id", typ)
	}
	if name == "" {
		return nil, fmt.Errorf("cannot create %s node without a name", typ)
	}
	now := time.Now().UTC()
	return &Node{
		ID:       uuid.NewString(),
		Name:     name,
		Type:     typ,
		ParentID: parentID,
		UserID:   userID,
		Created:  now,
		Modified: now,
	}, nil
}

// NewStep constructs a step with a fresh id and timestamps.
func NewStep(name, code string) Step {
	now := time.Now().UTC()
	return Step{
		ID:       uuid.NewString(),
		Name:     name,
		Code:     code,
		Created:  now,
		Modified: now,
	}
}
