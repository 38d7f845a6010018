package strudelfs

import "context"

// NodeStore is the persistence seam for graph-model nodes. The store validates
// sibling-name uniqueness at request time; the in-memory graph only warns
// about duplicates and never blocks on them.
type NodeStore interface {
	// ListNodes returns every node owned by the user in one consistent
	// snapshot. This feed is the required ingestion point for the graph.
	ListNodes(ctx context.Context, userID string) ([]*Node, error)

	CreateNode(ctx context.Context, node *Node) error
	UpdateNode(ctx context.Context, node *Node) error

	// SetParent reassigns a node's parent. A nil parent moves it to the root.
	SetParent(ctx context.Context, userID, id string, parentID *string) error

	// DeleteNodes removes a batch of nodes by id. Cascades are computed by the
	// caller from the graph; the store deletes exactly what it is given.
	DeleteNodes(ctx context.Context, userID string, ids []string) (int, error)

	// BulkInsertNodes inserts nodes one by one, collecting per-row failures
	// instead of aborting. Returns the number inserted. Not transactional:
	// a failed batch may leave a subset of nodes created.
	BulkInsertNodes(ctx context.Context, nodes []*Node) (int, []error)
}

// LegacyStore reads the flat-era tables. Only the migration consumes it.
type LegacyStore interface {
	ListLegacyFolders(ctx context.Context, userID string) ([]*LegacyFolder, error)
	ListLegacyTracks(ctx context.Context, userID string) ([]*LegacyTrack, error)
}
