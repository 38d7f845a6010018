// Package workspace ties one user's graph, codec and store together behind a
// single owner. All graph mutations are funneled through a Workspace so the
// in-memory state stays consistent with the store of record: every remote
// mutation that succeeds is applied to the local graph, and every successful
// snapshot refreshes the mirror. When the remote is unreachable the workspace
// keeps serving the last-known-good snapshot.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/dygy/strudel-client-sub004/config"
	"github.com/dygy/strudel-client-sub004/filesystem"
	"github.com/dygy/strudel-client-sub004/internal/util"
	"github.com/dygy/strudel-client-sub004/slug"
	"github.com/dygy/strudel-client-sub004/store"
)

// ErrInvalidMove reports a move whose target is the node itself or one of its
// descendants.
var ErrInvalidMove = errors.New("invalid move target")

// Workspace is one user's live session over the node graph.
type Workspace struct {
	cfg    *config.Config
	store  *store.Store
	mirror *store.Mirror
	graph  *filesystem.Graph
	userID string
	log    util.Logger
}

// New creates a workspace for userID. The mirror may be shared across
// workspaces; pass nil to use a private one.
func New(cfg *config.Config, st *store.Store, mirror *store.Mirror, userID string) *Workspace {
	if mirror == nil {
		mirror = store.NewMirror()
	}
	return &Workspace{
		cfg:    cfg,
		store:  st,
		mirror: mirror,
		graph:  filesystem.New(),
		userID: userID,
		log:    util.GetLogger("workspace"),
	}
}

// Graph exposes the underlying graph for read-only queries. Mutations must go
// through the workspace.
func (w *Workspace) Graph() *filesystem.Graph { return w.graph }

// Load fetches the user's nodes from the store and rebuilds the graph. On
// store failure it falls back to the mirror's last-known-good snapshot; the
// error is only returned when no snapshot exists either.
func (w *Workspace) Load(ctx context.Context) error {
	nodes, err := w.store.ListNodes(ctx, w.userID)
	if err != nil {
		snap, fetched, ok := w.mirror.Get(w.userID)
		if !ok {
			return fmt.Errorf("load nodes for %s: %w", w.userID, err)
		}
		w.log.Warn().Err(err).Time("snapshot", fetched).Msg("Store unreachable, using mirrored snapshot")
		w.graph.LoadNodes(snap)
		return nil
	}
	w.graph.LoadNodes(nodes)
	w.mirror.Put(w.userID, nodes)
	return nil
}

// CreateFolder creates a folder remotely and in the local graph.
func (w *Workspace) CreateFolder(ctx context.Context, name string, parentID *string) (*strudelfs.Node, error) {
	n, err := strudelfs.NewFolder(w.userID, name, parentID)
	if err != nil {
		return nil, err
	}
	return w.create(ctx, n)
}

// CreateTrack creates a track remotely and in the local graph.
func (w *Workspace) CreateTrack(ctx context.Context, name string, parentID *string, code string) (*strudelfs.Node, error) {
	n, err := strudelfs.NewTrack(w.userID, name, parentID, code)
	if err != nil {
		return nil, err
	}
	return w.create(ctx, n)
}

func (w *Workspace) create(ctx context.Context, n *strudelfs.Node) (*strudelfs.Node, error) {
	if err := w.store.CreateNode(ctx, n); err != nil {
		return nil, err
	}
	w.graph.AddNode(n)
	w.refreshMirror()
	return n, nil
}

// Rename changes a node's name. The store enforces sibling uniqueness at
// request time; a losing concurrent rename surfaces as store.ErrNameConflict
// and leaves both the remote row and the local graph untouched.
func (w *Workspace) Rename(ctx context.Context, id, newName string) error {
	n, ok := w.graph.GetNode(id)
	if !ok {
		return fmt.Errorf("rename %s: %w", id, store.ErrNotFound)
	}
	updated := *n
	updated.Name = newName
	if err := w.store.UpdateNode(ctx, &updated); err != nil {
		return err
	}
	n.Name = newName
	n.Touch()
	w.refreshMirror()
	return nil
}

// SetCode overwrites a track's source text.
func (w *Workspace) SetCode(ctx context.Context, id, code string) error {
	n, ok := w.graph.GetNode(id)
	if !ok || !n.IsTrack() {
		return fmt.Errorf("set code of %s: %w", id, store.ErrNotFound)
	}
	updated := *n
	updated.Code = code
	if err := w.store.UpdateNode(ctx, &updated); err != nil {
		return err
	}
	n.Code = code
	n.Touch()
	w.refreshMirror()
	return nil
}

// Move reparents a node; nil moves it to the root. Moves that would create a
// cycle are rejected with ErrInvalidMove before any remote call.
func (w *Workspace) Move(ctx context.Context, id string, newParentID *string) error {
	if _, ok := w.graph.GetNode(id); !ok {
		return fmt.Errorf("move %s: %w", id, store.ErrNotFound)
	}
	if !w.graph.CanMove(id, newParentID) {
		return fmt.Errorf("move %s: %w", id, ErrInvalidMove)
	}
	if err := w.store.SetParent(ctx, w.userID, id, newParentID); err != nil {
		return err
	}
	w.graph.MoveNode(id, newParentID)
	w.refreshMirror()
	return nil
}

// Delete removes a node and its entire descendant subtree, remotely and
// locally. The cascade set is computed from the graph.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	ids := w.graph.SubtreeIDs(id)
	if len(ids) == 0 {
		return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
	}
	if _, err := w.store.DeleteNodes(ctx, w.userID, ids); err != nil {
		return err
	}
	w.graph.RemoveNode(id)
	w.refreshMirror()
	return nil
}

// Tree returns the sorted materialized tree for UI rendering.
func (w *Workspace) Tree() []*filesystem.TreeNode { return w.graph.BuildTree() }

// Validate runs the on-demand hierarchy check.
func (w *Workspace) Validate() filesystem.ValidationResult { return w.graph.ValidateHierarchy() }

// Stats returns aggregate graph counts.
func (w *Workspace) Stats() filesystem.GraphStats { return w.graph.Stats() }

// TrackURL returns the shareable deep link for a track node.
func (w *Workspace) TrackURL(id string) (string, error) {
	n, ok := w.graph.GetNode(id)
	if !ok || !n.IsTrack() {
		return "", fmt.Errorf("track url of %s: %w", id, store.ErrNotFound)
	}
	folderPath := ""
	if parent, ok := w.graph.GetParent(id); ok {
		folderPath = w.graph.GetPath(parent.ID)
	}
	return slug.TrackURL(n.Name, folderPath, nil), nil
}

// ResolveTrackURL resolves a deep link of the form
// "/repl/<segments>/<track-slug>[?step=<name>]" to a concrete track node and
// a step index (-1 when the URL names no step or the step is unknown).
func (w *Workspace) ResolveTrackURL(rawURL string) (*strudelfs.Node, int, error) {
	addr := slug.ParseTrackURL(rawURL)
	if addr.TrackSlug == "" {
		return nil, -1, fmt.Errorf("url %q: %w", rawURL, store.ErrNotFound)
	}

	parent, ok := w.resolveFolderSlugPath(addr.FolderPath)
	if !ok {
		return nil, -1, fmt.Errorf("folder path %q: %w", addr.FolderPath, store.ErrNotFound)
	}

	candidates := w.childrenOf(parent)
	var matches []*strudelfs.Node
	for _, n := range candidates {
		if n.IsTrack() && slug.Make(n.Name) == addr.TrackSlug {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return nil, -1, fmt.Errorf("track %q: %w", addr.TrackSlug, store.ErrNotFound)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	if len(matches) > 1 {
		w.log.Warn().Str("slug", addr.TrackSlug).Str("folder", addr.FolderPath).
			Int("candidates", len(matches)).Msg("Ambiguous track slug, returning first match")
	}
	track := matches[0]

	stepIdx := -1
	if stepName := slug.StepFromURL(rawURL); stepName != "" {
		stepIdx = slug.StepIndexByName(track.Steps, stepName)
	}
	return track, stepIdx, nil
}

// resolveFolderSlugPath walks slugified folder names from the roots down.
// Returns the folder whose subtree the final segment names, or nil for the
// root level; ok is false when any segment fails to resolve.
func (w *Workspace) resolveFolderSlugPath(slugPath string) (*strudelfs.Node, bool) {
	if slugPath == "" {
		return nil, true
	}
	var current *strudelfs.Node
	for _, segment := range splitSlugPath(slugPath) {
		next := w.findChildFolderBySlug(current, segment)
		if next == nil {
			return nil, false
		}
		current = next
	}
	return current, true
}

func (w *Workspace) findChildFolderBySlug(parent *strudelfs.Node, segment string) *strudelfs.Node {
	var best *strudelfs.Node
	for _, n := range w.childrenOf(parent) {
		if !n.IsFolder() || slug.Make(n.Name) != segment {
			continue
		}
		if best == nil || n.ID < best.ID {
			best = n
		}
	}
	return best
}

func (w *Workspace) childrenOf(parent *strudelfs.Node) []*strudelfs.Node {
	if parent == nil {
		return w.graph.GetRootNodes()
	}
	return w.graph.GetChildren(parent.ID)
}

func (w *Workspace) refreshMirror() {
	w.mirror.Put(w.userID, w.graph.AllNodes())
}

func splitSlugPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
