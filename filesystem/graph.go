// Package filesystem holds the in-memory graph over one user's folder and
// track nodes. The graph is an arena (id -> node) plus two derived indices
// (children, parent); referential integrity is never assumed at load time and
// is checked on demand via ValidateHierarchy rather than asserted eagerly.
//
// A Graph instance is single-threaded by design: all operations run to
// completion on the calling goroutine and mutations must be serialized
// through a single owner. Interleaving LoadNodes with concurrent mutations on
// the same instance is undefined.
package filesystem

import (
	"strings"

	strudelfs "github.com/dygy/strudel-client-sub004"
)

// Graph indexes nodes by id. The parents index is redundant with each node's
// ParentID but avoids a node lookup on every upward hop; both indices only
// hold edges whose parent actually exists in the arena, so a dangling
// ParentID surfaces through ValidateHierarchy instead of a broken index.
type Graph struct {
	nodes    map[string]*strudelfs.Node
	children map[string]map[string]struct{}
	parents  map[string]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*strudelfs.Node),
		children: make(map[string]map[string]struct{}),
		parents:  make(map[string]string),
	}
}

// LoadNodes replaces all internal state with the given snapshot. Construction
// is two-pass (nodes first, then edges) so input ordering does not matter,
// including children listed before their parents. Edges referencing nodes
// absent from the snapshot are silently left unwired.
func (g *Graph) LoadNodes(nodes []*strudelfs.Node) {
	g.nodes = make(map[string]*strudelfs.Node, len(nodes))
	g.children = make(map[string]map[string]struct{})
	g.parents = make(map[string]string)

	for _, n := range nodes {
		g.nodes[n.ID] = n
	}
	for _, n := range nodes {
		g.wireParent(n)
	}
}

// AddNode inserts a node and wires it into its parent's child set when the
// parent is present. It does not validate cycles: a freshly created node
// cannot be its own ancestor, and pre-existing inconsistencies in loaded data
// are the validator's job.
func (g *Graph) AddNode(n *strudelfs.Node) {
	g.nodes[n.ID] = n
	g.wireParent(n)
}

func (g *Graph) wireParent(n *strudelfs.Node) {
	if n.ParentID == nil {
		return
	}
	pid := *n.ParentID
	if _, ok := g.nodes[pid]; !ok {
		return
	}
	set, ok := g.children[pid]
	if !ok {
		set = make(map[string]struct{})
		g.children[pid] = set
	}
	set[n.ID] = struct{}{}
	g.parents[n.ID] = pid
}

// RemoveNode removes a node and, post-order, its entire descendant subtree.
// No-op when the id is absent. A visited set bounds the walk so cyclic loaded
// data cannot recurse forever.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	if pid, ok := g.parents[id]; ok {
		delete(g.children[pid], id)
	}
	g.removeSubtree(id, make(map[string]struct{}))
}

func (g *Graph) removeSubtree(id string, seen map[string]struct{}) {
	if _, ok := seen[id]; ok {
		return
	}
	seen[id] = struct{}{}
	for childID := range g.children[id] {
		g.removeSubtree(childID, seen)
	}
	delete(g.nodes, id)
	delete(g.children, id)
	delete(g.parents, id)
}

// MoveNode reparents a node, or makes it a root when newParentID is nil.
// Returns false and changes nothing when the node is unknown or CanMove
// rejects the target. On success the node's own ParentID is updated to stay
// consistent with the index.
func (g *Graph) MoveNode(id string, newParentID *string) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	if !g.CanMove(id, newParentID) {
		return false
	}
	if pid, ok := g.parents[id]; ok {
		delete(g.children[pid], id)
		delete(g.parents, id)
	}
	n.ParentID = newParentID
	g.wireParent(n)
	return true
}

// CanMove reports whether targetParentID is a legal new parent for id. The
// root (nil) is always a valid target; a node may not become its own parent,
// nor a child of any of its descendants.
func (g *Graph) CanMove(id string, targetParentID *string) bool {
	if targetParentID == nil {
		return true
	}
	target := *targetParentID
	if id == target {
		return false
	}
	return !g.isDescendant(id, target)
}

// isDescendant reports whether candidate is anywhere in ancestor's subtree.
// The walk tracks visited ids so cyclic loaded data terminates.
func (g *Graph) isDescendant(ancestorID, candidateID string) bool {
	seen := map[string]struct{}{ancestorID: {}}
	stack := []string{ancestorID}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for childID := range g.children[cur] {
			if childID == candidateID {
				return true
			}
			if _, ok := seen[childID]; ok {
				continue
			}
			seen[childID] = struct{}{}
			stack = append(stack, childID)
		}
	}
	return false
}

// GetNode returns the node for id.
func (g *Graph) GetNode(id string) (*strudelfs.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// GetChildren returns the direct children of id in no particular order.
// BuildTree is the sorted view.
func (g *Graph) GetChildren(id string) []*strudelfs.Node {
	set := g.children[id]
	out := make([]*strudelfs.Node, 0, len(set))
	for childID := range set {
		if n, ok := g.nodes[childID]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetParent returns the parent node of id, if one is wired.
func (g *Graph) GetParent(id string) (*strudelfs.Node, bool) {
	pid, ok := g.parents[id]
	if !ok {
		return nil, false
	}
	n, ok := g.nodes[pid]
	return n, ok
}

// GetRootNodes returns every node with a nil ParentID.
func (g *Graph) GetRootNodes() []*strudelfs.Node {
	var out []*strudelfs.Node
	for _, n := range g.nodes {
		if n.ParentID == nil {
			out = append(out, n)
		}
	}
	return out
}

// AllNodes returns every node in the arena in no particular order.
func (g *Graph) AllNodes() []*strudelfs.Node {
	out := make([]*strudelfs.Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	return out
}

// Len returns the number of nodes in the arena.
func (g *Graph) Len() int { return len(g.nodes) }

// GetPath derives the node's path by walking parent pointers to the root and
// joining ancestor names root-to-leaf with "/". Duplicate sibling names mean
// derived paths are not guaranteed unique. Returns "" for an unknown id.
// The walk is bounded by the arena size so cyclic loaded data cannot hang it.
func (g *Graph) GetPath(id string) string {
	n, ok := g.nodes[id]
	if !ok {
		return ""
	}
	names := []string{n.Name}
	cur := id
	for range g.nodes {
		pid, ok := g.parents[cur]
		if !ok {
			break
		}
		parent, ok := g.nodes[pid]
		if !ok {
			break
		}
		names = append(names, parent.Name)
		cur = pid
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// GetDepth counts parent-pointer hops to the root; root nodes have depth 0.
// Unknown ids also report 0.
func (g *Graph) GetDepth(id string) int {
	depth := 0
	cur := id
	for range g.nodes {
		pid, ok := g.parents[cur]
		if !ok {
			break
		}
		depth++
		cur = pid
	}
	return depth
}

// SubtreeIDs returns id plus the ids of all of its descendants, each exactly
// once even when loaded data is cyclic. Callers use it to compute
// cascade-delete batches for the store. Empty for unknown ids.
func (g *Graph) SubtreeIDs(id string) []string {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	seen := map[string]struct{}{id: {}}
	out := []string{id}
	for i := 0; i < len(out); i++ {
		for childID := range g.children[out[i]] {
			if _, ok := seen[childID]; ok {
				continue
			}
			seen[childID] = struct{}{}
			out = append(out, childID)
		}
	}
	return out
}

// DetectCycles runs a global DFS over the child edges and reports whether any
// back-edge exists. Every node is visited exactly once overall: a globally
// visited set skips re-exploration, while the recursion-stack set catches a
// node revisited within the current walk.
func (g *Graph) DetectCycles() bool {
	visited := make(map[string]struct{}, len(g.nodes))
	onStack := make(map[string]struct{})

	var walk func(id string) bool
	walk = func(id string) bool {
		visited[id] = struct{}{}
		onStack[id] = struct{}{}
		for childID := range g.children[id] {
			if _, ok := onStack[childID]; ok {
				return true
			}
			if _, ok := visited[childID]; ok {
				continue
			}
			if walk(childID) {
				return true
			}
		}
		delete(onStack, id)
		return false
	}

	for id := range g.nodes {
		if _, ok := visited[id]; ok {
			continue
		}
		if walk(id) {
			return true
		}
	}
	return false
}

// FindByName returns every node whose name contains the query,
// case-insensitively. A non-empty typeFilter restricts the result to one
// node type.
func (g *Graph) FindByName(query string, typeFilter strudelfs.NodeType) []*strudelfs.Node {
	q := strings.ToLower(query)
	var out []*strudelfs.Node
	for _, n := range g.nodes {
		if typeFilter != "" && n.Type != typeFilter {
			continue
		}
		if strings.Contains(strings.ToLower(n.Name), q) {
			out = append(out, n)
		}
	}
	return out
}

// FindDuplicateNames returns every direct child of parentID (nil for the root
// group) that shares its name with at least one sibling. All members of each
// duplicate group are returned, not just the extras.
func (g *Graph) FindDuplicateNames(parentID *string) []*strudelfs.Node {
	var siblings []*strudelfs.Node
	if parentID == nil {
		siblings = g.GetRootNodes()
	} else {
		siblings = g.GetChildren(*parentID)
	}

	byName := make(map[string][]*strudelfs.Node)
	for _, n := range siblings {
		byName[n.Name] = append(byName[n.Name], n)
	}
	var out []*strudelfs.Node
	for _, group := range byName {
		if len(group) > 1 {
			out = append(out, group...)
		}
	}
	return out
}

// GraphStats aggregates node counts for diagnostics.
type GraphStats struct {
	TotalNodes  int
	Folders     int
	Tracks      int
	Multitracks int
	MaxDepth    int
	RootNodes   int
}

// Stats scans the arena once and returns aggregate counts.
func (g *Graph) Stats() GraphStats {
	var s GraphStats
	s.TotalNodes = len(g.nodes)
	for id, n := range g.nodes {
		switch n.Type {
		case strudelfs.FolderNode:
			s.Folders++
		case strudelfs.TrackNode:
			s.Tracks++
			if n.IsMultitrack {
				s.Multitracks++
			}
		}
		if n.ParentID == nil {
			s.RootNodes++
		}
		if d := g.GetDepth(id); d > s.MaxDepth {
			s.MaxDepth = d
		}
	}
	return s
}
