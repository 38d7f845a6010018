package filesystem

import (
	"sort"
	"strings"

	strudelfs "github.com/dygy/strudel-client-sub004"
)

// TreeNode is the materialized view of one node for UI consumption. Path and
// Depth are precomputed so renderers never need further graph queries.
type TreeNode struct {
	Node     *strudelfs.Node
	Path     string
	Depth    int
	Children []*TreeNode
}

// BuildTree materializes the root nodes into a recursive TreeNode structure.
// At every level children are sorted folders-first, then case-insensitively
// by name within the same type. Nodes with a dangling parent are unreachable
// from any root and therefore absent from the tree.
func (g *Graph) BuildTree() []*TreeNode {
	roots := g.GetRootNodes()
	sortSiblings(roots)
	out := make([]*TreeNode, 0, len(roots))
	for _, n := range roots {
		out = append(out, g.buildSubtree(n, "", 0))
	}
	return out
}

func (g *Graph) buildSubtree(n *strudelfs.Node, parentPath string, depth int) *TreeNode {
	path := n.Name
	if parentPath != "" {
		path = parentPath + "/" + n.Name
	}
	tn := &TreeNode{Node: n, Path: path, Depth: depth}

	children := g.GetChildren(n.ID)
	sortSiblings(children)
	for _, child := range children {
		tn.Children = append(tn.Children, g.buildSubtree(child, path, depth+1))
	}
	return tn
}

// sortSiblings orders folders before tracks, then alphabetically within the
// same type. Ties on lowercased names fall back to id so the order is stable
// across runs even with duplicate sibling names.
func sortSiblings(nodes []*strudelfs.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Type != b.Type {
			return a.Type == strudelfs.FolderNode
		}
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
}
