package filesystem

import (
	"fmt"
	"sort"
)

// ValidationResult carries structural errors and advisory warnings from
// ValidateHierarchy. Errors make the hierarchy invalid; warnings never block
// any operation and are purely informational for the UI.
type ValidationResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// ValidateHierarchy checks the loaded data for structural problems. Errors:
// a cycle anywhere in the graph, or a node whose ParentID references a node
// that does not exist. Warnings: duplicate names among siblings, grouped by
// parent including the virtual root group for top-level nodes.
//
// The graph tolerates all of these conditions during normal mutation;
// validation is an explicit, on-demand call.
func (g *Graph) ValidateHierarchy() ValidationResult {
	var res ValidationResult

	if g.DetectCycles() {
		res.Errors = append(res.Errors, "cycle detected in node hierarchy")
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// parent key -> name -> sibling count
	groups := make(map[string]map[string]int)
	for _, id := range ids {
		n := g.nodes[id]
		key := "root"
		if n.ParentID != nil {
			pid := *n.ParentID
			if _, ok := g.nodes[pid]; !ok {
				res.Errors = append(res.Errors,
					fmt.Sprintf("node %q (%s) references non-existent parent %s", n.Name, n.ID, pid))
			}
			key = pid
		}
		byName, ok := groups[key]
		if !ok {
			byName = make(map[string]int)
			groups[key] = byName
		}
		byName[n.Name]++
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		names := make([]string, 0, len(groups[key]))
		for name := range groups[key] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if count := groups[key][name]; count > 1 {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("duplicate name %q among %d siblings under %s", name, count, parentLabel(g, key)))
			}
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

func parentLabel(g *Graph, key string) string {
	if key == "root" {
		return "root"
	}
	if n, ok := g.nodes[key]; ok {
		return fmt.Sprintf("folder %q", n.Name)
	}
	return key
}
