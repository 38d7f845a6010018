// Package migrate converts the legacy flat folder/track tables into the
// homogeneous graph-node table. The migration is one-shot and re-runnable:
// rows whose node already exists under the same type, parent and name are
// skipped rather than duplicated. It is best-effort dedup, not a strict
// idempotence guarantee, and the batch insert is not atomic: partial failures
// are collected and reported, never hidden.
package migrate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/dygy/strudel-client-sub004/filesystem"
	"github.com/dygy/strudel-client-sub004/internal/util"
	"github.com/dygy/strudel-client-sub004/slug"
	"github.com/dygy/strudel-client-sub004/store"
)

// DefaultBatchSize bounds how many nodes go to the store per insert batch.
const DefaultBatchSize = 500

// Report summarizes one migration run, including the verification pass over
// the re-fetched rows.
type Report struct {
	Folders  int // folder nodes constructed
	Tracks   int // track nodes constructed
	Skipped  int // legacy rows already migrated by a prior run (type+parent+name match)
	Inserted int // rows actually written
	Errors   []string
	Valid    bool // hierarchy validation of the re-fetched graph
	Warnings []string
}

// Migrator bridges the legacy flat model to the graph model for one store.
type Migrator struct {
	store *store.Store
	batch int
	log   util.Logger
}

// New returns a migrator writing batches of batchSize nodes; batchSize <= 0
// falls back to DefaultBatchSize.
func New(s *store.Store, batchSize int) *Migrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Migrator{store: s, batch: batchSize, log: util.GetLogger("migrate")}
}

// Run migrates every legacy folder and track owned by userID, then re-fetches
// the inserted rows and rebuilds a graph from them as a verification step.
func (m *Migrator) Run(ctx context.Context, userID string) (*Report, error) {
	folders, err := m.store.ListLegacyFolders(ctx, userID)
	if err != nil {
		return nil, err
	}
	tracks, err := m.store.ListLegacyTracks(ctx, userID)
	if err != nil {
		return nil, err
	}
	existing, err := m.store.ListNodes(ctx, userID)
	if err != nil {
		return nil, err
	}

	rep := &Report{}

	// Nodes already migrated by a prior run, keyed by type + parent id + name.
	// Only the pre-run snapshot seeds this map: duplicate sibling names among
	// the legacy rows themselves are legal (the graph merely warns about them)
	// and every distinct legacy row must migrate on a first run. A folder
	// skipped as already-present still maps its legacy path to the existing
	// node id so its children and tracks resolve on re-runs.
	present := make(map[string]string, len(existing))
	for _, n := range existing {
		present[dedupKey(n.Type, n.ParentID, n.Name)] = n.ID
	}

	// Legacy folders can be stored in any order; their parents are resolved
	// through the path map, which only works parent-before-child. Sorting by
	// path depth makes that hold regardless of stored order.
	sort.SliceStable(folders, func(i, j int) bool {
		return strings.Count(folders[i].Path, "/") < strings.Count(folders[j].Path, "/")
	})

	pathToID := make(map[string]string, len(folders)) // legacy path -> new node id
	idToPath := make(map[string]string, len(folders)) // legacy folder id -> path

	var batch []*strudelfs.Node

	for _, f := range folders {
		idToPath[f.ID] = f.Path
		parentID := resolveParent(parentPath(f.Path), pathToID)

		// Two legacy folders with the same path would be indistinguishable as
		// parents, so only the first row per path migrates.
		if _, ok := pathToID[f.Path]; ok {
			rep.Skipped++
			continue
		}
		if id, ok := present[dedupKey(strudelfs.FolderNode, parentID, f.Name)]; ok {
			pathToID[f.Path] = id
			rep.Skipped++
			continue
		}
		n, err := strudelfs.NewFolder(userID, f.Name, parentID)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("folder %s: %v", f.ID, err))
			continue
		}
		n.Created = f.Created
		n.Modified = f.Created
		pathToID[f.Path] = n.ID
		batch = append(batch, n)
		rep.Folders++
	}

	for _, t := range tracks {
		parentID := m.resolveTrackParent(t, pathToID, idToPath)

		if _, ok := present[dedupKey(strudelfs.TrackNode, parentID, t.Name)]; ok {
			rep.Skipped++
			continue
		}
		n, err := strudelfs.NewTrack(userID, t.Name, parentID, t.Code)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("track %s: %v", t.ID, err))
			continue
		}
		n.Created = t.Created
		n.Modified = t.Modified
		n.IsMultitrack = t.IsMultitrack
		n.Steps = t.Steps
		n.ActiveStep = t.ActiveStep
		batch = append(batch, n)
		rep.Tracks++
	}

	for start := 0; start < len(batch); start += m.batch {
		end := min(start+m.batch, len(batch))
		inserted, errs := m.store.BulkInsertNodes(ctx, batch[start:end])
		rep.Inserted += inserted
		for _, err := range errs {
			rep.Errors = append(rep.Errors, err.Error())
		}
	}

	// Verification: rebuild a graph from the rows that actually landed and
	// validate it, catching inserts that silently failed to wire correctly.
	rows, err := m.store.ListNodes(ctx, userID)
	if err != nil {
		return rep, fmt.Errorf("verify migrated nodes: %w", err)
	}
	g := filesystem.New()
	g.LoadNodes(rows)
	result := g.ValidateHierarchy()
	rep.Valid = result.IsValid
	rep.Warnings = result.Warnings
	rep.Errors = append(rep.Errors, result.Errors...)

	m.log.Info().
		Str("user", userID).
		Int("folders", rep.Folders).
		Int("tracks", rep.Tracks).
		Int("skipped", rep.Skipped).
		Int("inserted", rep.Inserted).
		Int("errors", len(rep.Errors)).
		Bool("valid", rep.Valid).
		Msg("Migration finished")
	return rep, nil
}

// resolveTrackParent maps a legacy track's folder reference (path string, or
// folder id in the oldest rows) to the new parent node id. Unresolvable
// references degrade to root rather than failing the row.
func (m *Migrator) resolveTrackParent(t *strudelfs.LegacyTrack, pathToID, idToPath map[string]string) *string {
	if t.Folder == nil || *t.Folder == "" {
		return nil
	}
	raw := *t.Folder
	path := raw
	if ref := slug.ParseFolderRef(raw); ref.ID != "" {
		resolved, ok := idToPath[ref.ID]
		if !ok {
			m.log.Warn().Str("track", t.ID).Str("folder", raw).Msg("Unknown legacy folder id, migrating track to root")
			return nil
		}
		path = resolved
	}
	return resolveParent(path, pathToID)
}

func resolveParent(path string, pathToID map[string]string) *string {
	if path == "" {
		return nil
	}
	if id, ok := pathToID[path]; ok {
		return &id
	}
	return nil
}

// parentPath returns everything before the final segment of a legacy folder
// path; a root folder's path is just its own name.
func parentPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

func dedupKey(typ strudelfs.NodeType, parentID *string, name string) string {
	parent := "root"
	if parentID != nil {
		parent = *parentID
	}
	return string(typ) + "\x00" + parent + "\x00" + name
}
