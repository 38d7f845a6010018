package store

import (
	"time"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/puzpuzpuz/xsync/v4"
)

// Mirror keeps the last successfully fetched node snapshot per user, the
// server-side analogue of the browser's persistent storage mirroring the
// remote table. When the store of record is unreachable, callers keep
// operating on the last-known-good snapshot instead of crashing.
//
// The Mirror is an explicitly constructed service object shared across
// workspaces, not module-level state.
type Mirror struct {
	snapshots *xsync.Map[string, *snapshot]
}

type snapshot struct {
	nodes   []*strudelfs.Node
	fetched time.Time
}

// NewMirror returns an empty mirror.
func NewMirror() *Mirror {
	return &Mirror{snapshots: xsync.NewMap[string, *snapshot]()}
}

// Put replaces the user's snapshot.
func (m *Mirror) Put(userID string, nodes []*strudelfs.Node) {
	m.snapshots.Store(userID, &snapshot{nodes: nodes, fetched: time.Now().UTC()})
}

// Get returns the user's last snapshot and when it was fetched.
func (m *Mirror) Get(userID string) ([]*strudelfs.Node, time.Time, bool) {
	snap, ok := m.snapshots.Load(userID)
	if !ok {
		return nil, time.Time{}, false
	}
	return snap.nodes, snap.fetched, true
}

// Invalidate drops the user's snapshot.
func (m *Mirror) Invalidate(userID string) {
	m.snapshots.Delete(userID)
}
