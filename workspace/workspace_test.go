package workspace

import (
	"context"
	"path/filepath"
	"testing"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/dygy/strudel-client-sub004/config"
	"github.com/dygy/strudel-client-sub004/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	w := New(config.NewDefaultConfig(), openTestStore(t), nil, "alice")
	require.NoError(t, w.Load(context.Background()))
	return w
}

// seedTree builds Drums/Kicks with a "My Track!" inside Kicks and returns the
// three nodes.
func seedTree(t *testing.T, w *Workspace) (drums, kicks, track *strudelfs.Node) {
	t.Helper()
	ctx := context.Background()

	drums, err := w.CreateFolder(ctx, "Drums", nil)
	require.NoError(t, err)
	kicks, err = w.CreateFolder(ctx, "Kicks", &drums.ID)
	require.NoError(t, err)
	track, err = w.CreateTrack(ctx, "My Track!", &kicks.ID, `s("bd*4")`)
	require.NoError(t, err)
	return drums, kicks, track
}

func TestCreatePersistsAndWiresGraph(t *testing.T) {
	w := newTestWorkspace(t)
	_, kicks, track := seedTree(t, w)

	assert.Equal(t, "Drums/Kicks", w.Graph().GetPath(kicks.ID))
	assert.Equal(t, "Drums/Kicks/My Track!", w.Graph().GetPath(track.ID))

	// A fresh workspace over the same store sees the same tree.
	w2 := New(w.cfg, w.store, nil, "alice")
	require.NoError(t, w2.Load(context.Background()))
	assert.Equal(t, 3, w2.Graph().Len())
	assert.Equal(t, "Drums/Kicks", w2.Graph().GetPath(kicks.ID))
}

func TestCreateRejectsSiblingNameConflict(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	_, err := w.CreateFolder(ctx, "Drums", nil)
	require.NoError(t, err)
	_, err = w.CreateFolder(ctx, "Drums", nil)
	require.ErrorIs(t, err, store.ErrNameConflict)
	assert.Equal(t, 1, w.Graph().Len())
}

func TestRename(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	_, kicks, _ := seedTree(t, w)

	require.NoError(t, w.Rename(ctx, kicks.ID, "Snares"))
	n, ok := w.Graph().GetNode(kicks.ID)
	require.True(t, ok)
	assert.Equal(t, "Snares", n.Name)

	w2 := New(w.cfg, w.store, nil, "alice")
	require.NoError(t, w2.Load(ctx))
	n2, ok := w2.Graph().GetNode(kicks.ID)
	require.True(t, ok)
	assert.Equal(t, "Snares", n2.Name)
}

func TestRenameConflictLeavesGraphUntouched(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	seedTree(t, w)

	other, err := w.CreateFolder(ctx, "Synths", nil)
	require.NoError(t, err)

	err = w.Rename(ctx, other.ID, "Drums")
	require.ErrorIs(t, err, store.ErrNameConflict)
	n, ok := w.Graph().GetNode(other.ID)
	require.True(t, ok)
	assert.Equal(t, "Synths", n.Name)
}

func TestRenameUnknownNode(t *testing.T) {
	w := newTestWorkspace(t)
	err := w.Rename(context.Background(), "nope", "Anything")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetCode(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	_, _, track := seedTree(t, w)

	require.NoError(t, w.SetCode(ctx, track.ID, `s("bd sd")`))
	n, _ := w.Graph().GetNode(track.ID)
	assert.Equal(t, `s("bd sd")`, n.Code)
}

func TestSetCodeRejectsFolders(t *testing.T) {
	w := newTestWorkspace(t)
	drums, _, _ := seedTree(t, w)

	err := w.SetCode(context.Background(), drums.ID, "x")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMove(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	drums, kicks, track := seedTree(t, w)

	// Track up one level.
	require.NoError(t, w.Move(ctx, track.ID, &drums.ID))
	assert.Equal(t, "Drums/My Track!", w.Graph().GetPath(track.ID))

	// Folder to root.
	require.NoError(t, w.Move(ctx, kicks.ID, nil))
	assert.Equal(t, "Kicks", w.Graph().GetPath(kicks.ID))

	w2 := New(w.cfg, w.store, nil, "alice")
	require.NoError(t, w2.Load(ctx))
	assert.Equal(t, "Drums/My Track!", w2.Graph().GetPath(track.ID))
	assert.Equal(t, "Kicks", w2.Graph().GetPath(kicks.ID))
}

func TestMoveIntoOwnSubtreeRejected(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	drums, kicks, _ := seedTree(t, w)

	err := w.Move(ctx, drums.ID, &kicks.ID)
	require.ErrorIs(t, err, ErrInvalidMove)
	// The remote row never changed either.
	w2 := New(w.cfg, w.store, nil, "alice")
	require.NoError(t, w2.Load(ctx))
	assert.Equal(t, "Drums", w2.Graph().GetPath(drums.ID))
}

func TestDeleteCascades(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	drums, kicks, track := seedTree(t, w)

	require.NoError(t, w.Delete(ctx, drums.ID))
	assert.Equal(t, 0, w.Graph().Len())

	w2 := New(w.cfg, w.store, nil, "alice")
	require.NoError(t, w2.Load(ctx))
	assert.Equal(t, 0, w2.Graph().Len())
	_, ok := w2.Graph().GetNode(kicks.ID)
	assert.False(t, ok)
	_, ok = w2.Graph().GetNode(track.ID)
	assert.False(t, ok)
}

func TestDeleteUnknownNode(t *testing.T) {
	w := newTestWorkspace(t)
	err := w.Delete(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestTrackURL(t *testing.T) {
	w := newTestWorkspace(t)
	_, _, track := seedTree(t, w)

	url, err := w.TrackURL(track.ID)
	require.NoError(t, err)
	assert.Equal(t, "/repl/drums/kicks/my-track", url)
}

func TestTrackURLRootTrack(t *testing.T) {
	w := newTestWorkspace(t)
	track, err := w.CreateTrack(context.Background(), "Sketch", nil, "")
	require.NoError(t, err)

	url, err := w.TrackURL(track.ID)
	require.NoError(t, err)
	assert.Equal(t, "/repl/sketch", url)
}

func TestResolveTrackURL(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()
	_, _, track := seedTree(t, w)

	track.Steps = append(track.Steps,
		strudelfs.NewStep("Intro", "a"),
		strudelfs.NewStep("Heavy Drop", "b"))
	require.NoError(t, w.store.UpdateNode(ctx, track))

	got, step, err := w.ResolveTrackURL("/repl/drums/kicks/my-track")
	require.NoError(t, err)
	assert.Equal(t, track.ID, got.ID)
	assert.Equal(t, -1, step)

	got, step, err = w.ResolveTrackURL("/repl/drums/kicks/my-track?step=heavy-drop")
	require.NoError(t, err)
	assert.Equal(t, track.ID, got.ID)
	assert.Equal(t, 1, step)

	// Unknown step names resolve the track but no step.
	_, step, err = w.ResolveTrackURL("/repl/drums/kicks/my-track?step=outro")
	require.NoError(t, err)
	assert.Equal(t, -1, step)
}

func TestResolveTrackURLMisses(t *testing.T) {
	w := newTestWorkspace(t)
	seedTree(t, w)

	_, _, err := w.ResolveTrackURL("/repl/drums/kicks/other-track")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, _, err = w.ResolveTrackURL("/repl/nowhere/my-track")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, _, err = w.ResolveTrackURL("/repl/")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestLoadFallsBackToMirror(t *testing.T) {
	mirror := store.NewMirror()
	st := openTestStore(t)
	ctx := context.Background()

	w := New(config.NewDefaultConfig(), st, mirror, "alice")
	require.NoError(t, w.Load(ctx))
	_, _, track := seedTree(t, w)

	// Store gone, snapshot still serves the tree.
	require.NoError(t, st.Close())
	w2 := New(config.NewDefaultConfig(), st, mirror, "alice")
	require.NoError(t, w2.Load(ctx))
	assert.Equal(t, 3, w2.Graph().Len())
	_, ok := w2.Graph().GetNode(track.ID)
	assert.True(t, ok)
}

func TestLoadNoStoreNoMirror(t *testing.T) {
	st := openTestStore(t)
	require.NoError(t, st.Close())

	w := New(config.NewDefaultConfig(), st, nil, "alice")
	require.Error(t, w.Load(context.Background()))
}

func TestTreeAndStats(t *testing.T) {
	w := newTestWorkspace(t)
	seedTree(t, w)

	tree := w.Tree()
	require.Len(t, tree, 1)
	assert.Equal(t, "Drums", tree[0].Node.Name)

	stats := w.Stats()
	assert.Equal(t, 3, stats.TotalNodes)

	result := w.Validate()
	assert.True(t, result.IsValid)
}
