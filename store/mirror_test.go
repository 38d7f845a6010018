package store

import (
	"testing"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorRoundTrip(t *testing.T) {
	m := NewMirror()

	_, _, ok := m.Get("alice")
	assert.False(t, ok)

	folder, err := strudelfs.NewFolder("alice", "Drums", nil)
	require.NoError(t, err)
	m.Put("alice", []*strudelfs.Node{folder})

	nodes, fetched, ok := m.Get("alice")
	require.True(t, ok)
	require.Len(t, nodes, 1)
	assert.Equal(t, folder.ID, nodes[0].ID)
	assert.False(t, fetched.IsZero())
}

func TestMirrorPutReplacesSnapshot(t *testing.T) {
	m := NewMirror()

	first, err := strudelfs.NewFolder("alice", "Old", nil)
	require.NoError(t, err)
	second, err := strudelfs.NewFolder("alice", "New", nil)
	require.NoError(t, err)

	m.Put("alice", []*strudelfs.Node{first})
	m.Put("alice", []*strudelfs.Node{second, first})

	nodes, _, ok := m.Get("alice")
	require.True(t, ok)
	assert.Len(t, nodes, 2)
	assert.Equal(t, "New", nodes[0].Name)
}

func TestMirrorIsolatesUsers(t *testing.T) {
	m := NewMirror()

	folder, err := strudelfs.NewFolder("alice", "Drums", nil)
	require.NoError(t, err)
	m.Put("alice", []*strudelfs.Node{folder})

	_, _, ok := m.Get("bob")
	assert.False(t, ok)
}

func TestMirrorInvalidate(t *testing.T) {
	m := NewMirror()

	folder, err := strudelfs.NewFolder("alice", "Drums", nil)
	require.NoError(t, err)
	m.Put("alice", []*strudelfs.Node{folder})
	m.Invalidate("alice")

	_, _, ok := m.Get("alice")
	assert.False(t, ok)
}
