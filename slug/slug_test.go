package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Kick", "kick"},
		{"spaces", "My Track", "my-track"},
		{"punctuation run", "My  Track!!", "my-track"},
		{"leading trailing", "--My Track--", "my-track"},
		{"mixed case and symbols", "DnB @ 174bpm", "dnb-174bpm"},
		{"empty", "", "untitled"},
		{"only punctuation", "!!!", "untitled"},
		{"already a slug", "my-track", "my-track"},
		{"digits", "Track 2", "track-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestMake_Idempotent(t *testing.T) {
	inputs := []string{"Kick", "My Track!", "", "!!!", "already-valid", "Ünïcode Name", "A  B  C"}
	for _, in := range inputs {
		once := Make(in)
		assert.Equal(t, once, Make(once), "Make not idempotent for %q", in)
	}
}

func TestFolderPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Drums/Kicks", "drums/kicks"},
		{"spaces in segments", "My Beats/Old Stuff", "my-beats/old-stuff"},
		{"empty segments dropped", "a//b", "a/b"},
		{"punctuation-only segment dropped", "a/!!!/b", "a/b"},
		{"single segment", "Beats", "beats"},
		{"empty path", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FolderPath(tt.in))
		})
	}
}
