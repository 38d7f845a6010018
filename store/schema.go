package store

// The graph model lives in one homogeneous table with nullable track-only
// columns; the legacy flat-era tables are kept decodable for the migration.
// Timestamps are stored as RFC3339 text.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_system_nodes (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	name          TEXT NOT NULL,
	type          TEXT NOT NULL CHECK (type IN ('folder', 'track')),
	parent_id     TEXT,
	created       TEXT NOT NULL,
	modified      TEXT NOT NULL,
	code          TEXT NOT NULL DEFAULT '',
	is_multitrack INTEGER NOT NULL DEFAULT 0,
	steps         TEXT,
	active_step   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_nodes_user ON file_system_nodes (user_id);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON file_system_nodes (parent_id);

CREATE TABLE IF NOT EXISTS folders (
	id      TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name    TEXT NOT NULL,
	path    TEXT NOT NULL,
	parent  TEXT,
	created TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_folders_user ON folders (user_id);

CREATE TABLE IF NOT EXISTS tracks (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	name          TEXT NOT NULL,
	code          TEXT NOT NULL DEFAULT '',
	created       TEXT NOT NULL,
	modified      TEXT NOT NULL,
	folder        TEXT,
	is_multitrack INTEGER NOT NULL DEFAULT 0,
	steps         TEXT,
	active_step   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_tracks_user ON tracks (user_id);
`
