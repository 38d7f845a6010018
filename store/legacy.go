package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	strudelfs "github.com/dygy/strudel-client-sub004"
)

// Legacy flat-era tables. Reads feed the migration; writes exist for
// importing old exports (and for seeding migration tests).

// ListLegacyFolders returns the user's flat-era folder rows in stored order.
func (s *Store) ListLegacyFolders(ctx context.Context, userID string) ([]*strudelfs.LegacyFolder, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, path, parent, created FROM folders WHERE user_id = ? ORDER BY created, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list legacy folders: %w", err)
	}
	defer rows.Close()

	var out []*strudelfs.LegacyFolder
	for rows.Next() {
		var (
			f       strudelfs.LegacyFolder
			parent  sql.NullString
			created string
		)
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Path, &parent, &created); err != nil {
			return nil, fmt.Errorf("scan legacy folder: %w", err)
		}
		if parent.Valid {
			f.Parent = &parent.String
		}
		if f.Created, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// ListLegacyTracks returns the user's flat-era track rows in stored order.
func (s *Store) ListLegacyTracks(ctx context.Context, userID string) ([]*strudelfs.LegacyTrack, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, code, created, modified, folder, is_multitrack, steps, active_step
		FROM tracks WHERE user_id = ? ORDER BY created, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list legacy tracks: %w", err)
	}
	defer rows.Close()

	var out []*strudelfs.LegacyTrack
	for rows.Next() {
		var (
			t        strudelfs.LegacyTrack
			created  string
			modified string
			folder   sql.NullString
			multi    int
			steps    sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Code, &created, &modified,
			&folder, &multi, &steps, &t.ActiveStep); err != nil {
			return nil, fmt.Errorf("scan legacy track: %w", err)
		}
		if folder.Valid {
			t.Folder = &folder.String
		}
		t.IsMultitrack = multi != 0
		if t.Created, err = parseTime(created); err != nil {
			return nil, err
		}
		if t.Modified, err = parseTime(modified); err != nil {
			return nil, err
		}
		if steps.Valid && steps.String != "" {
			if err := json.Unmarshal([]byte(steps.String), &t.Steps); err != nil {
				return nil, fmt.Errorf("decode steps of legacy track %s: %w", t.ID, err)
			}
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// PutLegacyFolder inserts a flat-era folder row.
func (s *Store) PutLegacyFolder(ctx context.Context, f *strudelfs.LegacyFolder) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO folders (id, user_id, name, path, parent, created) VALUES (?, ?, ?, ?, ?, ?)",
		f.ID, f.UserID, f.Name, f.Path, nullable(f.Parent), f.Created.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put legacy folder %s: %w", f.ID, err)
	}
	return nil
}

// PutLegacyTrack inserts a flat-era track row.
func (s *Store) PutLegacyTrack(ctx context.Context, t *strudelfs.LegacyTrack) error {
	steps, err := marshalSteps(t.Steps)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tracks (id, user_id, name, code, created, modified, folder, is_multitrack, steps, active_step)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Name, t.Code,
		t.Created.UTC().Format(time.RFC3339Nano), t.Modified.UTC().Format(time.RFC3339Nano),
		nullable(t.Folder), boolToInt(t.IsMultitrack), steps, t.ActiveStep)
	if err != nil {
		return fmt.Errorf("put legacy track %s: %w", t.ID, err)
	}
	return nil
}
