// Package store persists graph nodes and legacy flat records in SQLite, the
// store of record that browser-side caches mirror. Each mutation is an
// independent request validated against current state, so concurrent writers
// may race to a uniqueness failure; that surfaces as ErrNameConflict, not a
// crash.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	strudelfs "github.com/dygy/strudel-client-sub004"
	"github.com/dygy/strudel-client-sub004/internal/util"
	_ "modernc.org/sqlite"
)

var (
	_ strudelfs.NodeStore   = (*Store)(nil)
	_ strudelfs.LegacyStore = (*Store)(nil)
)

// Store is a SQLite-backed implementation of the persistence seams.
type Store struct {
	db  *sql.DB
	log util.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema. WAL mode keeps concurrent readers off the writer's back.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, log: util.GetLogger("store")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const nodeColumns = "id, user_id, name, type, parent_id, created, modified, code, is_multitrack, steps, active_step"

// ListNodes returns one consistent snapshot of every node owned by the user,
// ordered by creation time then id.
func (s *Store) ListNodes(ctx context.Context, userID string) ([]*strudelfs.Node, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM file_system_nodes WHERE user_id = ? ORDER BY created, id", userID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var out []*strudelfs.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// GetNode returns one node by id, scoped to the user.
func (s *Store) GetNode(ctx context.Context, userID, id string) (*strudelfs.Node, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM file_system_nodes WHERE user_id = ? AND id = ?", userID, id)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return n, err
}

// CreateNode inserts a node after checking that no sibling carries the same
// name. The check runs against current remote state at request time.
func (s *Store) CreateNode(ctx context.Context, n *strudelfs.Node) error {
	taken, err := s.nameTaken(ctx, n.UserID, n.ParentID, n.Name, "")
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("create %q: %w", n.Name, ErrNameConflict)
	}
	if err := s.insertNode(ctx, s.db, n); err != nil {
		return err
	}
	s.log.Debug().Str("id", n.ID).Str("name", n.Name).Str("type", string(n.Type)).Msg("Created node")
	return nil
}

// UpdateNode overwrites a node's mutable fields (name, code, steps, multitrack
// flag, active step) and bumps modified. Renames re-check sibling uniqueness.
func (s *Store) UpdateNode(ctx context.Context, n *strudelfs.Node) error {
	taken, err := s.nameTaken(ctx, n.UserID, n.ParentID, n.Name, n.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("rename to %q: %w", n.Name, ErrNameConflict)
	}

	steps, err := marshalSteps(n.Steps)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE file_system_nodes
		SET name = ?, code = ?, is_multitrack = ?, steps = ?, active_step = ?, modified = ?
		WHERE user_id = ? AND id = ?`,
		n.Name, n.Code, boolToInt(n.IsMultitrack), steps, n.ActiveStep,
		time.Now().UTC().Format(time.RFC3339Nano), n.UserID, n.ID)
	if err != nil {
		return fmt.Errorf("update node %s: %w", n.ID, err)
	}
	return requireRow(res, n.ID)
}

// SetParent reassigns a node's parent; nil moves it to the root.
func (s *Store) SetParent(ctx context.Context, userID, id string, parentID *string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE file_system_nodes SET parent_id = ?, modified = ? WHERE user_id = ? AND id = ?`,
		nullable(parentID), time.Now().UTC().Format(time.RFC3339Nano), userID, id)
	if err != nil {
		return fmt.Errorf("set parent of %s: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteNodes removes the given ids for the user and returns the number of
// rows deleted. Cascade sets are computed by the caller from the graph.
func (s *Store) DeleteNodes(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, userID)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM file_system_nodes WHERE user_id = ? AND id IN ("+placeholders+")", args...)
	if err != nil {
		return 0, fmt.Errorf("delete nodes: %w", err)
	}
	affected, _ := res.RowsAffected()
	s.log.Debug().Int("requested", len(ids)).Int64("deleted", affected).Msg("Deleted nodes")
	return int(affected), nil
}

// BulkInsertNodes inserts nodes one by one inside a single transaction,
// collecting per-row failures instead of aborting. The batch is not atomic:
// rows inserted before a failure stay inserted.
func (s *Store) BulkInsertNodes(ctx context.Context, nodes []*strudelfs.Node) (int, []error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, []error{fmt.Errorf("begin bulk insert: %w", err)}
	}

	inserted := 0
	var errs []error
	for _, n := range nodes {
		if err := s.insertNode(ctx, tx, n); err != nil {
			errs = append(errs, fmt.Errorf("insert %q (%s): %w", n.Name, n.ID, err))
			continue
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, append(errs, fmt.Errorf("commit bulk insert: %w", err))
	}
	s.log.Info().Int("inserted", inserted).Int("failed", len(errs)).Msg("Bulk insert finished")
	return inserted, errs
}

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertNode(ctx context.Context, db execer, n *strudelfs.Node) error {
	steps, err := marshalSteps(n.Steps)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO file_system_nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Name, string(n.Type), nullable(n.ParentID),
		n.Created.UTC().Format(time.RFC3339Nano), n.Modified.UTC().Format(time.RFC3339Nano),
		n.Code, boolToInt(n.IsMultitrack), steps, n.ActiveStep)
	return err
}

// nameTaken reports whether a sibling of parentID already uses name,
// excluding excludeID (the node being renamed).
func (s *Store) nameTaken(ctx context.Context, userID string, parentID *string, name, excludeID string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM file_system_nodes
		WHERE user_id = ? AND name = ? AND parent_id IS ? AND id != ?`,
		userID, name, nullable(parentID), excludeID)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("check sibling names: %w", err)
	}
	return count > 0, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*strudelfs.Node, error) {
	var (
		n        strudelfs.Node
		typ      string
		parentID sql.NullString
		created  string
		modified string
		multi    int
		steps    sql.NullString
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Name, &typ, &parentID,
		&created, &modified, &n.Code, &multi, &steps, &n.ActiveStep); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan node: %w", err)
	}
	n.Type = strudelfs.NodeType(typ)
	if parentID.Valid {
		n.ParentID = &parentID.String
	}
	var err error
	if n.Created, err = parseTime(created); err != nil {
		return nil, err
	}
	if n.Modified, err = parseTime(modified); err != nil {
		return nil, err
	}
	if steps.Valid && steps.String != "" {
		if err := json.Unmarshal([]byte(steps.String), &n.Steps); err != nil {
			return nil, fmt.Errorf("decode steps of %s: %w", n.ID, err)
		}
	}
	n.IsMultitrack = multi != 0
	return &n, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func marshalSteps(steps []strudelfs.Step) (sql.NullString, error) {
	if len(steps) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode steps: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return nil
}
