// Package docstore persists the trading journal in a single SQLite file.
//
// Documents are stored as JSON rows, one table per collection, with the
// sort keys (status, creation time, id) duplicated into plain columns so
// that the closed-position history can be paged by the database instead of
// in memory. The file is created on first open; there is no migration
// machinery beyond CREATE TABLE IF NOT EXISTS.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/misterh06/tradebook"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
	id            TEXT PRIMARY KEY,
	owner         TEXT NOT NULL,
	status        TEXT NOT NULL,
	created_at_ms INTEGER NOT NULL,
	doc           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS positions_by_creation
	ON positions (owner, status, created_at_ms DESC, id DESC);

CREATE TABLE IF NOT EXISTS account_entries (
	id             TEXT PRIMARY KEY,
	owner          TEXT NOT NULL,
	occurred_at_ms INTEGER NOT NULL,
	doc            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS strategies (
	id            TEXT PRIMARY KEY,
	owner         TEXT NOT NULL,
	created_at_ms INTEGER NOT NULL,
	doc           TEXT NOT NULL
);
`

// Store is the SQLite implementation of tradebook.Store. Every query is
// scoped to one owner so several journals can share a file.
type Store struct {
	db    *sql.DB
	owner string
	log   zerolog.Logger
}

// Open opens (creating if needed) the journal database at path, scoped to
// the given owner.
func Open(path, owner string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	log.Debug().Str("path", path).Str("owner", owner).Msg("journal database open")
	return &Store{db: db, owner: owner, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) InsertPosition(ctx context.Context, p tradebook.Position) (string, error) {
	p.ID = uuid.NewString()
	doc, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("could not encode position: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO positions (id, owner, status, created_at_ms, doc) VALUES (?, ?, ?, ?, ?)`,
		p.ID, s.owner, string(p.Status), p.CreatedAt.UnixMilli(), string(doc))
	if err != nil {
		return "", fmt.Errorf("could not insert position: %w", err)
	}
	return p.ID, nil
}

// UpdatePosition applies the patch as a read-modify-write on the document,
// inside a transaction so concurrent writers cannot interleave.
func (s *Store) UpdatePosition(ctx context.Context, id string, patch tradebook.PositionPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin update: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM positions WHERE id = ? AND owner = ?`, id, s.owner).Scan(&doc)
	if err == sql.ErrNoRows {
		return fmt.Errorf("position %q not found", id)
	}
	if err != nil {
		return fmt.Errorf("could not read position %s: %w", id, err)
	}

	var p tradebook.Position
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return fmt.Errorf("could not decode position %s: %w", id, err)
	}
	p.ID = id
	if patch.AppendEntry != nil {
		p.Entries = append(p.Entries, *patch.AppendEntry)
	}
	if patch.AppendExit != nil {
		p.Exits = append(p.Exits, *patch.AppendExit)
	}
	if patch.Entries != nil {
		p.Entries = append([]tradebook.Execution(nil), *patch.Entries...)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StrategyID != nil {
		p.StrategyID = *patch.StrategyID
	}

	out, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("could not encode position %s: %w", id, err)
	}
	_, err = tx.ExecContext(ctx, `UPDATE positions SET status = ?, doc = ? WHERE id = ? AND owner = ?`,
		string(p.Status), string(out), id, s.owner)
	if err != nil {
		return fmt.Errorf("could not update position %s: %w", id, err)
	}
	return tx.Commit()
}

func (s *Store) DeletePosition(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE id = ? AND owner = ?`, id, s.owner)
	if err != nil {
		return fmt.Errorf("could not delete position %s: %w", id, err)
	}
	return nil
}

func (s *Store) Position(ctx context.Context, id string) (tradebook.Position, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM positions WHERE id = ? AND owner = ?`, id, s.owner).Scan(&doc)
	if err == sql.ErrNoRows {
		return tradebook.Position{}, fmt.Errorf("position %q not found", id)
	}
	if err != nil {
		return tradebook.Position{}, fmt.Errorf("could not read position %s: %w", id, err)
	}
	return decodePosition(id, doc)
}

func (s *Store) OpenPositions(ctx context.Context) ([]tradebook.Position, error) {
	return s.queryPositions(ctx,
		`SELECT id, doc FROM positions WHERE owner = ? AND status = ?
		 ORDER BY created_at_ms DESC, id DESC`, s.owner, string(tradebook.StatusOpen))
}

// ClosedPositions pages the history strictly after the cursor. The keyset
// predicate matches the in-memory order: creation time descending, id
// descending on ties.
func (s *Store) ClosedPositions(ctx context.Context, limit int, after tradebook.Cursor) ([]tradebook.Position, tradebook.Cursor, error) {
	var (
		page []tradebook.Position
		err  error
	)
	if after == "" {
		page, err = s.queryPositions(ctx,
			`SELECT id, doc FROM positions WHERE owner = ? AND status = ?
			 ORDER BY created_at_ms DESC, id DESC LIMIT ?`,
			s.owner, string(tradebook.StatusClosed), limit)
	} else {
		at, id, kerr := after.Keys()
		if kerr != nil {
			return nil, "", kerr
		}
		page, err = s.queryPositions(ctx,
			`SELECT id, doc FROM positions WHERE owner = ? AND status = ?
			 AND (created_at_ms < ? OR (created_at_ms = ? AND id < ?))
			 ORDER BY created_at_ms DESC, id DESC LIMIT ?`,
			s.owner, string(tradebook.StatusClosed), at.UnixMilli(), at.UnixMilli(), id, limit)
	}
	if err != nil {
		return nil, "", err
	}
	cursor := after
	if len(page) > 0 {
		last := page[len(page)-1]
		cursor = tradebook.NewCursor(last.CreatedAt, last.ID)
	}
	return page, cursor, nil
}

func (s *Store) AllClosedPositions(ctx context.Context) ([]tradebook.Position, error) {
	return s.queryPositions(ctx,
		`SELECT id, doc FROM positions WHERE owner = ? AND status = ?
		 ORDER BY created_at_ms DESC, id DESC`, s.owner, string(tradebook.StatusClosed))
}

func (s *Store) CountClosedPositions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM positions WHERE owner = ? AND status = ?`,
		s.owner, string(tradebook.StatusClosed)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("could not count closed positions: %w", err)
	}
	return n, nil
}

func (s *Store) InsertAccountEntry(ctx context.Context, e tradebook.AccountEntry) (string, error) {
	id := uuid.NewString()
	doc, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("could not encode account entry: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO account_entries (id, owner, occurred_at_ms, doc) VALUES (?, ?, ?, ?)`,
		id, s.owner, e.When().UnixMilli(), string(doc))
	if err != nil {
		return "", fmt.Errorf("could not insert account entry: %w", err)
	}
	return id, nil
}

func (s *Store) DeleteAccountEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM account_entries WHERE id = ? AND owner = ?`, id, s.owner)
	if err != nil {
		return fmt.Errorf("could not delete account entry %s: %w", id, err)
	}
	return nil
}

func (s *Store) AccountEntries(ctx context.Context) ([]tradebook.AccountEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM account_entries WHERE owner = ? ORDER BY occurred_at_ms DESC, id DESC`, s.owner)
	if err != nil {
		return nil, fmt.Errorf("could not list account entries: %w", err)
	}
	defer rows.Close()

	var out []tradebook.AccountEntry
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		e, err := tradebook.DecodeAccountEntry([]byte(doc))
		if err != nil {
			// a single unreadable row must not sink the whole account
			s.log.Warn().Err(err).Str("id", id).Msg("skipping unreadable account entry")
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) InsertStrategy(ctx context.Context, st tradebook.Strategy) (string, error) {
	st.ID = uuid.NewString()
	doc, err := json.Marshal(st)
	if err != nil {
		return "", fmt.Errorf("could not encode strategy: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO strategies (id, owner, created_at_ms, doc) VALUES (?, ?, ?, ?)`,
		st.ID, s.owner, st.CreatedAt.UnixMilli(), string(doc))
	if err != nil {
		return "", fmt.Errorf("could not insert strategy: %w", err)
	}
	return st.ID, nil
}

func (s *Store) UpdateStrategy(ctx context.Context, id, title, details string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin update: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM strategies WHERE id = ? AND owner = ?`, id, s.owner).Scan(&doc)
	if err == sql.ErrNoRows {
		return fmt.Errorf("strategy %q not found", id)
	}
	if err != nil {
		return fmt.Errorf("could not read strategy %s: %w", id, err)
	}
	var st tradebook.Strategy
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		return fmt.Errorf("could not decode strategy %s: %w", id, err)
	}
	st.ID = id
	st.Title, st.Details = title, details
	out, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("could not encode strategy %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE strategies SET doc = ? WHERE id = ? AND owner = ?`, string(out), id, s.owner); err != nil {
		return fmt.Errorf("could not update strategy %s: %w", id, err)
	}
	return tx.Commit()
}

func (s *Store) DeleteStrategy(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM strategies WHERE id = ? AND owner = ?`, id, s.owner)
	if err != nil {
		return fmt.Errorf("could not delete strategy %s: %w", id, err)
	}
	return nil
}

func (s *Store) Strategies(ctx context.Context) ([]tradebook.Strategy, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc FROM strategies WHERE owner = ? ORDER BY created_at_ms DESC, id DESC`, s.owner)
	if err != nil {
		return nil, fmt.Errorf("could not list strategies: %w", err)
	}
	defer rows.Close()

	var out []tradebook.Strategy
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		var st tradebook.Strategy
		if err := json.Unmarshal([]byte(doc), &st); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping unreadable strategy")
			continue
		}
		st.ID = id
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) queryPositions(ctx context.Context, query string, args ...any) ([]tradebook.Position, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query positions: %w", err)
	}
	defer rows.Close()

	var out []tradebook.Position
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		p, err := decodePosition(id, doc)
		if err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping unreadable position")
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func decodePosition(id, doc string) (tradebook.Position, error) {
	var p tradebook.Position
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return tradebook.Position{}, fmt.Errorf("could not decode position %s: %w", id, err)
	}
	p.ID = id
	return p, nil
}
