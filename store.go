package tradebook

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cursor is an opaque continuation token into a sorted result sequence.
// It is produced by a Store and passed back unmodified to continue strictly
// after the last record of the previous page; the engine never inspects it.
// The empty cursor means "start from the beginning".
type Cursor string

// NewCursor builds the token pointing after the record with the given sort
// keys. All Store implementations share this encoding.
func NewCursor(createdAt time.Time, id string) Cursor {
	return Cursor(strconv.FormatInt(createdAt.UnixMilli(), 10) + "|" + id)
}

// Keys recovers the sort keys the cursor points after.
func (c Cursor) Keys() (createdAt time.Time, id string, err error) {
	ms, id, ok := strings.Cut(string(c), "|")
	if !ok {
		return time.Time{}, "", fmt.Errorf("malformed cursor %q", c)
	}
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed cursor %q: %w", c, err)
	}
	return time.UnixMilli(n).UTC(), id, nil
}

// PositionPatch is a partial update applied to a stored position document.
// Nil fields are left untouched; this mirrors the store's field-merge
// update primitive, so a patch never rewrites the whole document.
type PositionPatch struct {
	AppendEntry *Execution   // append one entry to the entries array
	AppendExit  *Execution   // append one exit to the exits array
	Entries     *[]Execution // replace the entries array wholesale
	Status      *Status
	StrategyID  *string
}

// Store is the persistent document collection backing the engine, scoped to
// a single user. It is the sole owner of persisted state: everything the
// engine holds in memory is a cache to be replaced by refetching.
//
// Closed-position queries are sorted by creation time descending and
// support a result limit and a forward-only start-after cursor; there is no
// backward primitive.
type Store interface {
	// Positions.
	InsertPosition(ctx context.Context, p Position) (id string, err error)
	UpdatePosition(ctx context.Context, id string, patch PositionPatch) error
	DeletePosition(ctx context.Context, id string) error
	Position(ctx context.Context, id string) (Position, error)
	OpenPositions(ctx context.Context) ([]Position, error)
	// ClosedPositions returns up to limit closed positions strictly after
	// the cursor, plus the cursor pointing after the last returned record.
	ClosedPositions(ctx context.Context, limit int, after Cursor) ([]Position, Cursor, error)
	// AllClosedPositions is the unbounded fetch feeding statistics.
	AllClosedPositions(ctx context.Context) ([]Position, error)
	CountClosedPositions(ctx context.Context) (int, error)

	// Cash account.
	InsertAccountEntry(ctx context.Context, e AccountEntry) (id string, err error)
	DeleteAccountEntry(ctx context.Context, id string) error
	AccountEntries(ctx context.Context) ([]AccountEntry, error)

	// Strategies.
	InsertStrategy(ctx context.Context, s Strategy) (id string, err error)
	UpdateStrategy(ctx context.Context, id, title, details string) error
	DeleteStrategy(ctx context.Context, id string) error
	Strategies(ctx context.Context) ([]Strategy, error)
}
