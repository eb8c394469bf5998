package tradebook

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// PageSize is the fixed number of closed positions per history page.
const PageSize = 20

// Pager exposes the closed-position history in fixed-size pages, ordered by
// creation time descending, on top of the store's forward-only cursor.
//
// The store has no backward primitive, so PrevPage replays forward from page
// one to rebuild the cursor. That is a deliberate O(n) trade-off: backward
// navigation is rare, and offset pagination is not something the store's
// cursor API offers.
type Pager struct {
	store    Store
	pageSize int

	page        []Position
	currentPage int    // 1-based
	totalPages  int    // computed once per FirstPage, not on every turn
	totalCount  int    // closed-position count behind totalPages
	cursor      Cursor // points after the last record of the current page
	lastSize    int    // size of the most recently fetched page
}

// NewPager creates a pager over the store with the standard page size.
func NewPager(store Store) *Pager {
	return &Pager{store: store, pageSize: PageSize, totalPages: 1, currentPage: 1}
}

// ErrNoCursor is returned by NextPage when no page has been fetched yet.
var ErrNoCursor = errors.New("no cursor: fetch the first page first")

// FirstPage resets the cursor and fetches page one. This is the only path
// that issues the count query; totalPages stays as computed here until the
// next FirstPage call.
func (pg *Pager) FirstPage(ctx context.Context) error {
	count, err := pg.store.CountClosedPositions(ctx)
	if err != nil {
		return fmt.Errorf("could not count closed positions: %w", err)
	}

	page, cursor, err := pg.store.ClosedPositions(ctx, pg.pageSize, "")
	if err != nil {
		return fmt.Errorf("could not fetch first page: %w", err)
	}

	pg.totalCount = count
	pg.totalPages = max((count+pg.pageSize-1)/pg.pageSize, 1)
	pg.currentPage = 1
	pg.setPage(page, cursor)
	return nil
}

// NextPage fetches the page strictly after the current cursor.
func (pg *Pager) NextPage(ctx context.Context) error {
	if pg.cursor == "" {
		return ErrNoCursor
	}
	page, cursor, err := pg.store.ClosedPositions(ctx, pg.pageSize, pg.cursor)
	if err != nil {
		return fmt.Errorf("could not fetch page %d: %w", pg.currentPage+1, err)
	}
	pg.currentPage++
	pg.setPage(page, cursor)
	return nil
}

// PrevPage navigates one page back by replaying forward from page one,
// currentPage-2 times. See the type comment for why.
func (pg *Pager) PrevPage(ctx context.Context) error {
	if pg.currentPage <= 1 {
		return nil
	}
	target := pg.currentPage - 1

	page, cursor, err := pg.store.ClosedPositions(ctx, pg.pageSize, "")
	if err != nil {
		return fmt.Errorf("could not replay to page %d: %w", target, err)
	}
	for n := 1; n < target; n++ {
		page, cursor, err = pg.store.ClosedPositions(ctx, pg.pageSize, cursor)
		if err != nil {
			return fmt.Errorf("could not replay to page %d: %w", target, err)
		}
	}
	pg.currentPage = target
	pg.setPage(page, cursor)
	return nil
}

func (pg *Pager) setPage(page []Position, cursor Cursor) {
	pg.page = page
	pg.lastSize = len(page)
	if len(page) > 0 {
		pg.cursor = cursor
	}
}

// Page returns the records of the current page.
func (pg *Pager) Page() []Position { return slices.Clone(pg.page) }

func (pg *Pager) CurrentPage() int { return pg.currentPage }
func (pg *Pager) TotalPages() int  { return pg.totalPages }
func (pg *Pager) TotalCount() int  { return pg.totalCount }

// PrevDisabled reports whether backward navigation is possible.
func (pg *Pager) PrevDisabled() bool { return pg.currentPage == 1 }

// NextDisabled reports whether forward navigation is possible. A page
// shorter than the page size signals the end of data even when totalPages
// is stale.
func (pg *Pager) NextDisabled() bool {
	return pg.currentPage == pg.totalPages || pg.lastSize < pg.pageSize
}

// RangeInfo returns the 1-based item range shown by the current page and
// the total count, e.g. 21, 40 of 57. Zero values when there is nothing.
func (pg *Pager) RangeInfo() (first, last, total int) {
	if pg.totalCount == 0 {
		return 0, 0, 0
	}
	first = (pg.currentPage-1)*pg.pageSize + 1
	last = min(pg.currentPage*pg.pageSize, pg.totalCount)
	return first, last, pg.totalCount
}
