package tradebook

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store. It backs the package tests and serves as
// a zero-configuration fallback when no database is configured; its cursor
// behaves exactly like the persistent store's, forward-only included.
type MemStore struct {
	mu         sync.RWMutex
	positions  map[string]Position
	entries    map[string]AccountEntry
	strategies map[string]Strategy
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		positions:  make(map[string]Position),
		entries:    make(map[string]AccountEntry),
		strategies: make(map[string]Strategy),
	}
}

func (s *MemStore) InsertPosition(_ context.Context, p Position) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.NewString()
	s.positions[p.ID] = clonePosition(p)
	return p.ID, nil
}

func (s *MemStore) UpdatePosition(_ context.Context, id string, patch PositionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.positions[id]
	if !ok {
		return fmt.Errorf("position %q not found", id)
	}
	p = clonePosition(p)
	if patch.AppendEntry != nil {
		p.Entries = append(p.Entries, *patch.AppendEntry)
	}
	if patch.AppendExit != nil {
		p.Exits = append(p.Exits, *patch.AppendExit)
	}
	if patch.Entries != nil {
		p.Entries = slices.Clone(*patch.Entries)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.StrategyID != nil {
		p.StrategyID = *patch.StrategyID
	}
	s.positions[id] = p
	return nil
}

func (s *MemStore) DeletePosition(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.positions, id)
	return nil
}

func (s *MemStore) Position(_ context.Context, id string) (Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.positions[id]
	if !ok {
		return Position{}, fmt.Errorf("position %q not found", id)
	}
	return clonePosition(p), nil
}

func (s *MemStore) OpenPositions(_ context.Context) ([]Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectPositions(StatusOpen), nil
}

func (s *MemStore) ClosedPositions(_ context.Context, limit int, after Cursor) ([]Position, Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	closed := s.selectPositions(StatusClosed)

	start := 0
	if after != "" {
		at, id, err := after.Keys()
		if err != nil {
			return nil, "", err
		}
		start = len(closed)
		for i, p := range closed {
			if beforeInOrder(p.CreatedAt, p.ID, at, id) {
				start = i
				break
			}
		}
	}

	end := min(start+limit, len(closed))
	page := closed[start:end]
	cursor := after
	if len(page) > 0 {
		last := page[len(page)-1]
		cursor = NewCursor(last.CreatedAt, last.ID)
	}
	return page, cursor, nil
}

func (s *MemStore) AllClosedPositions(_ context.Context) ([]Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectPositions(StatusClosed), nil
}

func (s *MemStore) CountClosedPositions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.positions {
		if p.Status == StatusClosed {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) InsertAccountEntry(_ context.Context, e AccountEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.entries[id] = e
	return id, nil
}

func (s *MemStore) DeleteAccountEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemStore) AccountEntries(_ context.Context) ([]AccountEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AccountEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b AccountEntry) int {
		return b.When().Compare(a.When())
	})
	return out, nil
}

func (s *MemStore) InsertStrategy(_ context.Context, st Strategy) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ID = uuid.NewString()
	s.strategies[st.ID] = st
	return st.ID, nil
}

func (s *MemStore) UpdateStrategy(_ context.Context, id, title, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.strategies[id]
	if !ok {
		return fmt.Errorf("strategy %q not found", id)
	}
	st.Title, st.Details = title, details
	s.strategies[id] = st
	return nil
}

func (s *MemStore) DeleteStrategy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.strategies, id)
	return nil
}

func (s *MemStore) Strategies(_ context.Context) ([]Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Strategy, 0, len(s.strategies))
	for _, st := range s.strategies {
		out = append(out, st)
	}
	slices.SortStableFunc(out, func(a, b Strategy) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// selectPositions returns positions with the given status sorted by creation
// time descending, id descending as tie-break (the store's single sort key).
func (s *MemStore) selectPositions(status Status) []Position {
	out := make([]Position, 0, len(s.positions))
	for _, p := range s.positions {
		if p.Status == status {
			out = append(out, clonePosition(p))
		}
	}
	slices.SortStableFunc(out, func(a, b Position) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return out
}

func clonePosition(p Position) Position {
	p.Entries = slices.Clone(p.Entries)
	p.Exits = slices.Clone(p.Exits)
	return p
}

// beforeInOrder reports whether (at, id) sorts strictly after the cursor
// position (curAt, curID) in the descending creation-time order.
func beforeInOrder(at time.Time, id string, curAt time.Time, curID string) bool {
	if at.UnixMilli() != curAt.UnixMilli() {
		return at.Before(curAt)
	}
	return id < curID
}
