package tradebook

import (
	"context"
	"testing"
	"time"
)

func TestMemStore_CursorResumes(t *testing.T) {
	ctx := context.Background()
	store := seedClosed(t, 10)

	first, cursor, err := store.ClosedPositions(ctx, 4, "")
	if err != nil {
		t.Fatalf("ClosedPositions() error = %v", err)
	}
	if len(first) != 4 {
		t.Fatalf("len(first) = %d, want 4", len(first))
	}

	second, _, err := store.ClosedPositions(ctx, 4, cursor)
	if err != nil {
		t.Fatalf("ClosedPositions(cursor) error = %v", err)
	}
	if len(second) != 4 {
		t.Fatalf("len(second) = %d, want 4", len(second))
	}
	for _, p := range second {
		for _, q := range first {
			if p.ID == q.ID {
				t.Fatalf("position %s returned twice across pages", p.ID)
			}
		}
	}
}

func TestMemStore_CursorTieBreak(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	same := day(2025, time.March, 3)
	// five closed positions sharing one creation time force the id tie-break
	for i := 0; i < 5; i++ {
		p := NewPosition("AAPL", Long, "USD", "", "", exec(same, 10, 100))
		if err := p.ApplyExit(exec(same, 10, 110)); err != nil {
			t.Fatalf("ApplyExit() error = %v", err)
		}
		if _, err := store.InsertPosition(ctx, p); err != nil {
			t.Fatalf("InsertPosition() error = %v", err)
		}
	}

	seen := make(map[string]bool)
	var cursor Cursor
	for {
		page, next, err := store.ClosedPositions(ctx, 2, cursor)
		if err != nil {
			t.Fatalf("ClosedPositions() error = %v", err)
		}
		if len(page) == 0 {
			break
		}
		for _, p := range page {
			if seen[p.ID] {
				t.Fatalf("position %s returned twice", p.ID)
			}
			seen[p.ID] = true
		}
		cursor = next
	}
	if len(seen) != 5 {
		t.Errorf("walked %d positions, want 5", len(seen))
	}
}

func TestMemStore_MalformedCursor(t *testing.T) {
	store := seedClosed(t, 3)
	if _, _, err := store.ClosedPositions(context.Background(), 2, "not-a-cursor"); err == nil {
		t.Error("malformed cursor accepted")
	}
}

func TestMemStore_UpdatePosition(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
	id, err := store.InsertPosition(ctx, p)
	if err != nil {
		t.Fatalf("InsertPosition() error = %v", err)
	}

	exit := exec(day(2025, time.March, 10), 10, 160)
	closed := StatusClosed
	err = store.UpdatePosition(ctx, id, PositionPatch{AppendExit: &exit, Status: &closed})
	if err != nil {
		t.Fatalf("UpdatePosition() error = %v", err)
	}

	got, err := store.Position(ctx, id)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if got.Status != StatusClosed {
		t.Errorf("Status = %q, want closed", got.Status)
	}
	if len(got.Exits) != 1 {
		t.Errorf("len(Exits) = %d, want 1", len(got.Exits))
	}

	if err := store.UpdatePosition(ctx, "missing", PositionPatch{}); err == nil {
		t.Error("UpdatePosition() on unknown id succeeded")
	}
}

func TestMemStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	p := NewPosition("AAPL", Long, "USD", "", "", exec(day(2025, time.March, 3), 10, 150))
	id, err := store.InsertPosition(ctx, p)
	if err != nil {
		t.Fatalf("InsertPosition() error = %v", err)
	}

	got, err := store.Position(ctx, id)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	got.Entries[0].Quantity = got.Entries[0].Quantity.Add(got.Entries[0].Quantity)

	again, err := store.Position(ctx, id)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if !again.Entries[0].Quantity.Equal(p.Entries[0].Quantity) {
		t.Error("mutating a returned position leaked into the store")
	}
}

func TestMemStore_Strategies(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	id, err := store.InsertStrategy(ctx, Strategy{Title: "Breakout", CreatedAt: day(2025, time.January, 1)})
	if err != nil {
		t.Fatalf("InsertStrategy() error = %v", err)
	}
	if err := store.UpdateStrategy(ctx, id, "Breakout v2", "tighter stop"); err != nil {
		t.Fatalf("UpdateStrategy() error = %v", err)
	}
	all, err := store.Strategies(ctx)
	if err != nil {
		t.Fatalf("Strategies() error = %v", err)
	}
	if len(all) != 1 || all[0].Title != "Breakout v2" {
		t.Errorf("Strategies() = %+v, want the updated title", all)
	}
	if err := store.DeleteStrategy(ctx, id); err != nil {
		t.Fatalf("DeleteStrategy() error = %v", err)
	}
	if all, _ := store.Strategies(ctx); len(all) != 0 {
		t.Errorf("Strategies() count = %d after delete, want 0", len(all))
	}
}
