package tradebook

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// App owns the in-memory caches and coordinates every read and mutation
// against the store. All cached slices are replaced wholesale by reload;
// nothing is patched incrementally. A mutation follows the strict ordering
// "validate, write, full reload, recompute": when any step fails the prior
// caches and reports are left untouched, stale but consistent.
//
// App is driven from a single logical thread of control. The only
// concurrency it creates itself is the read fan-out inside reload, which is
// joined before any aggregate is computed.
type App struct {
	store Store
	log   zerolog.Logger

	openPositions  []Position
	allClosed      []Position
	accountEntries []AccountEntry
	strategies     []Strategy
	pager          *Pager

	balances *BalanceReport
	stats    *StatsReport
}

// NewApp creates a coordinator over the store. Call Load before reading.
func NewApp(store Store, log zerolog.Logger) *App {
	return &App{store: store, log: log, pager: NewPager(store)}
}

// Load performs the initial fan-out: open positions, account entries, the
// first history page plus count, the full closed set and the strategies,
// all fetched concurrently and joined before any aggregate is derived.
func (a *App) Load(ctx context.Context) error {
	return a.reload(ctx)
}

// reload refetches every cache. Results land in temporaries and are swapped
// in only when the whole fan-out succeeded, so a failure leaves the previous
// state intact.
func (a *App) reload(ctx context.Context) error {
	var (
		open       []Position
		closed     []Position
		entries    []AccountEntry
		strategies []Strategy
	)
	pager := NewPager(a.store)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		open, err = a.store.OpenPositions(gctx)
		return err
	})
	g.Go(func() (err error) {
		closed, err = a.store.AllClosedPositions(gctx)
		return err
	})
	g.Go(func() (err error) {
		entries, err = a.store.AccountEntries(gctx)
		return err
	})
	g.Go(func() (err error) {
		strategies, err = a.store.Strategies(gctx)
		return err
	})
	g.Go(func() error {
		return pager.FirstPage(gctx)
	})
	if err := g.Wait(); err != nil {
		a.log.Error().Err(err).Msg("reload failed, keeping previous state")
		return fmt.Errorf("could not reload: %w", err)
	}

	a.openPositions = open
	a.allClosed = closed
	a.accountEntries = entries
	a.strategies = strategies
	a.pager = pager

	// All caches are in place; only now are the aggregates recomputed.
	a.balances = NewBalanceReport(a.accountEntries, a.allClosed, a.log)
	a.stats = NewStatsReport(a.allClosed, a.strategies, a.log)
	return nil
}

// Read accessors. All return cached state from the last successful reload.

func (a *App) OpenPositions() []Position      { return slices.Clone(a.openPositions) }
func (a *App) ClosedPositions() []Position    { return slices.Clone(a.allClosed) }
func (a *App) AccountEntries() []AccountEntry { return slices.Clone(a.accountEntries) }
func (a *App) Strategies() []Strategy         { return slices.Clone(a.strategies) }
func (a *App) History() *Pager                { return a.pager }
func (a *App) Balances() *BalanceReport       { return a.balances }
func (a *App) Stats() *StatsReport            { return a.stats }

// OpenPosition creates a new position with its initial entry.
func (a *App) OpenPosition(ctx context.Context, asset string, side Side, currency, strategyID, notes string, first Execution) (string, error) {
	if err := first.Validate(); err != nil {
		return "", err
	}
	p := NewPosition(asset, side, currency, strategyID, notes, first)
	id, err := a.store.InsertPosition(ctx, p)
	if err != nil {
		return "", fmt.Errorf("could not open position: %w", err)
	}
	return id, a.reload(ctx)
}

// Reinforce appends an entry to an open position.
func (a *App) Reinforce(ctx context.Context, id string, e Execution) error {
	p, err := a.findOpen(id)
	if err != nil {
		return err
	}
	if err := p.AddEntry(e); err != nil {
		return err
	}
	patch := PositionPatch{AppendEntry: &e}
	if err := a.store.UpdatePosition(ctx, id, patch); err != nil {
		return fmt.Errorf("could not reinforce position %s: %w", id, err)
	}
	return a.reload(ctx)
}

// ClosePosition appends an exit, fully or partially closing the position.
// The exit is rejected before any store call when it exceeds the held
// quantity; when it empties the position the status flips to closed in the
// same update.
func (a *App) ClosePosition(ctx context.Context, id string, x Execution) error {
	p, err := a.findOpen(id)
	if err != nil {
		return err
	}
	if err := p.ApplyExit(x); err != nil {
		return err
	}
	patch := PositionPatch{AppendExit: &x}
	if p.Status == StatusClosed {
		patch.Status = &p.Status
	}
	if err := a.store.UpdatePosition(ctx, id, patch); err != nil {
		return fmt.Errorf("could not close position %s: %w", id, err)
	}
	return a.reload(ctx)
}

// EditEntry replaces a single entry of an open position in place, keeping
// the original fees when the correction does not carry any.
func (a *App) EditEntry(ctx context.Context, id string, index int, e Execution) error {
	p, err := a.findOpen(id)
	if err != nil {
		return err
	}
	if err := p.ReplaceEntry(index, e); err != nil {
		return err
	}
	patch := PositionPatch{Entries: &p.Entries}
	if err := a.store.UpdatePosition(ctx, id, patch); err != nil {
		return fmt.Errorf("could not edit position %s: %w", id, err)
	}
	return a.reload(ctx)
}

// SetStrategy re-assigns a position's strategy reference.
func (a *App) SetStrategy(ctx context.Context, id, strategyID string) error {
	patch := PositionPatch{StrategyID: &strategyID}
	if err := a.store.UpdatePosition(ctx, id, patch); err != nil {
		return fmt.Errorf("could not update strategy of position %s: %w", id, err)
	}
	return a.reload(ctx)
}

// DeletePosition removes a position permanently.
func (a *App) DeletePosition(ctx context.Context, id string) error {
	if err := a.store.DeletePosition(ctx, id); err != nil {
		return fmt.Errorf("could not delete position %s: %w", id, err)
	}
	return a.reload(ctx)
}

// RecordAccountEntry validates and persists a cash-account transaction.
func (a *App) RecordAccountEntry(ctx context.Context, e AccountEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, err := a.store.InsertAccountEntry(ctx, e); err != nil {
		return fmt.Errorf("could not record account entry: %w", err)
	}
	return a.reload(ctx)
}

// AddStrategy creates a strategy.
func (a *App) AddStrategy(ctx context.Context, s Strategy) (string, error) {
	id, err := a.store.InsertStrategy(ctx, s)
	if err != nil {
		return "", fmt.Errorf("could not add strategy: %w", err)
	}
	return id, a.reload(ctx)
}

// UpdateStrategy edits a strategy's title and details.
func (a *App) UpdateStrategy(ctx context.Context, id, title, details string) error {
	if err := a.store.UpdateStrategy(ctx, id, title, details); err != nil {
		return fmt.Errorf("could not update strategy %s: %w", id, err)
	}
	return a.reload(ctx)
}

// DeleteStrategy removes a strategy. Positions still referencing it resolve
// to the unknown label; nothing cascades.
func (a *App) DeleteStrategy(ctx context.Context, id string) error {
	if err := a.store.DeleteStrategy(ctx, id); err != nil {
		return fmt.Errorf("could not delete strategy %s: %w", id, err)
	}
	return a.reload(ctx)
}

// findOpen returns a deep copy of an open position from the cache, suitable
// for trial mutation during validation.
func (a *App) findOpen(id string) (Position, error) {
	for _, p := range a.openPositions {
		if p.ID == id {
			return clonePosition(p), nil
		}
	}
	return Position{}, fmt.Errorf("open position %q not found", id)
}
