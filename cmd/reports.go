package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/misterh06/tradebook"
	"github.com/misterh06/tradebook/renderer"
)

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show open positions" }
func (*dashboardCmd) Usage() string {
	return `tb dashboard

  Shows every open position with its derived metrics.
`
}

func (c *dashboardCmd) SetFlags(*flag.FlagSet) {}

func (c *dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	idx := tradebook.NewStrategyIndex(app.Strategies())
	printMarkdown(renderer.DashboardMarkdown(app.OpenPositions(), idx))
	return subcommands.ExitSuccess
}

type historyCmd struct {
	page int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "show closed positions page by page" }
func (*historyCmd) Usage() string {
	return `tb history [-page <n>]

  Shows closed positions, newest first, twenty per page. Pages past the
  first are reached by walking forward from page one; the store only pages
  forward.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.page, "page", 1, "page number to display")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.page < 1 {
		return fail(fmt.Errorf("page must be at least 1"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	pg := app.History()
	for pg.CurrentPage() < c.page && !pg.NextDisabled() {
		if err := pg.NextPage(ctx); err != nil {
			return fail(err)
		}
	}

	idx := tradebook.NewStrategyIndex(app.Strategies())
	printMarkdown(renderer.HistoryMarkdown(pg, idx))
	return subcommands.ExitSuccess
}

type statsCmd struct {
	year int
}

func (*statsCmd) Name() string     { return "stats" }
func (*statsCmd) Synopsis() string { return "show trading statistics" }
func (*statsCmd) Usage() string {
	return `tb stats [-y <year>]

  Shows aggregate statistics over every closed position. The monthly table
  defaults to the most recent year with closed trades; -y is clamped to
  the range of years that actually have data.
`
}

func (c *statsCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "y", 0, "year of the monthly table")
}

func (c *statsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	stats := app.Stats()
	y := c.year
	if y == 0 {
		y = time.Now().Year()
		if _, max, ok := stats.YearBounds(); ok {
			y = max
		}
	}
	year := tradebook.NewYearCursor(stats, y)
	printMarkdown(renderer.StatsMarkdown(stats, year))
	return subcommands.ExitSuccess
}
