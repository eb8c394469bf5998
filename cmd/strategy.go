package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"

	"github.com/misterh06/tradebook"
)

type strategiesCmd struct{}

func (*strategiesCmd) Name() string     { return "strategies" }
func (*strategiesCmd) Synopsis() string { return "list trading strategies" }
func (*strategiesCmd) Usage() string {
	return `tb strategies

  Lists every strategy with its id.
`
}

func (c *strategiesCmd) SetFlags(*flag.FlagSet) {}

func (c *strategiesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	for _, s := range app.Strategies() {
		fmt.Printf("%s\t%s\n", s.ID, s.Title)
		if s.Details != "" {
			fmt.Printf("\t%s\n", s.Details)
		}
	}
	return subcommands.ExitSuccess
}

type addStrategyCmd struct {
	title   string
	details string
}

func (*addStrategyCmd) Name() string     { return "add-strategy" }
func (*addStrategyCmd) Synopsis() string { return "create a strategy" }
func (*addStrategyCmd) Usage() string {
	return `tb add-strategy -t <title> [-x <details>]
`
}

func (c *addStrategyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.title, "t", "", "strategy title")
	f.StringVar(&c.details, "x", "", "strategy details")
}

func (c *addStrategyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.title == "" {
		return fail(fmt.Errorf("missing -t title"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	id, err := app.AddStrategy(ctx, tradebook.Strategy{
		Title:     c.title,
		Details:   c.details,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Created strategy %s\n", id)
	return subcommands.ExitSuccess
}

type editStrategyCmd struct {
	id      string
	title   string
	details string
}

func (*editStrategyCmd) Name() string     { return "edit-strategy" }
func (*editStrategyCmd) Synopsis() string { return "edit a strategy's title and details" }
func (*editStrategyCmd) Usage() string {
	return `tb edit-strategy -id <strategy> -t <title> [-x <details>]
`
}

func (c *editStrategyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "strategy id")
	f.StringVar(&c.title, "t", "", "new title")
	f.StringVar(&c.details, "x", "", "new details")
}

func (c *editStrategyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" || c.title == "" {
		return fail(fmt.Errorf("missing -id or -t"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.UpdateStrategy(ctx, c.id, c.title, c.details); err != nil {
		return fail(err)
	}
	fmt.Println("Strategy updated.")
	return subcommands.ExitSuccess
}

type deleteStrategyCmd struct {
	id string
}

func (*deleteStrategyCmd) Name() string     { return "delete-strategy" }
func (*deleteStrategyCmd) Synopsis() string { return "delete a strategy" }
func (*deleteStrategyCmd) Usage() string {
	return `tb delete-strategy -id <strategy>

  Deletes a strategy. Positions that still reference it keep their
  reference and show as "Unknown" in reports.
`
}

func (c *deleteStrategyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "strategy id")
}

func (c *deleteStrategyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return fail(fmt.Errorf("missing -id"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.DeleteStrategy(ctx, c.id); err != nil {
		return fail(err)
	}
	fmt.Println("Strategy deleted.")
	return subcommands.ExitSuccess
}
