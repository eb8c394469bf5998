package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/misterh06/tradebook"
)

type openCmd struct {
	asset    string
	side     string
	currency string
	strategy string
	notes    string
	qty      string
	price    string
	fee      string
	date     string
}

func (*openCmd) Name() string     { return "open" }
func (*openCmd) Synopsis() string { return "open a new position with its first entry" }
func (*openCmd) Usage() string {
	return `tb open -a <asset> -t long|short -c <currency> -q <qty> -p <price> [-f <fee>] [-d <date>] [-s <strategy-id>] [-n <notes>]

  Opens a position. The first entry is recorded at the given quantity and
  price; when -f is omitted the default broker fee applies.
`
}

func (c *openCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.asset, "a", "", "asset symbol, e.g. AAPL")
	f.StringVar(&c.side, "t", "long", "position type: long or short")
	f.StringVar(&c.currency, "c", "USD", "position currency")
	f.StringVar(&c.qty, "q", "", "entry quantity")
	f.StringVar(&c.price, "p", "", "entry price")
	f.StringVar(&c.fee, "f", "", "entry fee, defaults to the broker fee")
	f.StringVar(&c.date, "d", "", "entry date YYYY-MM-DD, defaults to today")
	f.StringVar(&c.strategy, "s", "", "strategy id")
	f.StringVar(&c.notes, "n", "", "free-form notes")
}

func (c *openCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.asset == "" {
		return fail(fmt.Errorf("missing -a asset"))
	}
	side, err := tradebook.ParseSide(c.side)
	if err != nil {
		return fail(err)
	}
	first, err := parseExecution(c.qty, c.price, c.fee, c.date)
	if err != nil {
		return fail(err)
	}

	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	id, err := app.OpenPosition(ctx, c.asset, side, c.currency, c.strategy, c.notes, first)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Opened position %s\n", id)
	return subcommands.ExitSuccess
}

type addCmd struct {
	id    string
	qty   string
	price string
	fee   string
	date  string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add an entry to an open position" }
func (*addCmd) Usage() string {
	return `tb add -id <position> -q <qty> -p <price> [-f <fee>] [-d <date>]

  Reinforces an open position with an extra entry.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "position id")
	f.StringVar(&c.qty, "q", "", "entry quantity")
	f.StringVar(&c.price, "p", "", "entry price")
	f.StringVar(&c.fee, "f", "", "entry fee, defaults to the broker fee")
	f.StringVar(&c.date, "d", "", "entry date YYYY-MM-DD, defaults to today")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return fail(fmt.Errorf("missing -id"))
	}
	e, err := parseExecution(c.qty, c.price, c.fee, c.date)
	if err != nil {
		return fail(err)
	}

	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.Reinforce(ctx, c.id, e); err != nil {
		return fail(err)
	}
	fmt.Println("Entry added.")
	return subcommands.ExitSuccess
}

type closeCmd struct {
	id    string
	qty   string
	price string
	fee   string
	date  string
}

func (*closeCmd) Name() string     { return "close" }
func (*closeCmd) Synopsis() string { return "close a position, fully or partially" }
func (*closeCmd) Usage() string {
	return `tb close -id <position> -q <qty> -p <price> [-f <fee>] [-d <date>]

  Records an exit. When the exit quantity covers the whole remaining
  position the position flips to closed; exiting more than is held is
  rejected.
`
}

func (c *closeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "position id")
	f.StringVar(&c.qty, "q", "", "exit quantity")
	f.StringVar(&c.price, "p", "", "exit price")
	f.StringVar(&c.fee, "f", "", "exit fee, defaults to the broker fee")
	f.StringVar(&c.date, "d", "", "exit date YYYY-MM-DD, defaults to today")
}

func (c *closeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return fail(fmt.Errorf("missing -id"))
	}
	x, err := parseExecution(c.qty, c.price, c.fee, c.date)
	if err != nil {
		return fail(err)
	}

	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.ClosePosition(ctx, c.id, x); err != nil {
		return fail(err)
	}
	fmt.Println("Exit recorded.")
	return subcommands.ExitSuccess
}

type editCmd struct {
	id    string
	index int
	qty   string
	price string
	fee   string
	date  string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "correct an entry of an open position" }
func (*editCmd) Usage() string {
	return `tb edit -id <position> -i <entry-index> -q <qty> -p <price> [-f <fee>] [-d <date>]

  Replaces one entry in place. When no fee is given the original entry's
  fee is kept.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "position id")
	f.IntVar(&c.index, "i", 0, "zero-based entry index")
	f.StringVar(&c.qty, "q", "", "corrected quantity")
	f.StringVar(&c.price, "p", "", "corrected price")
	f.StringVar(&c.fee, "f", "", "corrected fee, keeps the original when omitted")
	f.StringVar(&c.date, "d", "", "corrected date YYYY-MM-DD, defaults to today")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return fail(fmt.Errorf("missing -id"))
	}
	e, err := parseExecution(c.qty, c.price, c.fee, c.date)
	if err != nil {
		return fail(err)
	}
	if c.fee == "" {
		// zero fee signals ReplaceEntry to keep the stored one
		e.Fees = decimal.Zero
	}

	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.EditEntry(ctx, c.id, c.index, e); err != nil {
		return fail(err)
	}
	fmt.Println("Entry updated.")
	return subcommands.ExitSuccess
}

type deleteCmd struct {
	id string
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a position permanently" }
func (*deleteCmd) Usage() string {
	return `tb delete -id <position>

  Removes a position and all of its entries and exits. There is no undo.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "position id")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return fail(fmt.Errorf("missing -id"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.DeletePosition(ctx, c.id); err != nil {
		return fail(err)
	}
	fmt.Println("Position deleted.")
	return subcommands.ExitSuccess
}

type assignCmd struct {
	id       string
	strategy string
}

func (*assignCmd) Name() string     { return "assign" }
func (*assignCmd) Synopsis() string { return "assign a strategy to a position" }
func (*assignCmd) Usage() string {
	return `tb assign -id <position> [-s <strategy-id>]

  Re-assigns the position's strategy. An empty -s clears the assignment.
`
}

func (c *assignCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "position id")
	f.StringVar(&c.strategy, "s", "", "strategy id, empty clears it")
}

func (c *assignCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id == "" {
		return fail(fmt.Errorf("missing -id"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	if err := app.SetStrategy(ctx, c.id, c.strategy); err != nil {
		return fail(err)
	}
	fmt.Println("Strategy assigned.")
	return subcommands.ExitSuccess
}
