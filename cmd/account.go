package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/misterh06/tradebook"
	"github.com/misterh06/tradebook/renderer"
)

type depositCmd struct {
	amount   string
	currency string
	date     string
}

func (*depositCmd) Name() string     { return "deposit" }
func (*depositCmd) Synopsis() string { return "record a cash deposit" }
func (*depositCmd) Usage() string {
	return `tb deposit -m <amount> -c <currency> [-d <date>]

  Adds cash to the account in one currency.
`
}

func (c *depositCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "m", "", "amount to deposit")
	f.StringVar(&c.currency, "c", "USD", "currency")
	f.StringVar(&c.date, "d", "", "date YYYY-MM-DD, defaults to today")
}

func (c *depositCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseDec("m", c.amount)
	if err != nil {
		return fail(err)
	}
	on, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	e := tradebook.NewDeposit(on, tradebook.M(amount, c.currency))
	if err := app.RecordAccountEntry(ctx, e); err != nil {
		return fail(err)
	}
	fmt.Println("Deposit recorded.")
	return subcommands.ExitSuccess
}

type withdrawCmd struct {
	amount   string
	currency string
	date     string
}

func (*withdrawCmd) Name() string     { return "withdraw" }
func (*withdrawCmd) Synopsis() string { return "record a cash withdrawal" }
func (*withdrawCmd) Usage() string {
	return `tb withdraw -m <amount> -c <currency> [-d <date>]

  Removes cash from the account in one currency.
`
}

func (c *withdrawCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "m", "", "amount to withdraw")
	f.StringVar(&c.currency, "c", "USD", "currency")
	f.StringVar(&c.date, "d", "", "date YYYY-MM-DD, defaults to today")
}

func (c *withdrawCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseDec("m", c.amount)
	if err != nil {
		return fail(err)
	}
	on, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	e := tradebook.NewWithdrawal(on, tradebook.M(amount, c.currency))
	if err := app.RecordAccountEntry(ctx, e); err != nil {
		return fail(err)
	}
	fmt.Println("Withdrawal recorded.")
	return subcommands.ExitSuccess
}

type convertCmd struct {
	amount string
	from   string
	to     string
	rate   string
	date   string
}

func (*convertCmd) Name() string     { return "convert" }
func (*convertCmd) Synopsis() string { return "convert cash between currencies" }
func (*convertCmd) Usage() string {
	return `tb convert -m <amount> -from <currency> -to <currency> -r <rate> [-d <date>]

  Exchanges cash at the given rate; the target amount is amount times rate.
`
}

func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "m", "", "source amount")
	f.StringVar(&c.from, "from", "", "source currency")
	f.StringVar(&c.to, "to", "", "target currency")
	f.StringVar(&c.rate, "r", "", "conversion rate")
	f.StringVar(&c.date, "d", "", "date YYYY-MM-DD, defaults to today")
}

func (c *convertCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := parseDec("m", c.amount)
	if err != nil {
		return fail(err)
	}
	rate, err := parseDec("r", c.rate)
	if err != nil {
		return fail(err)
	}
	on, err := parseDate(c.date)
	if err != nil {
		return fail(err)
	}
	if c.from == "" || c.to == "" {
		return fail(fmt.Errorf("missing -from or -to currency"))
	}
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	e := tradebook.NewConversion(on, tradebook.M(amount, c.from), rate, c.to)
	if err := app.RecordAccountEntry(ctx, e); err != nil {
		return fail(err)
	}
	fmt.Println("Conversion recorded.")
	return subcommands.ExitSuccess
}

type balancesCmd struct{}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show per-currency cash balances" }
func (*balancesCmd) Usage() string {
	return `tb balances

  Shows the net balance of every currency: deposits, withdrawals and
  conversions folded together with the realized P&L of closed positions.
`
}

func (c *balancesCmd) SetFlags(*flag.FlagSet) {}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, closer, err := openApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer closer()

	printMarkdown(renderer.BalancesMarkdown(app.Balances()))
	return subcommands.ExitSuccess
}
