// Package cmd holds the subcommands of the tb command line tool.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/misterh06/tradebook"
	"github.com/misterh06/tradebook/docstore"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&openCmd{}, "positions")
	c.Register(&addCmd{}, "positions")
	c.Register(&closeCmd{}, "positions")
	c.Register(&editCmd{}, "positions")
	c.Register(&deleteCmd{}, "positions")
	c.Register(&assignCmd{}, "positions")

	c.Register(&depositCmd{}, "account")
	c.Register(&withdrawCmd{}, "account")
	c.Register(&convertCmd{}, "account")
	c.Register(&balancesCmd{}, "account")

	c.Register(&strategiesCmd{}, "strategies")
	c.Register(&addStrategyCmd{}, "strategies")
	c.Register(&editStrategyCmd{}, "strategies")
	c.Register(&deleteStrategyCmd{}, "strategies")

	c.Register(&dashboardCmd{}, "reports")
	c.Register(&historyCmd{}, "reports")
	c.Register(&statsCmd{}, "reports")
}

// openApp loads the environment, opens the journal database and performs
// the initial load. The returned closer must be deferred.
func openApp(ctx context.Context) (*tradebook.App, func() error, error) {
	// A missing .env is fine, environment variables still apply.
	_ = godotenv.Load()

	log := newLogger()

	path := os.Getenv("TRADEBOOK_DB")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("could not resolve home directory: %w", err)
		}
		path = home + "/.tradebook/journal.db"
	}

	owner := os.Getenv("TRADEBOOK_USER")
	if owner == "" {
		owner = "default"
	}

	store, err := docstore.Open(path, owner, log)
	if err != nil {
		return nil, nil, err
	}

	app := tradebook.NewApp(store, log)
	if err := app.Load(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	return app, store.Close, nil
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if l, err := zerolog.ParseLevel(os.Getenv("TRADEBOOK_LOG")); err == nil && l != zerolog.NoLevel {
		level = l
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// printMarkdown renders a markdown report for the terminal. When the fancy
// renderer cannot be built the raw markdown is still printed.
func printMarkdown(doc string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		fmt.Println(doc)
		return
	}
	out, err := r.Render(doc)
	if err != nil {
		fmt.Println(doc)
		return
	}
	fmt.Print(out)
}

// parseDate accepts YYYY-MM-DD; an empty value means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

func parseDec(name, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, fmt.Errorf("missing -%s", name)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid -%s value %q: %w", name, s, err)
	}
	return d, nil
}

// parseExecution assembles an execution from the common quantity, price,
// fee and date flags. An empty fee keeps the default.
func parseExecution(qty, price, fee, date string) (tradebook.Execution, error) {
	q, err := parseDec("q", qty)
	if err != nil {
		return tradebook.Execution{}, err
	}
	p, err := parseDec("p", price)
	if err != nil {
		return tradebook.Execution{}, err
	}
	on, err := parseDate(date)
	if err != nil {
		return tradebook.Execution{}, err
	}
	x := tradebook.NewExecution(on, q, p)
	if strings.TrimSpace(fee) != "" {
		f, err := parseDec("f", fee)
		if err != nil {
			return tradebook.Execution{}, err
		}
		x.Fees = f
	}
	return x, x.Validate()
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
