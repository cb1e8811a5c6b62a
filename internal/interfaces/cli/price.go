package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"folio/internal/domain/model"
	"folio/internal/infrastructure/fixture"
)

// priceCmd groups the price series commands.
type priceCmd struct {
	app *App
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "record daily closing prices" }
func (*priceCmd) Usage() string {
	return `price <subcommand> <options>

  Subcommands: set.
`
}
func (*priceCmd) SetFlags(*flag.FlagSet) {}

func (c *priceCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "price")
	commander.Register(&priceSetCmd{app: c.app}, "")
	return commander.Execute(ctx, args...)
}

type priceSetCmd struct {
	app    *App
	symbol string
	date   string
	close  float64
	source string
}

func (*priceSetCmd) Name() string     { return "set" }
func (*priceSetCmd) Synopsis() string { return "insert or replace one daily close" }
func (*priceSetCmd) Usage() string {
	return `price set -symbol <symbol> -date <YYYY-MM-DD> -close <price> [-source manual]

  Records the close of an asset for a day, replacing any existing sample
  for the same day.
`
}

func (c *priceSetCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Asset symbol (required)")
	f.StringVar(&c.date, "date", "", "Trading day, YYYY-MM-DD (required)")
	f.Float64Var(&c.close, "close", 0, "Closing price (required)")
	f.StringVar(&c.source, "source", model.DefaultPriceSource, "Where the price came from")
}

func (c *priceSetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "symbol", "date", "close"); err != nil {
		return c.app.usage(err)
	}
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	id, err := s.services.PriceService().UpsertBySymbol(ctx, c.symbol, c.date, c.close, c.source)
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Done(fmt.Sprintf("price for asset %d on %s set", id, c.date)); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type syncCmd struct {
	app     *App
	offline bool
	file    string
}

func (*syncCmd) Name() string     { return "sync" }
func (*syncCmd) Synopsis() string { return "load daily closes from a local fixture" }
func (*syncCmd) Usage() string {
	return `sync -offline [-file prices.toml]

  Upserts every [[price]] entry (symbol, date, close, source) of the file.
  The whole file is checked before anything is written.
`
}

func (c *syncCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "Read prices from -file (required, there is no network source)")
	f.StringVar(&c.file, "file", "prices.toml", "Price fixture path")
}

func (c *syncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.offline {
		return c.app.usage(errors.New("only -offline sync is supported"))
	}
	batch, err := fixture.LoadPrices(c.file)
	if err != nil {
		return c.app.fail(err)
	}

	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	n, err := s.services.PriceService().Sync(ctx, batch)
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Done(fmt.Sprintf("synced %d prices from %s", n, c.file)); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
