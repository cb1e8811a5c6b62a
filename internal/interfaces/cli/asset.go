package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"folio/internal/domain/model"
)

// assetCmd groups the asset registry commands.
type assetCmd struct {
	app *App
}

func (*assetCmd) Name() string     { return "asset" }
func (*assetCmd) Synopsis() string { return "register and list tradable assets" }
func (*assetCmd) Usage() string {
	return `asset <subcommand> <options>

  Subcommands: add, list.
`
}
func (*assetCmd) SetFlags(*flag.FlagSet) {}

func (c *assetCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "asset")
	commander.Register(&assetAddCmd{app: c.app}, "")
	commander.Register(&assetListCmd{app: c.app}, "")
	return commander.Execute(ctx, args...)
}

type assetAddCmd struct {
	app       *App
	symbol    string
	assetType string
	currency  string
	name      string
}

func (*assetAddCmd) Name() string     { return "add" }
func (*assetAddCmd) Synopsis() string { return "register a new asset" }
func (*assetAddCmd) Usage() string {
	return `asset add -symbol <symbol> -type <stock|etf|crypto> [-currency USD] [-name <name>]

  Registers an asset. A symbol may exist once per asset type.
`
}

func (c *assetAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "symbol", "", "Ticker symbol (required)")
	f.StringVar(&c.assetType, "type", "", "Asset type: stock, etf or crypto (required)")
	f.StringVar(&c.currency, "currency", model.DefaultCurrency, "Quote currency, 3-letter code")
	f.StringVar(&c.name, "name", "", "Display name")
}

func (c *assetAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "symbol", "type"); err != nil {
		return c.app.usage(err)
	}
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	id, err := s.services.AssetService().Register(ctx, c.symbol, c.assetType, c.currency, optional(c.name))
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Created("asset", id); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type assetListCmd struct {
	app *App
}

func (*assetListCmd) Name() string     { return "list" }
func (*assetListCmd) Synopsis() string { return "list registered assets" }
func (*assetListCmd) Usage() string {
	return `asset list

  Lists every asset ordered by symbol.
`
}
func (*assetListCmd) SetFlags(*flag.FlagSet) {}

func (c *assetListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	assets, err := s.services.AssetService().List(ctx)
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Assets(assets); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
