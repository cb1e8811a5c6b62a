package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type positionsCmd struct {
	app  *App
	user string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "show open positions valued at the latest close" }
func (*positionsCmd) Usage() string {
	return `positions [-user <user>]

  Folds the user's ledger into open positions. Positions without any price
  sample show "-" as last price and a zero market value.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Ledger owner (defaults to app.default_user)")
}

func (c *positionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	user := s.user(c.user)
	positions, err := s.services.PositionService().Compute(ctx, user)
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Positions(user, positions); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	app  *App
	user string
	json bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show total value, P/L and allocation" }
func (*summaryCmd) Usage() string {
	return `summary [-user <user>] [-json]

  Totals the open positions of a user.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Ledger owner (defaults to app.default_user)")
	f.BoolVar(&c.json, "json", false, "Print the summary as JSON")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.open(c.json)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	sum, err := s.services.PositionService().Summary(ctx, s.user(c.user))
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Summary(sum); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
