package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type initCmd struct {
	app *App
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create the ledger schema" }
func (*initCmd) Usage() string {
	return `init

  Creates the assets, transactions and prices tables in the configured
  store. Running it again is harmless.
`
}

func (*initCmd) SetFlags(*flag.FlagSet) {}

func (c *initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	if err := s.services.Repository().Migrate(ctx); err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Done("schema ready"); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
