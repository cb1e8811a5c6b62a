package cli

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"folio/internal/application/service"
)

// txnCmd groups the ledger commands.
type txnCmd struct {
	app *App
}

func (*txnCmd) Name() string     { return "txn" }
func (*txnCmd) Synopsis() string { return "append and list ledger transactions" }
func (*txnCmd) Usage() string {
	return `txn <subcommand> <options>

  Subcommands: add, list.
`
}
func (*txnCmd) SetFlags(*flag.FlagSet) {}

func (c *txnCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	commander := subcommands.NewCommander(f, "txn")
	commander.Register(&txnAddCmd{app: c.app}, "")
	commander.Register(&txnListCmd{app: c.app}, "")
	return commander.Execute(ctx, args...)
}

type txnAddCmd struct {
	app    *App
	user   string
	symbol string
	side   string
	qty    float64
	price  float64
	fee    float64
	ts     string
	note   string
}

func (*txnAddCmd) Name() string     { return "add" }
func (*txnAddCmd) Synopsis() string { return "append a transaction to the ledger" }
func (*txnAddCmd) Usage() string {
	return `txn add [-user <user>] -symbol <symbol> -side <side> -qty <qty> -price <price> [-fee 0] -ts <time> [-note <text>]

  Appends one immutable ledger event.
  - side: buy, sell, dividend, deposit or withdrawal.
  - ts: RFC 3339 time or YYYY-MM-DD date, stored in UTC.
`
}

func (c *txnAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Ledger owner (defaults to app.default_user)")
	f.StringVar(&c.symbol, "symbol", "", "Asset symbol (required)")
	f.StringVar(&c.side, "side", "", "Event kind (required)")
	f.Float64Var(&c.qty, "qty", 0, "Quantity, always positive (required)")
	f.Float64Var(&c.price, "price", 0, "Unit price (required)")
	f.Float64Var(&c.fee, "fee", 0, "Fee paid")
	f.StringVar(&c.ts, "ts", "", "Event time (required)")
	f.StringVar(&c.note, "note", "", "Free text note")
}

func (c *txnAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := required(f, "symbol", "side", "qty", "price", "ts"); err != nil {
		return c.app.usage(err)
	}
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	id, err := s.services.LedgerService().Append(ctx, service.AppendRequest{
		User:      s.user(c.user),
		Symbol:    c.symbol,
		Side:      c.side,
		Qty:       c.qty,
		Price:     c.price,
		Fee:       c.fee,
		Timestamp: c.ts,
		Note:      optional(c.note),
	})
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Created("transaction", id); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}

type txnListCmd struct {
	app   *App
	user  string
	limit int
}

func (*txnListCmd) Name() string     { return "list" }
func (*txnListCmd) Synopsis() string { return "list the most recent transactions" }
func (*txnListCmd) Usage() string {
	return `txn list [-user <user>] [-limit 20]

  Lists a user's transactions, newest first.
`
}

func (c *txnListCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "Ledger owner (defaults to app.default_user)")
	f.IntVar(&c.limit, "limit", 20, "Maximum number of rows")
}

func (c *txnListCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := c.app.open(false)
	if err != nil {
		return c.app.fail(err)
	}
	defer s.Close()

	txs, err := s.services.LedgerService().List(ctx, s.user(c.user), c.limit)
	if err != nil {
		return c.app.fail(err)
	}
	if err := s.sink.Transactions(txs); err != nil {
		return c.app.fail(err)
	}
	return subcommands.ExitSuccess
}
