package port

import "folio/internal/domain/model"

// Sink renders command results for the end user.
type Sink interface {
	Assets(assets []model.Asset) error
	Transactions(txs []model.Transaction) error
	Positions(user string, positions []model.Position) error
	Summary(s model.Summary) error
	// Created reports the id of a newly written row
	Created(kind string, id int64) error
	// Done reports a completed command with no row output
	Done(msg string) error
}
