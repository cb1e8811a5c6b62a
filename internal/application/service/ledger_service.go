package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// AppendRequest is a ledger event as entered by the user.
type AppendRequest struct {
	User      string
	Symbol    string
	Side      string
	Qty       float64
	Price     float64
	Fee       float64
	Timestamp string // RFC 3339 or YYYY-MM-DD
	Note      *string
}

// LedgerService appends and lists transactions. There is no update or delete.
type LedgerService struct {
	repo   port.TransactionRepository
	assets *AssetService
}

func NewLedgerService(repo port.TransactionRepository, assets *AssetService) *LedgerService {
	return &LedgerService{repo: repo, assets: assets}
}

// Append validates req, resolves its symbol and stores one immutable row.
func (s *LedgerService) Append(ctx context.Context, req AppendRequest) (int64, error) {
	side, err := model.ParseSide(req.Side)
	if err != nil {
		return 0, err
	}
	ts, err := model.ParseTimestamp(req.Timestamp)
	if err != nil {
		return 0, err
	}
	t := &model.Transaction{
		User:      req.User,
		Side:      side,
		Qty:       req.Qty,
		Price:     req.Price,
		Fee:       req.Fee,
		Timestamp: ts,
		Note:      req.Note,
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	assetID, err := s.assets.Resolve(ctx, req.Symbol)
	if err != nil {
		return 0, err
	}
	t.AssetID = assetID

	id, err := s.repo.InsertTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}
	log.Info().
		Int64("id", id).
		Str("user", t.User).
		Str("side", side.String()).
		Int64("asset_id", assetID).
		Float64("qty", t.Qty).
		Msg("transaction appended")
	return id, nil
}

// List returns the user's most recent transactions first, at most limit.
func (s *LedgerService) List(ctx context.Context, user string, limit int) ([]model.Transaction, error) {
	if limit <= 0 {
		return nil, model.Invalid("limit", "must be > 0, got %d", limit)
	}
	return s.repo.ListTransactions(ctx, user, limit)
}
