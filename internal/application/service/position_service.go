package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/domain/model"
	domainservice "folio/internal/domain/service"
)

// PositionService loads a user's ledger and prices and folds them into positions.
// It reads without isolation: appends running concurrently may be seen partially.
type PositionService struct {
	ledger port.TransactionRepository
	assets port.AssetRepository
	prices port.PriceRepository
}

func NewPositionService(ledger port.TransactionRepository, assets port.AssetRepository, prices port.PriceRepository) *PositionService {
	return &PositionService{ledger: ledger, assets: assets, prices: prices}
}

// Compute derives the user's current holdings. Any read failure aborts the
// whole computation.
func (s *PositionService) Compute(ctx context.Context, user string) ([]model.Position, error) {
	txs, err := s.ledger.TransactionsForUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("load transactions for %s: %w", user, err)
	}

	assets := make(map[int64]model.Asset)
	latest := make(map[int64]model.PriceSample)
	for _, t := range txs {
		if _, seen := assets[t.AssetID]; seen {
			continue
		}
		a, err := s.assets.GetAsset(ctx, t.AssetID)
		if err != nil {
			return nil, fmt.Errorf("load asset %d: %w", t.AssetID, err)
		}
		assets[t.AssetID] = *a

		p, err := s.prices.LatestPrice(ctx, t.AssetID)
		if err != nil {
			return nil, fmt.Errorf("load latest price for %s: %w", a.Symbol, err)
		}
		if p != nil {
			latest[t.AssetID] = *p
		}
	}

	positions := domainservice.Fold(txs, assets, latest)
	log.Debug().Str("user", user).Int("transactions", len(txs)).Int("positions", len(positions)).Msg("positions computed")
	return positions, nil
}

// Summary totals the user's positions.
func (s *PositionService) Summary(ctx context.Context, user string) (model.Summary, error) {
	positions, err := s.Compute(ctx, user)
	if err != nil {
		return model.Summary{}, err
	}
	return domainservice.Summarize(user, positions), nil
}
