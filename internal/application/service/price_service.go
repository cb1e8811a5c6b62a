package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// SymbolPrice is a price sample addressed by symbol, as found in sync fixtures.
type SymbolPrice struct {
	Symbol string
	Date   string
	Close  float64
	Source string
}

type PriceService struct {
	repo   port.PriceRepository
	assets *AssetService
}

func NewPriceService(repo port.PriceRepository, assets *AssetService) *PriceService {
	return &PriceService{repo: repo, assets: assets}
}

// Upsert records the close for (assetID, date); the last writer for a date wins.
func (s *PriceService) Upsert(ctx context.Context, assetID int64, date string, close float64, source string) error {
	p, err := newSample(assetID, date, close, source)
	if err != nil {
		return err
	}
	if err := s.repo.UpsertPrice(ctx, p); err != nil {
		return fmt.Errorf("upsert price %d@%s: %w", assetID, p.Date, err)
	}
	log.Debug().Int64("asset_id", assetID).Str("date", p.Date).Float64("close", close).Msg("price upserted")
	return nil
}

// UpsertBySymbol resolves symbol first, then upserts.
func (s *PriceService) UpsertBySymbol(ctx context.Context, symbol, date string, close float64, source string) (int64, error) {
	if _, err := newSample(0, date, close, source); err != nil {
		return 0, err
	}
	id, err := s.assets.Resolve(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return id, s.Upsert(ctx, id, date, close, source)
}

// Latest returns the max-date sample for the asset, or nil if none exists.
func (s *PriceService) Latest(ctx context.Context, assetID int64) (*model.PriceSample, error) {
	return s.repo.LatestPrice(ctx, assetID)
}

// Sync upserts a batch of samples. Every sample is validated and resolved
// before the first write; the first write failure stops the batch.
func (s *PriceService) Sync(ctx context.Context, batch []SymbolPrice) (int, error) {
	samples := make([]*model.PriceSample, 0, len(batch))
	for i, sp := range batch {
		id, err := s.assets.Resolve(ctx, sp.Symbol)
		if err != nil {
			return 0, fmt.Errorf("price #%d: %w", i+1, err)
		}
		p, err := newSample(id, sp.Date, sp.Close, sp.Source)
		if err != nil {
			return 0, fmt.Errorf("price #%d (%s): %w", i+1, sp.Symbol, err)
		}
		samples = append(samples, p)
	}

	for i, p := range samples {
		if err := s.repo.UpsertPrice(ctx, p); err != nil {
			return i, fmt.Errorf("sync price %d@%s: %w", p.AssetID, p.Date, err)
		}
	}
	log.Info().Int("prices", len(samples)).Msg("prices synced")
	return len(samples), nil
}

func newSample(assetID int64, date string, close float64, source string) (*model.PriceSample, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		source = model.DefaultPriceSource
	}
	p := &model.PriceSample{AssetID: assetID, Date: strings.TrimSpace(date), Close: close, Source: source}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
