package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// AssetService is the asset registry: registration, listing and symbol resolution.
type AssetService struct {
	repo port.AssetRepository
}

func NewAssetService(repo port.AssetRepository) *AssetService {
	return &AssetService{repo: repo}
}

// Register validates and stores a new asset. The same symbol may exist under
// several asset types, never twice under one.
func (s *AssetService) Register(ctx context.Context, symbol, assetType, currency string, name *string) (int64, error) {
	typ, err := model.ParseAssetType(assetType)
	if err != nil {
		return 0, err
	}
	sym := model.NormalizeSymbol(symbol)
	if sym == "" {
		return 0, model.Invalid("symbol", "must not be empty")
	}
	cur := strings.ToUpper(strings.TrimSpace(currency))
	if cur == "" {
		cur = model.DefaultCurrency
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		name = nil
	}

	a := &model.Asset{Symbol: sym, Type: typ, Currency: cur, Name: name}
	id, err := s.repo.InsertAsset(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("register %s (%s): %w", sym, typ, err)
	}
	log.Info().Int64("id", id).Str("symbol", sym).Str("type", typ.String()).Msg("asset registered")
	return id, nil
}

// List returns every asset ordered by symbol.
func (s *AssetService) List(ctx context.Context) ([]model.Asset, error) {
	return s.repo.ListAssets(ctx)
}

// Get returns the asset with this id.
func (s *AssetService) Get(ctx context.Context, id int64) (*model.Asset, error) {
	return s.repo.GetAsset(ctx, id)
}

// Resolve maps a human-entered symbol to exactly one asset id.
func (s *AssetService) Resolve(ctx context.Context, symbol string) (int64, error) {
	sym := model.NormalizeSymbol(symbol)
	if sym == "" {
		return 0, model.Invalid("symbol", "must not be empty")
	}
	matches, err := s.repo.FindAssetsBySymbol(ctx, sym)
	if err != nil {
		return 0, err
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: symbol %s", model.ErrNotFound, sym)
	case 1:
		return matches[0].ID, nil
	default:
		types := make([]string, 0, len(matches))
		for _, m := range matches {
			types = append(types, m.Type.String())
		}
		return 0, fmt.Errorf("%w: %s is registered as %s", model.ErrAmbiguous, sym, strings.Join(types, ", "))
	}
}
