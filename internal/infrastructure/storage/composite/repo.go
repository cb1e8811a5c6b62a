package composite

import (
	"context"

	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// PriceRepo puts latest-price caches in front of the primary price store.
// The primary store is the source of truth; caches only ever shortcut Latest.
type PriceRepo struct {
	primary port.PriceRepository
	caches  []port.PriceCache
}

func NewPriceRepo(primary port.PriceRepository, caches ...port.PriceCache) *PriceRepo {
	// nil caches are skipped
	out := make([]port.PriceCache, 0, len(caches))
	for _, c := range caches {
		if c != nil {
			out = append(out, c)
		}
	}
	return &PriceRepo{primary: primary, caches: out}
}

// UpsertPrice invalidates every cache before writing. The next LatestPrice
// repopulates from the primary store, which also covers back-dated upserts.
func (r *PriceRepo) UpsertPrice(ctx context.Context, p *model.PriceSample) error {
	for _, c := range r.caches {
		if err := c.Invalidate(ctx, p.AssetID); err != nil {
			return model.Persistence("invalidate cached price", err)
		}
	}
	return r.primary.UpsertPrice(ctx, p)
}

func (r *PriceRepo) LatestPrice(ctx context.Context, assetID int64) (*model.PriceSample, error) {
	for _, c := range r.caches {
		p, err := c.GetLatest(ctx, assetID)
		if err != nil {
			log.Warn().Err(err).Int64("asset_id", assetID).Msg("price cache read failed, using primary store")
			continue
		}
		if p != nil {
			return p, nil
		}
	}

	p, err := r.primary.LatestPrice(ctx, assetID)
	if err != nil || p == nil {
		return p, err
	}
	r.refresh(ctx, p)
	return p, nil
}

func (r *PriceRepo) refresh(ctx context.Context, p *model.PriceSample) {
	for _, c := range r.caches {
		if err := c.SetLatest(ctx, p); err != nil {
			log.Warn().Err(err).Int64("asset_id", p.AssetID).Msg("price cache refresh failed")
		}
	}
}

var _ port.PriceRepository = (*PriceRepo)(nil)
