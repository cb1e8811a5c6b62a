package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"folio/internal/application/port"
	"folio/internal/domain/model"
)

// Repo caches the latest price sample per asset in a single hash.
type Repo struct {
	rdb       *redis.Client
	prefix    string
	ttl       time.Duration
	keyLatest string // prefix + ":latest"
}

type latestPrice struct {
	AssetID int64   `json:"asset_id"`
	Date    string  `json:"date"`
	Close   float64 `json:"close"`
	Source  string  `json:"source"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Repo {
	if prefix == "" {
		prefix = "folio"
	}
	return &Repo{
		rdb:       rdb,
		prefix:    prefix,
		ttl:       ttl,
		keyLatest: prefix + ":latest",
	}
}

func field(assetID int64) string { return strconv.FormatInt(assetID, 10) }

func (r *Repo) GetLatest(ctx context.Context, assetID int64) (*model.PriceSample, error) {
	raw, err := r.rdb.HGet(ctx, r.keyLatest, field(assetID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lp latestPrice
	if err := json.Unmarshal([]byte(raw), &lp); err != nil {
		return nil, err
	}
	return &model.PriceSample{AssetID: lp.AssetID, Date: lp.Date, Close: lp.Close, Source: lp.Source}, nil
}

func (r *Repo) SetLatest(ctx context.Context, p *model.PriceSample) error {
	cur, err := r.GetLatest(ctx, p.AssetID)
	if err != nil {
		return err
	}
	// same date overwrites, like the upsert it mirrors
	if cur != nil && cur.Date > p.Date {
		return nil
	}

	b, _ := json.Marshal(latestPrice{AssetID: p.AssetID, Date: p.Date, Close: p.Close, Source: p.Source})
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, field(p.AssetID), string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Repo) Invalidate(ctx context.Context, assetID int64) error {
	return r.rdb.HDel(ctx, r.keyLatest, field(assetID)).Err()
}

var _ port.PriceCache = (*Repo)(nil)
