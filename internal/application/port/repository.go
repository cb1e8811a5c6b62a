package port

import (
	"context"

	"folio/internal/domain/model"
)

// AssetRepository asset catalog storage
type AssetRepository interface {
	// InsertAsset stores a new asset and returns its id; a duplicate (symbol, type) yields model.ErrDuplicate
	InsertAsset(ctx context.Context, a *model.Asset) (int64, error)

	// GetAsset returns model.ErrNotFound when no asset has this id
	GetAsset(ctx context.Context, id int64) (*model.Asset, error)

	// FindAssetsBySymbol returns every asset registered under symbol, across types
	FindAssetsBySymbol(ctx context.Context, symbol string) ([]model.Asset, error)

	// ListAssets ordered by symbol ascending
	ListAssets(ctx context.Context) ([]model.Asset, error)
}

// TransactionRepository append-only ledger storage
type TransactionRepository interface {
	// InsertTransaction appends one row; rows are never modified
	InsertTransaction(ctx context.Context, t *model.Transaction) (int64, error)

	// ListTransactions most recent first, at most limit rows, symbol joined in
	ListTransactions(ctx context.Context, user string, limit int) ([]model.Transaction, error)

	// TransactionsForUser full history in replay order (timestamp ascending)
	TransactionsForUser(ctx context.Context, user string) ([]model.Transaction, error)
}

// PriceRepository daily close storage
type PriceRepository interface {
	// UpsertPrice inserts or replaces the sample keyed by (asset_id, date)
	UpsertPrice(ctx context.Context, p *model.PriceSample) error

	// LatestPrice returns the max-date sample, or nil when the series is empty
	LatestPrice(ctx context.Context, assetID int64) (*model.PriceSample, error)
}

// Repository is the full storage handle passed into the services.
type Repository interface {
	AssetRepository
	TransactionRepository
	PriceRepository

	// Migrate provisions the schema; safe to run repeatedly
	Migrate(ctx context.Context) error

	// Connection management
	Close() error
}

// PriceCache holds the latest sample per asset in front of a PriceRepository.
type PriceCache interface {
	// GetLatest returns nil on a cache miss
	GetLatest(ctx context.Context, assetID int64) (*model.PriceSample, error)

	// SetLatest records p unless a sample with a later date is already cached
	SetLatest(ctx context.Context, p *model.PriceSample) error

	// Invalidate drops the cached sample for the asset
	Invalidate(ctx context.Context, assetID int64) error
}
