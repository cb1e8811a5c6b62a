package container

import (
	"folio/internal/application/port"
	"folio/internal/application/service"
)

// Container lazily wires the application services onto one store.
type Container struct {
	repo   port.Repository
	prices port.PriceRepository

	assetService    *service.AssetService
	ledgerService   *service.LedgerService
	priceService    *service.PriceService
	positionService *service.PositionService
}

// New takes the system-of-record store and the price repository to read
// latest samples through; a nil prices falls back to repo.
func New(repo port.Repository, prices port.PriceRepository) *Container {
	if prices == nil {
		prices = repo
	}
	return &Container{
		repo:   repo,
		prices: prices,
	}
}

func (c *Container) Repository() port.Repository {
	return c.repo
}

func (c *Container) AssetService() *service.AssetService {
	if c.assetService == nil {
		c.assetService = service.NewAssetService(c.repo)
	}
	return c.assetService
}

func (c *Container) LedgerService() *service.LedgerService {
	if c.ledgerService == nil {
		c.ledgerService = service.NewLedgerService(c.repo, c.AssetService())
	}
	return c.ledgerService
}

func (c *Container) PriceService() *service.PriceService {
	if c.priceService == nil {
		c.priceService = service.NewPriceService(c.prices, c.AssetService())
	}
	return c.priceService
}

func (c *Container) PositionService() *service.PositionService {
	if c.positionService == nil {
		c.positionService = service.NewPositionService(c.repo, c.repo, c.prices)
	}
	return c.positionService
}

func (c *Container) Close() error {
	return c.repo.Close()
}
