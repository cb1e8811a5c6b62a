package container

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"folio/internal/application/port"
	"folio/internal/infrastructure/config"
	"folio/internal/infrastructure/storage/composite"
	pgrepo "folio/internal/infrastructure/storage/postgres"
	redisrepo "folio/internal/infrastructure/storage/redis"
	sqliterepo "folio/internal/infrastructure/storage/sqlite"
)

// Container owns every opened resource and closes them in reverse order.
type Container struct {
	cfg         *config.Config
	repo        port.Repository
	redisRepo   *redisrepo.Repo
	prices      port.PriceRepository
	closeOnce   sync.Once
	closerChain []func() error
}

func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		cfg:         cfg,
		closerChain: make([]func() error, 0),
	}

	if err := c.initStore(); err != nil {
		_ = c.Close()
		return nil, err
	}
	if cfg.Storage.Redis.Enabled {
		if err := c.initRedis(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("redis init failed: %w", err)
		}
	}

	if c.redisRepo != nil {
		c.prices = composite.NewPriceRepo(c.repo, c.redisRepo)
	} else {
		c.prices = c.repo
	}
	return c, nil
}

// Backend names the driver chosen for a connection string.
func Backend(url string) string {
	u := strings.ToLower(strings.TrimSpace(url))
	if strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func (c *Container) initStore() error {
	url := c.cfg.Storage.URL
	switch Backend(url) {
	case "postgres":
		repo, err := pgrepo.New(url)
		if err != nil {
			return fmt.Errorf("postgres init failed: %w", err)
		}
		c.track("postgres", repo)
		log.Info().Msg("postgres initialized")
	default:
		repo, err := sqliterepo.New(url)
		if err != nil {
			return fmt.Errorf("sqlite init failed: %w", err)
		}
		c.track("sqlite", repo)
		log.Info().Str("path", url).Msg("sqlite initialized")
	}
	return nil
}

func (c *Container) track(name string, repo port.Repository) {
	c.repo = repo
	c.closerChain = append(c.closerChain, func() error {
		log.Debug().Str("backend", name).Msg("closing database")
		return repo.Close()
	})
}

func (c *Container) initRedis() error {
	rc := c.cfg.Storage.Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	c.redisRepo = redisrepo.New(rdb, rc.Prefix, c.cfg.RedisTTL())
	c.closerChain = append(c.closerChain, func() error {
		log.Debug().Msg("closing redis connection")
		return rdb.Close()
	})

	log.Info().Str("addr", rc.Addr).Int("db", rc.DB).Msg("redis initialized")
	return nil
}

// Repository is the system-of-record store.
func (c *Container) Repository() port.Repository {
	return c.repo
}

// PriceRepository reads through the redis cache when one is configured.
func (c *Container) PriceRepository() port.PriceRepository {
	return c.prices
}

// Close releases resources in LIFO order; later calls are no-ops.
func (c *Container) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for i := len(c.closerChain) - 1; i >= 0; i-- {
			if e := c.closerChain[i](); e != nil {
				log.Error().Err(e).Msg("error closing resource")
				if err == nil {
					err = e
				}
			}
		}
		log.Debug().Msg("container closed")
	})
	return err
}
