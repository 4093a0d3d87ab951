package guildconfig

import (
	"context"
	"fmt"
	"sync"

	"dynasty-bot/internal/db"
	"dynasty-bot/internal/domain"

	"github.com/rs/zerolog"
)

type Store interface {
	GetConfig(ctx context.Context, guildID string) (*db.GuildConfig, error)
	UpsertConfig(ctx context.Context, guildID string, update domain.ConfigUpdate) error
}

// Cache holds parsed guild configs. Writes go to the store and evict the
// entry; the next Get reloads it.
type Cache struct {
	store  Store
	logger zerolog.Logger

	mu       sync.RWMutex
	entries  map[string]domain.GuildConfig
	versions map[string]uint64
}

func NewCache(store Store, logger zerolog.Logger) *Cache {
	return &Cache{
		store:    store,
		logger:   logger,
		entries:  make(map[string]domain.GuildConfig),
		versions: make(map[string]uint64),
	}
}

func (c *Cache) Get(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	c.mu.RLock()
	cfg, ok := c.entries[guildID]
	version := c.versions[guildID]
	c.mu.RUnlock()
	if ok {
		return clone(cfg), nil
	}

	row, err := c.store.GetConfig(ctx, guildID)
	if err != nil {
		return domain.GuildConfig{}, fmt.Errorf("failed to load guild config: %w", err)
	}

	cfg, warnings := Parse(guildID, row)
	for _, w := range warnings {
		c.logger.Warn().
			Str("guild_id", guildID).
			Str("field", w.Field).
			Str("value", w.Value).
			Err(w.Err).
			Msg("invalid config value, using default")
	}

	c.mu.Lock()
	// an eviction during the load means row may already be stale
	if c.versions[guildID] == version {
		c.entries[guildID] = cfg
	}
	c.mu.Unlock()

	c.logger.Debug().Str("guild_id", guildID).Bool("stored", row != nil).Msg("guild config loaded")
	return clone(cfg), nil
}

func (c *Cache) Save(ctx context.Context, guildID string, update domain.ConfigUpdate) error {
	defer c.Invalidate(guildID)

	if err := c.store.UpsertConfig(ctx, guildID, update); err != nil {
		return fmt.Errorf("failed to save guild config: %w", err)
	}

	c.logger.Info().Str("guild_id", guildID).Msg("guild config saved")
	return nil
}

func (c *Cache) Invalidate(guildID string) {
	c.mu.Lock()
	delete(c.entries, guildID)
	c.versions[guildID]++
	c.mu.Unlock()
}

func (c *Cache) Reload(ctx context.Context, guildID string) (domain.GuildConfig, error) {
	c.Invalidate(guildID)
	return c.Get(ctx, guildID)
}

func clone(cfg domain.GuildConfig) domain.GuildConfig {
	cfg.AdvanceIntervals = append([]int(nil), cfg.AdvanceIntervals...)
	cfg.Timezones = append([]string(nil), cfg.Timezones...)
	if cfg.JobOffers.MaxStars != nil {
		v := *cfg.JobOffers.MaxStars
		cfg.JobOffers.MaxStars = &v
	}
	return cfg
}
