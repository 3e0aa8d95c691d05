package app

import (
	"log/slog"

	"github.com/bogdang40/DouaInimi/internal/cache"
	"github.com/bogdang40/DouaInimi/internal/config"
	"github.com/bogdang40/DouaInimi/internal/events"
	"gorm.io/gorm"
)

// AppContext holds shared dependencies (DB, Redis, Logger, event bus, config).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Events     events.Publisher
	Config     *config.Config
}

// New creates a new AppContext.
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, bus events.Publisher, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Events:     bus,
		Config:     cfg,
	}
}
