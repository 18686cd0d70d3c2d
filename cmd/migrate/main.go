package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	// Parse command line flags
	ingredients := flag.String("ingredients", "", "JSON file of ingredients to load after migrating")
	tags := flag.String("tags", "", "JSON file of tags to load after migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		logging.Fatal().Err(err).Msg("failed to migrate database")
	}
	logging.Info().Msg("all migrations applied successfully")

	ctx := context.Background()
	if *ingredients != "" {
		if err := load(ctx, db, *ingredients, database.LoadIngredients); err != nil {
			logging.Fatal().Err(err).Msg("failed to load ingredients")
		}
	}
	if *tags != "" {
		if err := load(ctx, db, *tags, database.LoadTags); err != nil {
			logging.Fatal().Err(err).Msg("failed to load tags")
		}
		invalidateTags(ctx, cfg, db)
	}
}

// invalidateTags drops the tag list cached in redis by running API servers.
// An in-process cache expires on its own after cache.tags_ttl.
func invalidateTags(ctx context.Context, cfg *config.Config, db *gorm.DB) {
	if !cfg.Redis.Enabled {
		return
	}
	client, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, cached tags expire after their ttl")
		return
	}
	defer client.Close()

	catalog := service.NewCatalogService(repository.NewCatalogRepository(db), cache.NewRedisStore(client, cache.DefaultPrefix), cfg.Cache.TagsTTL)
	if err := catalog.InvalidateTags(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to invalidate cached tags")
		return
	}
	logging.Info().Msg("cached tag list invalidated")
}

type loader func(ctx context.Context, db *gorm.DB, r io.Reader) (int64, error)

func load(ctx context.Context, db *gorm.DB, path string, fn loader) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := fn(ctx, db, f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logging.Info().Str("file", path).Int64("created", n).Msg("fixtures loaded")
	return nil
}
