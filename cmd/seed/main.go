package main

import (
	"context"
	"flag"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

func main() {
	users := flag.Int("users", 10, "number of users to create")
	recipes := flag.Int("recipes", 3, "recipes per user")
	password := flag.String("password", "foodgram123", "password of every seeded user")
	seedValue := flag.Int64("seed", 0, "random seed, 0 for a time based one")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if cfg.Env == config.Production {
		logging.Fatal().Msg("refusing to seed a production database")
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create object store")
	}

	factory := seed.NewFactory(
		repository.NewUserRepository(db),
		repository.NewRecipeRepository(db),
		repository.NewCatalogRepository(db),
		repository.NewRelationRepository(db),
		service.NewImageService(store, cfg.Storage.MaxImageBytes),
		seed.Options{Users: *users, RecipesPerUser: *recipes, Password: *password, Seed: *seedValue},
	)
	if _, err := factory.Run(ctx); err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}
}
