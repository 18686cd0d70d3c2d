package server

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
)

// NewRouter builds the repositories, services and handlers on top of db and
// returns the routed engine. redisClient may be nil, in which case the cache
// and rate limiter are kept in process.
func NewRouter(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*gin.Engine, error) {
	store, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create object store: %w", err)
	}
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}

	var kv cache.Store = cache.NewMemoryStore()
	if redisClient != nil {
		kv = cache.NewRedisStore(redisClient, cache.DefaultPrefix)
	}

	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRecipeCreationLimiter(redisClient, cfg.RateLimit.RecipeCreation, cfg.RateLimit.Window)
	}

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	images := service.NewImageService(store, cfg.Storage.MaxImageBytes)
	authService := service.NewAuthService(userRepo, recipeRepo, images, kv, cfg.Auth)
	userService := service.NewUserService(userRepo, relationRepo)
	catalogService := service.NewCatalogService(catalogRepo, kv, cfg.Cache.TagsTTL)
	recipeService := service.NewRecipeService(recipeRepo, catalogRepo, relationRepo, images, enforcer)
	favoriteService := service.NewFavoriteService(recipeRepo, relationRepo, images, enforcer)
	cartService := service.NewCartService(recipeRepo, relationRepo, images, enforcer, cfg.ShoppingList.Signature)
	followService := service.NewFollowService(userRepo, recipeRepo, relationRepo, images, enforcer)

	opts := router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthCheck: func(ctx context.Context) error {
			if err := database.HealthCheck(ctx, db); err != nil {
				return err
			}
			if redisClient != nil {
				return redisClient.Ping(ctx).Err()
			}
			return nil
		},
	}
	if local, ok := store.(*storage.LocalStore); ok {
		opts.MediaURL = cfg.Storage.MediaURL
		opts.MediaDir = local.Dir()
	}

	return router.SetupRouter(opts, router.Handlers{
		Auth:  api.NewAuthHandler(authService),
		Users: api.NewUserHandler(authService, userService, followService, cfg.Pagination),
		Recipes: api.NewRecipeHandler(recipeService, favoriteService, cartService, authService,
			limiter, cfg.Pagination, cfg.ShoppingList),
		Catalog: api.NewCatalogHandler(catalogService),
	}), nil
}
