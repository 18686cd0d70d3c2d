package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Handlers groups the API handlers mounted under /api.
type Handlers struct {
	Auth    *api.AuthHandler
	Users   *api.UserHandler
	Recipes *api.RecipeHandler
	Catalog *api.CatalogHandler
}

// Options configures the parts of the engine outside the API group.
type Options struct {
	AllowedOrigins []string
	// MediaURL and MediaDir are set when images are served from local disk.
	MediaURL string
	MediaDir string
	// HealthCheck reports whether the backing services are reachable.
	HealthCheck func(ctx context.Context) error
}

// SetupRouter configures the application routes
func SetupRouter(opts Options, h Handlers) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = true

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.ErrorHandler(),
		middleware.CORS(opts.AllowedOrigins),
	)

	router.NoRoute(api.NotFound)
	router.NoMethod(api.MethodNotAllowed)

	router.GET("/health", healthHandler(opts.HealthCheck))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.MediaDir != "" && opts.MediaURL != "" {
		router.Static(opts.MediaURL, opts.MediaDir)
	}

	apiGroup := router.Group("/api")
	h.Auth.RegisterRoutes(apiGroup)
	h.Users.RegisterRoutes(apiGroup)
	h.Recipes.RegisterRoutes(apiGroup)
	h.Catalog.RegisterRoutes(apiGroup)

	return router
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
