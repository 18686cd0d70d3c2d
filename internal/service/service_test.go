package service_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

type testEnv struct {
	db        *gorm.DB
	store     *storage.LocalStore
	cache     *cache.MemoryStore
	images    *service.ImageService
	auth      *service.AuthService
	users     *service.UserService
	catalog   *service.CatalogService
	recipes   *service.RecipeService
	favorites *service.FavoriteService
	cart      *service.CartService
	follows   *service.FollowService
}

func setupServices(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)

	store, err := storage.NewLocalStore(t.TempDir(), "http://testserver/media/")
	require.NoError(t, err)
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)
	memory := cache.NewMemoryStore()

	userRepo := repository.NewUserRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	relationRepo := repository.NewRelationRepository(db)

	images := service.NewImageService(store, 1<<20)
	authCfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "foodgram"}

	return &testEnv{
		db:        db,
		store:     store,
		cache:     memory,
		images:    images,
		auth:      service.NewAuthService(userRepo, recipeRepo, images, memory, authCfg).WithBcryptCost(bcrypt.MinCost),
		users:     service.NewUserService(userRepo, relationRepo),
		catalog:   service.NewCatalogService(catalogRepo, memory, time.Minute),
		recipes:   service.NewRecipeService(recipeRepo, catalogRepo, relationRepo, images, enforcer),
		favorites: service.NewFavoriteService(recipeRepo, relationRepo, images, enforcer),
		cart:      service.NewCartService(recipeRepo, relationRepo, images, enforcer, "FoodGram, 2021"),
		follows:   service.NewFollowService(userRepo, recipeRepo, relationRepo, images, enforcer),
	}
}

func actorOf(u *models.User) authz.Actor {
	return authz.Actor{UserID: u.ID, IsStaff: u.IsStaff}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func pngDataURI(t *testing.T) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t))
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, models.KindOf(err), err.Error())
}

var bg = context.Background()
