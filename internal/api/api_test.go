package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
}

// setupTestServer wires the handlers over an in-memory database. limiter may be nil.
func setupTestServer(t *testing.T, limiter middleware.Limiter) *testServer {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	cfg := config.Default()

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
	authService := service.NewAuthService(userRepo, recipeRepo, images, memory,
		config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "foodgram"}).
		WithBcryptCost(bcrypt.MinCost)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.ErrorHandler())
	router.NoRoute(NotFound)
	router.NoMethod(MethodNotAllowed)

	group := router.Group("/api")
	NewAuthHandler(authService).RegisterRoutes(group)
	NewUserHandler(authService,
		service.NewUserService(userRepo, relationRepo),
		service.NewFollowService(userRepo, recipeRepo, relationRepo, images, enforcer),
		cfg.Pagination,
	).RegisterRoutes(group)
	NewRecipeHandler(
		service.NewRecipeService(recipeRepo, catalogRepo, relationRepo, images, enforcer),
		service.NewFavoriteService(recipeRepo, relationRepo, images, enforcer),
		service.NewCartService(recipeRepo, relationRepo, images, enforcer, cfg.ShoppingList.Signature),
		authService,
		limiter,
		cfg.Pagination,
		cfg.ShoppingList,
	).RegisterRoutes(group)
	NewCatalogHandler(service.NewCatalogService(catalogRepo, memory, time.Minute)).RegisterRoutes(group)

	return &testServer{db: db, router: router, auth: authService}
}

// do performs a request; token may be empty for anonymous calls.
func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login returns a token for a user created by testhelpers.CreateUser.
func (s *testServer) login(t *testing.T, user *models.User) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/auth/token/login/", types.LoginRequest{
		Email:    user.Email,
		Password: testhelpers.TestPassword,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp types.AuthTokenResponse
	decode(t, w, &resp)
	require.NotEmpty(t, resp.AuthToken)
	return resp.AuthToken
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
