package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/mocks"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func setupMockRouter(recipes *mocks.MockRecipeService, cart *mocks.MockCartService, auth *mocks.MockAuthService) *gin.Engine {
	cfg := config.Default()
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	group := router.Group("/api")
	NewAuthHandler(auth).RegisterRoutes(group)
	NewRecipeHandler(recipes, nil, cart, auth, nil, cfg.Pagination, cfg.ShoppingList).RegisterRoutes(group)
	return router
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestInternalErrorsAreHidden(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	recipes.On("GetRecipe", mock.Anything, authz.Actor{}, uint(7)).
		Return(nil, models.NewInternalError(errors.New("pq: connection refused")))

	w := serve(setupMockRouter(recipes, new(mocks.MockCartService), new(mocks.MockAuthService)), http.MethodGet, "/api/recipes/7/", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "internal server error")
	recipes.AssertExpectations(t)
}

func TestListRecipesPassesFilter(t *testing.T) {
	recipes := new(mocks.MockRecipeService)
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 3}, nil)

	expected := service.RecipeListFilter{Tags: []string{"lunch", "dinner"}, AuthorID: 5, IsInShoppingCart: true}
	recipes.On("ListRecipes", mock.Anything, authz.Actor{UserID: 3}, expected, 6, 6).
		Return([]types.RecipeView{{ID: 1}}, int64(7), nil)

	w := serve(setupMockRouter(recipes, new(mocks.MockCartService), auth), http.MethodGet,
		"/api/recipes/?page=2&tags=lunch&tags=dinner&author=5&is_in_shopping_cart=true", "good")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page types.Page[types.RecipeView]
	decode(t, w, &page)
	assert.Equal(t, int64(7), page.Count)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	recipes.AssertExpectations(t)
}

func TestDownloadShoppingCartUsesConfiguredFilename(t *testing.T) {
	cart := new(mocks.MockCartService)
	auth := new(mocks.MockAuthService)
	auth.On("ValidateToken", mock.Anything, "good").Return(&types.TokenClaims{UserID: 3}, nil)
	cart.On("DownloadShoppingList", mock.Anything, authz.Actor{UserID: 3}).Return("\nFoodGram, 2021", nil)

	w := serve(setupMockRouter(new(mocks.MockRecipeService), cart, auth), http.MethodGet, "/api/recipes/download_shopping_cart/", "good")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\nFoodGram, 2021", w.Body.String())
	assert.Equal(t, `attachment; filename="wishlist.txt"`, w.Header().Get("Content-Disposition"))
}

func TestLogoutRevokesPresentedToken(t *testing.T) {
	auth := new(mocks.MockAuthService)
	claims := &types.TokenClaims{UserID: 3}
	auth.On("ValidateToken", mock.Anything, "good").Return(claims, nil)
	auth.On("Logout", mock.Anything, claims).Return(nil)

	w := serve(setupMockRouter(new(mocks.MockRecipeService), new(mocks.MockCartService), auth), http.MethodPost, "/api/auth/token/logout/", "good")
	assert.Equal(t, http.StatusNoContent, w.Code)
	auth.AssertExpectations(t)
}
