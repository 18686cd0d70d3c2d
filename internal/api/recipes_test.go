package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type recipeFixture struct {
	*testServer
	author      *models.User
	other       *models.User
	authorToken string
	otherToken  string
	sugar       *models.Ingredient
	milk        *models.Ingredient
	breakfast   *models.Tag
	dinner      *models.Tag
}

func setupRecipeFixture(t *testing.T, limiter middleware.Limiter) *recipeFixture {
	s := setupTestServer(t, limiter)
	f := &recipeFixture{
		testServer: s,
		author:     testhelpers.CreateUser(t, s.db, "author"),
		other:      testhelpers.CreateUser(t, s.db, "other"),
		sugar:      testhelpers.CreateIngredient(t, s.db, "Sugar", "g"),
		milk:       testhelpers.CreateIngredient(t, s.db, "Milk", "ml"),
		breakfast:  testhelpers.CreateTag(t, s.db, "breakfast", "#E26C2D"),
		dinner:     testhelpers.CreateTag(t, s.db, "dinner", "#49B64E"),
	}
	f.authorToken = s.login(t, f.author)
	f.otherToken = s.login(t, f.other)
	return f
}

func (f *recipeFixture) payload(t *testing.T) map[string]interface{} {
	return map[string]interface{}{
		"ingredients": []map[string]interface{}{
			{"id": f.sugar.ID, "amount": 10},
			{"id": f.milk.ID, "amount": 200},
		},
		"tags":         []uint{f.breakfast.ID},
		"image":        pngDataURI(t),
		"name":         "Pancakes",
		"text":         "Whisk and fry",
		"cooking_time": 15,
	}
}

func TestCreateUpdateDeleteRecipe(t *testing.T) {
	f := setupRecipeFixture(t, nil)

	w := f.do(http.MethodPost, "/api/recipes/", f.payload(t), f.authorToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created types.RecipeView
	decode(t, w, &created)
	assert.Equal(t, "Pancakes", created.Name)
	assert.Equal(t, f.author.ID, created.Author.ID)
	assert.True(t, strings.HasPrefix(created.Image, "http://testserver/media/recipes/"))
	require.Len(t, created.Ingredients, 2)
	path := "/api/recipes/" + itoa(created.ID) + "/"

	update := f.payload(t)
	delete(update, "image")
	update["name"] = "Crepes"
	update["tags"] = []uint{f.dinner.ID}

	w = f.do(http.MethodPatch, path, update, f.otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodPut, path, update, f.authorToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated types.RecipeView
	decode(t, w, &updated)
	assert.Equal(t, "Crepes", updated.Name)
	assert.Equal(t, created.Image, updated.Image)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "dinner", updated.Tags[0].Slug)

	w = f.do(http.MethodDelete, path, nil, f.otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(http.MethodDelete, path, nil, f.authorToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecipeValidation(t *testing.T) {
	f := setupRecipeFixture(t, nil)

	w := f.do(http.MethodPost, "/api/recipes/", f.payload(t), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	missingImage := f.payload(t)
	delete(missingImage, "image")
	w = f.do(http.MethodPost, "/api/recipes/", missingImage, f.authorToken)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp types.ErrorResponse
	decode(t, w, &resp)
	assert.Contains(t, resp.Errors, "image")

	unknown := f.payload(t)
	unknown["ingredients"] = []map[string]interface{}{{"id": 9999, "amount": 1}}
	w = f.do(http.MethodPost, "/api/recipes/", unknown, f.authorToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/recipes/", "not an object", f.authorToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRecipeCookingTimeBounds(t *testing.T) {
	f := setupRecipeFixture(t, nil)

	w := f.do(http.MethodPost, "/api/recipes/", f.payload(t), f.authorToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created types.RecipeView
	decode(t, w, &created)
	path := "/api/recipes/" + itoa(created.ID) + "/"

	for _, minutes := range []int{0, 1441} {
		update := f.payload(t)
		update["cooking_time"] = minutes
		w = f.do(http.MethodPut, path, update, f.authorToken)
		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		var resp types.ErrorResponse
		decode(t, w, &resp)
		assert.Contains(t, resp.Errors, "cooking_time")
	}

	w = f.do(http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var current types.RecipeView
	decode(t, w, &current)
	assert.Equal(t, 15, current.CookingTime)
}

func TestCreateRecipeRateLimited(t *testing.T) {
	limiter := middleware.NewLimiter(nil, middleware.RateLimitConfig{Window: time.Hour, Limit: 1, KeyPrefix: "test"})
	f := setupRecipeFixture(t, limiter)

	w := f.do(http.MethodPost, "/api/recipes/", f.payload(t), f.authorToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodPost, "/api/recipes/", f.payload(t), f.authorToken)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestListRecipesPaginationAndFilters(t *testing.T) {
	f := setupRecipeFixture(t, nil)
	var last *models.Recipe
	for i := 0; i < 7; i++ {
		last = testhelpers.CreateRecipe(t, f.db, f.author, "recipe"+itoa(uint(i)), nil, f.breakfast)
	}
	testhelpers.CreateRecipe(t, f.db, f.other, "soup", nil, f.dinner)

	w := f.do(http.MethodGet, "/api/recipes/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.RecipeView]
	decode(t, w, &page)
	assert.Equal(t, int64(8), page.Count)
	assert.Len(t, page.Results, 6)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "page=2")
	assert.Nil(t, page.Previous)
	assert.Equal(t, "soup", page.Results[0].Name)

	w = f.do(http.MethodGet, "/api/recipes/?page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = types.Page[types.RecipeView]{}
	decode(t, w, &page)
	assert.Len(t, page.Results, 2)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.NotContains(t, *page.Previous, "page=")

	w = f.do(http.MethodGet, "/api/recipes/?page=3", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodGet, "/api/recipes/?tags=dinner&limit=10", nil, "")
	page = types.Page[types.RecipeView]{}
	decode(t, w, &page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "soup", page.Results[0].Name)

	w = f.do(http.MethodGet, "/api/recipes/?tags=dinner&tags=breakfast&limit=10", nil, "")
	page = types.Page[types.RecipeView]{}
	decode(t, w, &page)
	assert.Equal(t, int64(8), page.Count)

	w = f.do(http.MethodGet, "/api/recipes/?author="+itoa(f.other.ID), nil, "")
	page = types.Page[types.RecipeView]{}
	decode(t, w, &page)
	assert.Equal(t, int64(1), page.Count)

	w = f.do(http.MethodGet, "/api/recipes/?author=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodPost, "/api/recipes/"+itoa(last.ID)+"/favorite/", nil, f.otherToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(http.MethodGet, "/api/recipes/?is_favorited=1", nil, f.otherToken)
	page = types.Page[types.RecipeView]{}
	decode(t, w, &page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, last.ID, page.Results[0].ID)
	assert.True(t, page.Results[0].IsFavorited)
}

func TestFavoriteEndpoints(t *testing.T) {
	f := setupRecipeFixture(t, nil)
	recipe := testhelpers.CreateRecipe(t, f.db, f.author, "pie", nil)
	path := "/api/recipes/" + itoa(recipe.ID) + "/favorite/"

	w := f.do(http.MethodPost, path, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, path, nil, f.otherToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var short types.RecipeShortView
	decode(t, w, &short)
	assert.Equal(t, recipe.ID, short.ID)
	assert.Equal(t, "pie", short.Name)

	w = f.do(http.MethodGet, path, nil, f.otherToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodDelete, path, nil, f.otherToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodDelete, path, nil, f.otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/api/recipes/9999/favorite/", nil, f.otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShoppingCartDownload(t *testing.T) {
	f := setupRecipeFixture(t, nil)
	first := testhelpers.CreateRecipe(t, f.db, f.author, "pancakes", []testhelpers.RecipeIngredient{
		{Ingredient: f.sugar, Amount: 10},
		{Ingredient: f.milk, Amount: 200},
	})
	second := testhelpers.CreateRecipe(t, f.db, f.author, "syrup", []testhelpers.RecipeIngredient{
		{Ingredient: f.sugar, Amount: 5},
	})

	for _, r := range []*models.Recipe{first, second} {
		w := f.do(http.MethodPost, "/api/recipes/"+itoa(r.ID)+"/shopping_cart/", nil, f.otherToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := f.do(http.MethodGet, "/api/recipes/download_shopping_cart/", nil, f.otherToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="wishlist.txt"`, w.Header().Get("Content-Disposition"))
	body := w.Body.String()
	assert.Contains(t, body, "Milk - 200 ml")
	assert.Contains(t, body, "Sugar - 15 g")
	assert.True(t, strings.HasSuffix(strings.TrimRight(body, "\n"), "FoodGram, 2021"))

	w = f.do(http.MethodDelete, "/api/recipes/"+itoa(second.ID)+"/shopping_cart/", nil, f.otherToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(http.MethodGet, "/api/recipes/download_shopping_cart/", nil, f.otherToken)
	assert.Contains(t, w.Body.String(), "Sugar - 10 g")
}

func TestUnknownRoutesAndMethods(t *testing.T) {
	s := setupTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/nothing-here/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/recipes/abc/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/tags/", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
