package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeHandler serves recipes and the favorite and shopping cart actions.
type RecipeHandler struct {
	recipeService   service.IRecipeService
	favoriteService service.IFavoriteService
	cartService     service.ICartService
	validator       middleware.TokenValidator
	limiter         middleware.Limiter
	pagination      config.PaginationConfig
	filename        string
}

func NewRecipeHandler(
	recipeService service.IRecipeService,
	favoriteService service.IFavoriteService,
	cartService service.ICartService,
	validator middleware.TokenValidator,
	limiter middleware.Limiter,
	pagination config.PaginationConfig,
	shoppingList config.ShoppingListConfig,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		favoriteService: favoriteService,
		cartService:     cartService,
		validator:       validator,
		limiter:         limiter,
		pagination:      pagination,
		filename:        shoppingList.Filename,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.validator)
	optional := middleware.OptionalAuthMiddleware(h.validator)

	create := []gin.HandlerFunc{required}
	if h.limiter != nil {
		create = append(create, middleware.RateLimitMiddleware(h.limiter))
	}
	create = append(create, h.CreateRecipe)

	recipes := router.Group("/recipes")
	{
		recipes.GET("/", optional, h.ListRecipes)
		recipes.POST("/", create...)
		recipes.GET("/download_shopping_cart/", required, h.DownloadShoppingCart)
		recipes.GET("/:id/", optional, h.GetRecipe)
		recipes.PUT("/:id/", required, h.UpdateRecipe)
		recipes.PATCH("/:id/", required, h.UpdateRecipe)
		recipes.DELETE("/:id/", required, h.DeleteRecipe)

		recipes.GET("/:id/favorite/", required, h.AddFavorite)
		recipes.POST("/:id/favorite/", required, h.AddFavorite)
		recipes.DELETE("/:id/favorite/", required, h.RemoveFavorite)

		recipes.GET("/:id/shopping_cart/", required, h.AddToCart)
		recipes.POST("/:id/shopping_cart/", required, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart/", required, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	p, err := parsePage(c, h.pagination, h.pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	authorID, err := queryUint(c, "author")
	if err != nil {
		respondError(c, err)
		return
	}
	filter := service.RecipeListFilter{
		Tags:             c.QueryArray("tags"),
		AuthorID:         authorID,
		IsFavorited:      queryBool(c, "is_favorited"),
		IsInShoppingCart: queryBool(c, "is_in_shopping_cart"),
	}

	views, total, err := h.recipeService.ListRecipes(c.Request.Context(), middleware.ActorFromContext(c), filter, p.Offset(), p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := newPage(c, p, views, total)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.recipeService.GetRecipe(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.recipeService.CreateRecipe(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateRecipe serves both PUT and PATCH; the full payload is required either way.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req types.RecipeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.recipeService.UpdateRecipe(c.Request.Context(), middleware.ActorFromContext(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.favoriteService.AddFavorite(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.favoriteService.RemoveFavorite(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.cartService.AddToCart(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.cartService.RemoveFromCart(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	text, err := h.cartService.DownloadShoppingList(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
