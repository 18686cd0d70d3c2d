package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves accounts, profiles and subscriptions.
type UserHandler struct {
	authService   service.IAuthService
	userService   service.IUserService
	followService service.IFollowService
	pagination    config.PaginationConfig
}

func NewUserHandler(authService service.IAuthService, userService service.IUserService, followService service.IFollowService, pagination config.PaginationConfig) *UserHandler {
	return &UserHandler{
		authService:   authService,
		userService:   userService,
		followService: followService,
		pagination:    pagination,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	required := middleware.AuthMiddleware(h.authService)
	optional := middleware.OptionalAuthMiddleware(h.authService)

	users := router.Group("/users")
	{
		users.GET("/", optional, h.ListUsers)
		users.POST("/", h.Register)
		users.GET("/me/", required, h.Me)
		users.DELETE("/me/", required, h.DeleteMe)
		users.POST("/set_password/", required, h.SetPassword)
		users.GET("/subscriptions/", required, h.ListSubscriptions)
		users.GET("/:id/", optional, h.GetUser)
		users.GET("/:id/subscribe/", required, h.Subscribe)
		users.POST("/:id/subscribe/", required, h.Subscribe)
		users.DELETE("/:id/subscribe/", required, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	p, err := parsePage(c, h.pagination, h.pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	views, total, err := h.userService.ListUsers(c.Request.Context(), middleware.ActorFromContext(c), p.Offset(), p.Limit)
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

func (h *UserHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.userService.GetUser(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) Me(c *gin.Context) {
	view, err := h.userService.Me(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	var req types.DeleteAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)
	if err := h.authService.DeleteAccount(c.Request.Context(), actor.UserID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req types.SetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	actor := middleware.ActorFromContext(c)
	if err := h.authService.SetPassword(c.Request.Context(), actor.UserID, &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	recipesLimit, err := queryNonNegative(c, "recipes_limit", h.pagination.RecipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.followService.Subscribe(c.Request.Context(), middleware.ActorFromContext(c), id, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.followService.Unsubscribe(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ListSubscriptions(c *gin.Context) {
	p, err := parsePage(c, h.pagination, h.pagination.SubscriptionPageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	recipesLimit, err := queryNonNegative(c, "recipes_limit", h.pagination.RecipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	views, total, err := h.followService.ListSubscriptions(c.Request.Context(), middleware.ActorFromContext(c), p.Offset(), p.Limit, recipesLimit)
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
