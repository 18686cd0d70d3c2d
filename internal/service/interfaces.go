package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for account and token operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.UserView, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.AuthTokenResponse, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error
	DeleteAccount(ctx context.Context, userID uint, req *types.DeleteAccountRequest) error
}

// IUserService defines the interface for reading user profiles
type IUserService interface {
	Me(ctx context.Context, actor authz.Actor) (*types.UserView, error)
	GetUser(ctx context.Context, actor authz.Actor, id uint) (*types.UserView, error)
	ListUsers(ctx context.Context, actor authz.Actor, offset, limit int) ([]types.UserView, int64, error)
}

// ICatalogService defines the interface for tags and ingredients
type ICatalogService interface {
	ListTags(ctx context.Context) ([]types.TagView, error)
	GetTag(ctx context.Context, id uint) (*types.TagView, error)
	ListIngredients(ctx context.Context, name string) ([]types.IngredientView, error)
	GetIngredient(ctx context.Context, id uint) (*types.IngredientView, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, actor authz.Actor, filter RecipeListFilter, offset, limit int) ([]types.RecipeView, int64, error)
	GetRecipe(ctx context.Context, actor authz.Actor, id uint) (*types.RecipeView, error)
	CreateRecipe(ctx context.Context, actor authz.Actor, req *types.RecipeRequest) (*types.RecipeView, error)
	UpdateRecipe(ctx context.Context, actor authz.Actor, id uint, req *types.RecipeRequest) (*types.RecipeView, error)
	DeleteRecipe(ctx context.Context, actor authz.Actor, id uint) error
}

// IFavoriteService defines the interface for the favorite toggle
type IFavoriteService interface {
	AddFavorite(ctx context.Context, actor authz.Actor, recipeID uint) (*types.RecipeShortView, error)
	RemoveFavorite(ctx context.Context, actor authz.Actor, recipeID uint) error
}

// ICartService defines the interface for the shopping cart
type ICartService interface {
	AddToCart(ctx context.Context, actor authz.Actor, recipeID uint) (*types.RecipeView, error)
	RemoveFromCart(ctx context.Context, actor authz.Actor, recipeID uint) error
	DownloadShoppingList(ctx context.Context, actor authz.Actor) (string, error)
}

// IFollowService defines the interface for subscriptions
type IFollowService interface {
	Subscribe(ctx context.Context, actor authz.Actor, authorID uint, recipesLimit int) (*types.SubscriptionView, error)
	Unsubscribe(ctx context.Context, actor authz.Actor, authorID uint) error
	ListSubscriptions(ctx context.Context, actor authz.Actor, offset, limit, recipesLimit int) ([]types.SubscriptionView, int64, error)
}

var (
	_ IAuthService     = (*AuthService)(nil)
	_ IUserService     = (*UserService)(nil)
	_ ICatalogService  = (*CatalogService)(nil)
	_ IRecipeService   = (*RecipeService)(nil)
	_ IFavoriteService = (*FavoriteService)(nil)
	_ ICartService     = (*CartService)(nil)
	_ IFollowService   = (*FollowService)(nil)
)
