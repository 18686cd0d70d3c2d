package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// CartService toggles recipes in the shopping cart and renders the list.
type CartService struct {
	presenter
	recipes   repository.RecipeRepository
	enforcer  *authz.Enforcer
	signature string
}

func NewCartService(recipes repository.RecipeRepository, relations repository.RelationRepository, images *ImageService, enforcer *authz.Enforcer, signature string) *CartService {
	return &CartService{
		presenter: presenter{relations: relations, images: images},
		recipes:   recipes,
		enforcer:  enforcer,
		signature: signature,
	}
}

// AddToCart answers with the full recipe, flags included.
func (s *CartService) AddToCart(ctx context.Context, actor authz.Actor, recipeID uint) (view *types.RecipeView, err error) {
	defer func() { metrics.RelationToggles.WithLabelValues("shopping_cart", "add", metrics.Outcome(err)).Inc() }()

	if err = s.enforcer.Authorize(actor, 0, authz.ObjectCart, authz.ActionWrite); err != nil {
		return nil, err
	}
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err = s.relations.AddToCart(ctx, actor.UserID, recipeID); err != nil {
		return nil, err
	}
	return s.recipeView(ctx, actor.UserID, recipe)
}

func (s *CartService) RemoveFromCart(ctx context.Context, actor authz.Actor, recipeID uint) (err error) {
	defer func() { metrics.RelationToggles.WithLabelValues("shopping_cart", "remove", metrics.Outcome(err)).Inc() }()

	if err = s.enforcer.Authorize(actor, 0, authz.ObjectCart, authz.ActionWrite); err != nil {
		return err
	}
	if _, err = s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return s.relations.RemoveFromCart(ctx, actor.UserID, recipeID)
}

// DownloadShoppingList renders the aggregated ingredients of the cart.
func (s *CartService) DownloadShoppingList(ctx context.Context, actor authz.Actor) (string, error) {
	if err := s.enforcer.Authorize(actor, 0, authz.ObjectCart, authz.ActionWrite); err != nil {
		return "", err
	}
	rows, err := s.relations.CartIngredients(ctx, actor.UserID)
	if err != nil {
		return "", err
	}
	items := AggregateShoppingList(rows)

	metrics.ShoppingListDownloads.Inc()
	logging.Ctx(ctx).Debug().Uint("user_id", actor.UserID).Int("items", len(items)).Msg("shopping list rendered")
	return RenderShoppingList(items, s.signature), nil
}
