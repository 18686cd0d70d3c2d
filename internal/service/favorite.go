package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// FavoriteService toggles recipes in a user's favorites.
type FavoriteService struct {
	presenter
	recipes  repository.RecipeRepository
	enforcer *authz.Enforcer
}

func NewFavoriteService(recipes repository.RecipeRepository, relations repository.RelationRepository, images *ImageService, enforcer *authz.Enforcer) *FavoriteService {
	return &FavoriteService{
		presenter: presenter{relations: relations, images: images},
		recipes:   recipes,
		enforcer:  enforcer,
	}
}

func (s *FavoriteService) AddFavorite(ctx context.Context, actor authz.Actor, recipeID uint) (view *types.RecipeShortView, err error) {
	defer func() { metrics.RelationToggles.WithLabelValues("favorite", "add", metrics.Outcome(err)).Inc() }()

	if err = s.enforcer.Authorize(actor, 0, authz.ObjectFavorite, authz.ActionWrite); err != nil {
		return nil, err
	}
	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err = s.relations.AddFavorite(ctx, actor.UserID, recipeID); err != nil {
		return nil, err
	}
	short := s.shortView(recipe)
	return &short, nil
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, actor authz.Actor, recipeID uint) (err error) {
	defer func() { metrics.RelationToggles.WithLabelValues("favorite", "remove", metrics.Outcome(err)).Inc() }()

	if err = s.enforcer.Authorize(actor, 0, authz.ObjectFavorite, authz.ActionWrite); err != nil {
		return err
	}
	if _, err = s.recipes.GetByID(ctx, recipeID); err != nil {
		return err
	}
	return s.relations.RemoveFavorite(ctx, actor.UserID, recipeID)
}
