package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// FollowService manages subscriptions to authors.
type FollowService struct {
	presenter
	users    repository.UserRepository
	recipes  repository.RecipeRepository
	enforcer *authz.Enforcer
}

func NewFollowService(users repository.UserRepository, recipes repository.RecipeRepository, relations repository.RelationRepository, images *ImageService, enforcer *authz.Enforcer) *FollowService {
	return &FollowService{
		presenter: presenter{relations: relations, images: images},
		users:     users,
		recipes:   recipes,
		enforcer:  enforcer,
	}
}

// Subscribe makes actor follow authorID. Following oneself is refused
// before anything else is looked at.
func (s *FollowService) Subscribe(ctx context.Context, actor authz.Actor, authorID uint, recipesLimit int) (view *types.SubscriptionView, err error) {
	defer func() { metrics.RelationToggles.WithLabelValues("subscription", "add", metrics.Outcome(err)).Inc() }()

	if err = s.enforcer.Authorize(actor, 0, authz.ObjectSubscription, authz.ActionWrite); err != nil {
		return nil, err
	}
	if actor.UserID == authorID {
		return nil, models.NewValidationError("you cannot subscribe to yourself")
	}
	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err = s.relations.Follow(ctx, actor.UserID, authorID); err != nil {
		return nil, err
	}

	views, err := s.subscriptionViews(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *FollowService) Unsubscribe(ctx context.Context, actor authz.Actor, authorID uint) (err error) {
	defer func() { metrics.RelationToggles.WithLabelValues("subscription", "remove", metrics.Outcome(err)).Inc() }()

	if err = s.enforcer.Authorize(actor, 0, authz.ObjectSubscription, authz.ActionWrite); err != nil {
		return err
	}
	if _, err = s.users.GetByID(ctx, authorID); err != nil {
		return err
	}
	return s.relations.Unfollow(ctx, actor.UserID, authorID)
}

// ListSubscriptions pages through the followed authors in follow order.
func (s *FollowService) ListSubscriptions(ctx context.Context, actor authz.Actor, offset, limit, recipesLimit int) ([]types.SubscriptionView, int64, error) {
	if err := s.enforcer.Authorize(actor, 0, authz.ObjectSubscription, authz.ActionWrite); err != nil {
		return nil, 0, err
	}
	authors, total, err := s.relations.ListFollowedAuthors(ctx, actor.UserID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.subscriptionViews(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// subscriptionViews builds views of authors the caller follows. A
// recipesLimit of zero yields empty recipe previews without a query.
func (s *FollowService) subscriptionViews(ctx context.Context, authors []models.User, recipesLimit int) ([]types.SubscriptionView, error) {
	ids := make([]uint, len(authors))
	for i, a := range authors {
		ids[i] = a.ID
	}
	counts, err := s.recipes.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]types.SubscriptionView, len(authors))
	for i := range authors {
		recipes := []types.RecipeShortView{}
		if recipesLimit > 0 {
			authored, err := s.recipes.ListByAuthor(ctx, authors[i].ID, recipesLimit)
			if err != nil {
				return nil, err
			}
			recipes = s.shortViews(authored)
		}
		views[i] = types.SubscriptionView{
			UserView:     userView(&authors[i], true),
			Recipes:      recipes,
			RecipesCount: counts[authors[i].ID],
		}
	}
	return views, nil
}
