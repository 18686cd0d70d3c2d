package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserService serves public profiles with the caller's subscription flag.
type UserService struct {
	users     repository.UserRepository
	relations repository.RelationRepository
}

func NewUserService(users repository.UserRepository, relations repository.RelationRepository) *UserService {
	return &UserService{users: users, relations: relations}
}

func (s *UserService) Me(ctx context.Context, actor authz.Actor) (*types.UserView, error) {
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	view := userView(user, false)
	return &view, nil
}

func (s *UserService) GetUser(ctx context.Context, actor authz.Actor, id uint) (*types.UserView, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followed, err := s.relations.FollowedAmong(ctx, actor.UserID, []uint{id})
	if err != nil {
		return nil, err
	}
	view := userView(user, followed[id])
	return &view, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor authz.Actor, offset, limit int) ([]types.UserView, int64, error) {
	users, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	followed, err := s.relations.FollowedAmong(ctx, actor.UserID, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]types.UserView, len(users))
	for i := range users {
		views[i] = userView(&users[i], followed[users[i].ID])
	}
	return views, total, nil
}
