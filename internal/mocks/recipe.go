package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) ListRecipes(ctx context.Context, actor authz.Actor, filter service.RecipeListFilter, offset, limit int) ([]types.RecipeView, int64, error) {
	args := m.Called(ctx, actor, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]types.RecipeView), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, actor authz.Actor, id uint) (*types.RecipeView, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, actor authz.Actor, req *types.RecipeRequest) (*types.RecipeView, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, actor authz.Actor, id uint, req *types.RecipeRequest) (*types.RecipeView, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, actor authz.Actor, id uint) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockCartService is a mock implementation of the CartService interface
type MockCartService struct {
	mock.Mock
}

var _ service.ICartService = (*MockCartService)(nil)

func (m *MockCartService) AddToCart(ctx context.Context, actor authz.Actor, recipeID uint) (*types.RecipeView, error) {
	args := m.Called(ctx, actor, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeView), args.Error(1)
}

func (m *MockCartService) RemoveFromCart(ctx context.Context, actor authz.Actor, recipeID uint) error {
	args := m.Called(ctx, actor, recipeID)
	return args.Error(0)
}

func (m *MockCartService) DownloadShoppingList(ctx context.Context, actor authz.Actor) (string, error) {
	args := m.Called(ctx, actor)
	return args.String(0), args.Error(1)
}
