package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

const tagsCacheKey = "catalog:tags"

// CatalogService serves tags and ingredients. The tag list is cached when
// a store is given; cache failures fall back to the database.
type CatalogService struct {
	catalog repository.CatalogRepository
	cache   cache.Store
	tagsTTL time.Duration
}

func NewCatalogService(catalog repository.CatalogRepository, store cache.Store, tagsTTL time.Duration) *CatalogService {
	return &CatalogService{catalog: catalog, cache: store, tagsTTL: tagsTTL}
}

func (s *CatalogService) ListTags(ctx context.Context) ([]types.TagView, error) {
	if views, ok := s.cachedTags(ctx); ok {
		return views, nil
	}

	tags, err := s.catalog.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]types.TagView, len(tags))
	for i := range tags {
		views[i] = tagView(&tags[i])
	}

	if s.cache != nil && s.tagsTTL > 0 {
		if data, err := json.Marshal(views); err == nil {
			if err := s.cache.Set(ctx, tagsCacheKey, data, s.tagsTTL); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("failed to cache tags")
			}
		}
	}
	return views, nil
}

func (s *CatalogService) cachedTags(ctx context.Context) ([]types.TagView, bool) {
	if s.cache == nil || s.tagsTTL <= 0 {
		return nil, false
	}
	data, found, err := s.cache.Get(ctx, tagsCacheKey)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("tag cache unavailable")
		return nil, false
	}
	if !found {
		return nil, false
	}
	var views []types.TagView
	if err := json.Unmarshal(data, &views); err != nil {
		return nil, false
	}
	return views, true
}

// InvalidateTags drops the cached tag list. Call it after tags change
// outside the API, such as a fixture load.
func (s *CatalogService) InvalidateTags(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, tagsCacheKey)
}

func (s *CatalogService) GetTag(ctx context.Context, id uint) (*types.TagView, error) {
	tag, err := s.catalog.GetTag(ctx, id)
	if err != nil {
		return nil, err
	}
	view := tagView(tag)
	return &view, nil
}

func (s *CatalogService) ListIngredients(ctx context.Context, name string) ([]types.IngredientView, error) {
	ingredients, err := s.catalog.ListIngredients(ctx, name)
	if err != nil {
		return nil, err
	}
	views := make([]types.IngredientView, len(ingredients))
	for i := range ingredients {
		views[i] = ingredientView(&ingredients[i])
	}
	return views, nil
}

func (s *CatalogService) GetIngredient(ctx context.Context, id uint) (*types.IngredientView, error) {
	ingredient, err := s.catalog.GetIngredient(ctx, id)
	if err != nil {
		return nil, err
	}
	view := ingredientView(ingredient)
	return &view, nil
}
