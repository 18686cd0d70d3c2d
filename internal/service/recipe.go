package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pageza/foodgram/backend/internal/authz"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// RecipeListFilter holds the query filters of a recipe listing.
// IsFavorited and IsInShoppingCart only apply to an authenticated actor.
type RecipeListFilter struct {
	Tags             []string
	AuthorID         uint
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService handles recipe operations
type RecipeService struct {
	presenter
	recipes  repository.RecipeRepository
	catalog  repository.CatalogRepository
	enforcer *authz.Enforcer
	now      func() time.Time
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(
	recipes repository.RecipeRepository,
	catalog repository.CatalogRepository,
	relations repository.RelationRepository,
	images *ImageService,
	enforcer *authz.Enforcer,
) *RecipeService {
	return &RecipeService{
		presenter: presenter{relations: relations, images: images},
		recipes:   recipes,
		catalog:   catalog,
		enforcer:  enforcer,
		now:       time.Now,
	}
}

func (s *RecipeService) ListRecipes(ctx context.Context, actor authz.Actor, filter RecipeListFilter, offset, limit int) ([]types.RecipeView, int64, error) {
	repoFilter := repository.RecipeFilter{
		TagSlugs: filter.Tags,
		AuthorID: filter.AuthorID,
	}
	if actor.Authenticated() {
		if filter.IsFavorited {
			repoFilter.FavoritedBy = actor.UserID
		}
		if filter.IsInShoppingCart {
			repoFilter.InCartOf = actor.UserID
		}
	}

	recipes, total, err := s.recipes.List(ctx, repoFilter, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.recipeViews(ctx, actor.UserID, recipes)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *RecipeService) GetRecipe(ctx context.Context, actor authz.Actor, id uint) (*types.RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.recipeView(ctx, actor.UserID, recipe)
}

func (s *RecipeService) CreateRecipe(ctx context.Context, actor authz.Actor, req *types.RecipeRequest) (*types.RecipeView, error) {
	if err := s.enforcer.Authorize(actor, 0, authz.ObjectRecipe, authz.ActionCreate); err != nil {
		return nil, err
	}
	tags, rows, err := s.resolve(ctx, req, true)
	if err != nil {
		return nil, err
	}

	key, err := s.images.Save(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    actor.UserID,
		Name:        req.Name,
		Image:       key,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		PubDate:     s.now().UTC(),
	}
	if err := s.recipes.Create(ctx, recipe, tags, rows); err != nil {
		s.images.Remove(ctx, key)
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("recipe_id", recipe.ID).Uint("author_id", actor.UserID).Msg("recipe created")
	return s.GetRecipe(ctx, actor, recipe.ID)
}

// UpdateRecipe fully replaces fields, tags and ingredients. An omitted
// image keeps the stored one.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actor authz.Actor, id uint, req *types.RecipeRequest) (*types.RecipeView, error) {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enforcer.Authorize(actor, recipe.AuthorID, authz.ObjectRecipe, authz.ActionUpdate); err != nil {
		return nil, err
	}
	tags, rows, err := s.resolve(ctx, req, false)
	if err != nil {
		return nil, err
	}

	oldImage, newImage := recipe.Image, ""
	if req.Image != "" {
		if newImage, err = s.images.Save(ctx, req.Image); err != nil {
			return nil, err
		}
		recipe.Image = newImage
	}
	recipe.Name = req.Name
	recipe.Text = req.Text
	recipe.CookingTime = req.CookingTime

	if err := s.recipes.Update(ctx, recipe, tags, rows); err != nil {
		s.images.Remove(ctx, newImage)
		return nil, err
	}
	if newImage != "" && oldImage != newImage {
		s.images.Remove(ctx, oldImage)
	}
	return s.GetRecipe(ctx, actor, id)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, actor authz.Actor, id uint) error {
	recipe, err := s.recipes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.enforcer.Authorize(actor, recipe.AuthorID, authz.ObjectRecipe, authz.ActionDelete); err != nil {
		return err
	}
	if err := s.recipes.Delete(ctx, id); err != nil {
		return err
	}
	s.images.Remove(ctx, recipe.Image)
	return nil
}

// resolve validates req and loads the referenced tags and ingredients.
// Every problem found is reported in one validation error.
func (s *RecipeService) resolve(ctx context.Context, req *types.RecipeRequest, requireImage bool) ([]models.Tag, []models.IngredientInRecipe, error) {
	fields := map[string][]string{}
	if err := validation.Struct(req); err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) || appErr.Fields == nil {
			return nil, nil, err
		}
		for field, messages := range appErr.Fields {
			fields[field] = append(fields[field], messages...)
		}
	}
	if requireImage && req.Image == "" {
		fields["image"] = append(fields["image"], "this field is required")
	}
	if len(fields) > 0 {
		return nil, nil, &models.AppError{Kind: models.KindValidation, Message: "invalid input", Fields: fields}
	}

	ingredientIDs := make([]uint, 0, len(req.Ingredients))
	seen := make(map[uint]bool, len(req.Ingredients))
	for _, item := range req.Ingredients {
		if seen[item.ID] {
			fields["ingredients"] = append(fields["ingredients"], fmt.Sprintf("ingredient %d is listed more than once", item.ID))
			continue
		}
		seen[item.ID] = true
		ingredientIDs = append(ingredientIDs, item.ID)
	}

	found, err := s.catalog.FindIngredients(ctx, ingredientIDs)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, ingredient := range found {
		known[ingredient.ID] = true
	}
	for _, id := range ingredientIDs {
		if !known[id] {
			fields["ingredients"] = append(fields["ingredients"], fmt.Sprintf("ingredient %d does not exist", id))
		}
	}

	tagIDs := uniqueIDs(req.Tags)
	tags, err := s.catalog.FindTags(ctx, tagIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(tags) != len(tagIDs) {
		knownTags := make(map[uint]bool, len(tags))
		for _, tag := range tags {
			knownTags[tag.ID] = true
		}
		for _, id := range tagIDs {
			if !knownTags[id] {
				fields["tags"] = append(fields["tags"], fmt.Sprintf("tag %d does not exist", id))
			}
		}
	}

	if len(fields) > 0 {
		return nil, nil, &models.AppError{Kind: models.KindValidation, Message: "invalid input", Fields: fields}
	}

	rows := make([]models.IngredientInRecipe, len(req.Ingredients))
	for i, item := range req.Ingredients {
		rows[i] = models.IngredientInRecipe{IngredientID: item.ID, Amount: item.Amount}
	}
	return tags, rows, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
