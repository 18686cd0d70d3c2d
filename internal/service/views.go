package service

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
)

func userView(u *models.User, subscribed bool) types.UserView {
	return types.UserView{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

func tagView(t *models.Tag) types.TagView {
	return types.TagView{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func ingredientView(i *models.Ingredient) types.IngredientView {
	return types.IngredientView{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

// presenter turns recipes into views with the flags of the requesting user.
type presenter struct {
	relations repository.RelationRepository
	images    *ImageService
}

func (p presenter) shortView(r *models.Recipe) types.RecipeShortView {
	return types.RecipeShortView{
		ID:          r.ID,
		Name:        r.Name,
		Image:       p.images.URL(r.Image),
		CookingTime: r.CookingTime,
	}
}

func (p presenter) shortViews(recipes []models.Recipe) []types.RecipeShortView {
	views := make([]types.RecipeShortView, len(recipes))
	for i := range recipes {
		views[i] = p.shortView(&recipes[i])
	}
	return views
}

// recipeViews resolves favorite, cart and subscription flags for viewerID in
// three queries. A zero viewerID yields false everywhere.
func (p presenter) recipeViews(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]types.RecipeView, error) {
	recipeIDs := make([]uint, len(recipes))
	authorIDs := make([]uint, len(recipes))
	for i, r := range recipes {
		recipeIDs[i] = r.ID
		authorIDs[i] = r.AuthorID
	}

	favorited, err := p.relations.FavoritedAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.relations.InCartAmong(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	followed, err := p.relations.FollowedAmong(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	views := make([]types.RecipeView, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		view := types.RecipeView{
			ID:               r.ID,
			Tags:             make([]types.TagView, len(r.Tags)),
			Author:           userView(&r.Author, followed[r.AuthorID]),
			Ingredients:      make([]types.RecipeIngredientView, len(r.Ingredients)),
			Name:             r.Name,
			Image:            p.images.URL(r.Image),
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
		}
		for j := range r.Tags {
			view.Tags[j] = tagView(&r.Tags[j])
		}
		for j, row := range r.Ingredients {
			view.Ingredients[j] = types.RecipeIngredientView{
				ID:              row.IngredientID,
				Name:            row.Ingredient.Name,
				MeasurementUnit: row.Ingredient.MeasurementUnit,
				Amount:          row.Amount,
			}
		}
		views[i] = view
	}
	return views, nil
}

func (p presenter) recipeView(ctx context.Context, viewerID uint, recipe *models.Recipe) (*types.RecipeView, error) {
	views, err := p.recipeViews(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
