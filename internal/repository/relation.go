package repository

import (
	"context"

	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// CartIngredient is one ingredient row of a recipe in a user's cart.
type CartIngredient struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// RelationRepository stores favorites, shopping cart entries and follows.
// Add* fail with AlreadyExists on a duplicate pair and Remove* with NotFound
// when the pair does not exist.
type RelationRepository interface {
	AddFavorite(ctx context.Context, userID, recipeID uint) error
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	FavoritedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)

	AddToCart(ctx context.Context, userID, recipeID uint) error
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	InCartAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	// CartIngredients returns rows in cart insertion order, then ingredient row order.
	CartIngredients(ctx context.Context, userID uint) ([]CartIngredient, error)

	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
	// ListFollowedAuthors pages through the authors userID follows, in follow order.
	ListFollowedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error)
}

type relationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) RelationRepository {
	return &relationRepository{db: db}
}

// add inserts row unless a row matching where already exists. A unique
// violation from a concurrent insert is reported the same way.
func (r *relationRepository) add(ctx context.Context, row interface{}, exists string, where string, args ...interface{}) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(row).Where(where, args...).Count(&count).Error; err != nil {
		return models.NewInternalError(err)
	}
	if count > 0 {
		return models.NewAlreadyExistsError(exists)
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.NewAlreadyExistsError(exists)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationRepository) remove(ctx context.Context, model interface{}, missing string, where string, args ...interface{}) error {
	res := r.db.WithContext(ctx).Where(where, args...).Delete(model)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.AppError{Kind: models.KindNotFound, Message: missing}
	}
	return nil
}

// among returns which of ids appear in column for userID's rows of model.
func (r *relationRepository) among(ctx context.Context, model interface{}, column string, userID uint, ids []uint) (map[uint]bool, error) {
	found := make(map[uint]bool, len(ids))
	if userID == 0 || len(ids) == 0 {
		return found, nil
	}
	var hits []uint
	if err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ? AND "+column+" IN ?", userID, ids).
		Pluck(column, &hits).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range hits {
		found[id] = true
	}
	return found, nil
}

func (r *relationRepository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	return r.add(ctx, &models.Favorite{UserID: userID, RecipeID: recipeID},
		"recipe is already in favorites", "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *relationRepository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	return r.remove(ctx, &models.Favorite{},
		"recipe is not in favorites", "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *relationRepository) FavoritedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return r.among(ctx, &models.Favorite{}, "recipe_id", userID, recipeIDs)
}

func (r *relationRepository) AddToCart(ctx context.Context, userID, recipeID uint) error {
	return r.add(ctx, &models.ShoppingList{UserID: userID, RecipeID: recipeID},
		"recipe is already in the shopping cart", "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *relationRepository) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	return r.remove(ctx, &models.ShoppingList{},
		"recipe is not in the shopping cart", "user_id = ? AND recipe_id = ?", userID, recipeID)
}

func (r *relationRepository) InCartAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return r.among(ctx, &models.ShoppingList{}, "recipe_id", userID, recipeIDs)
}

func (r *relationRepository) CartIngredients(ctx context.Context, userID uint) ([]CartIngredient, error) {
	var rows []CartIngredient
	if err := r.db.WithContext(ctx).
		Table("shopping_lists").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, ingredient_in_recipes.amount AS amount").
		Joins("JOIN ingredient_in_recipes ON ingredient_in_recipes.recipe_id = shopping_lists.recipe_id").
		Joins("JOIN ingredients ON ingredients.id = ingredient_in_recipes.ingredient_id").
		Where("shopping_lists.user_id = ?", userID).
		Order("shopping_lists.id, ingredient_in_recipes.id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return rows, nil
}

func (r *relationRepository) Follow(ctx context.Context, userID, authorID uint) error {
	return r.add(ctx, &models.Follow{UserID: userID, AuthorID: authorID},
		"already subscribed to this author", "user_id = ? AND author_id = ?", userID, authorID)
}

func (r *relationRepository) Unfollow(ctx context.Context, userID, authorID uint) error {
	return r.remove(ctx, &models.Follow{},
		"not subscribed to this author", "user_id = ? AND author_id = ?", userID, authorID)
}

func (r *relationRepository) FollowedAmong(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	return r.among(ctx, &models.Follow{}, "author_id", userID, authorIDs)
}

func (r *relationRepository) ListFollowedAuthors(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var authors []models.User
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", userID).
		Order("follows.id").
		Offset(offset).
		Limit(limit).
		Find(&authors).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return authors, total, nil
}
