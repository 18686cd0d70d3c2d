package repository

import (
	"context"
	"errors"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
)

// RecipeFilter narrows a recipe listing. Zero values do not filter.
type RecipeFilter struct {
	// TagSlugs matches recipes carrying any of the tags.
	TagSlugs    []string
	AuthorID    uint
	FavoritedBy uint
	InCartOf    uint
}

// RecipeRepository defines the interface for recipe data operations
type RecipeRepository interface {
	List(ctx context.Context, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Recipe, error)
	// Create inserts the recipe, its tags and its ingredient rows in one transaction.
	Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, ingredients []models.IngredientInRecipe) error
	// Update rewrites the recipe fields and replaces tags and ingredient rows in one transaction.
	Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, ingredients []models.IngredientInRecipe) error
	Delete(ctx context.Context, id uint) error
	ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// newestFirst is the default recipe ordering.
const newestFirst = "recipes.pub_date DESC, recipes.id DESC"

func preloadRecipe(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("ingredient_in_recipes.id") }).
		Preload("Ingredients.Ingredient")
}

func (r *recipeRepository) filtered(ctx context.Context, f RecipeFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Recipe{})
	if len(f.TagSlugs) > 0 {
		q = q.Where("recipes.id IN (?)", r.db.
			Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs))
	}
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if f.FavoritedBy != 0 {
		q = q.Where("recipes.id IN (?)", r.db.
			Model(&models.Favorite{}).
			Select("recipe_id").
			Where("user_id = ?", f.FavoritedBy))
	}
	if f.InCartOf != 0 {
		q = q.Where("recipes.id IN (?)", r.db.
			Model(&models.ShoppingList{}).
			Select("recipe_id").
			Where("user_id = ?", f.InCartOf))
	}
	return q
}

func (r *recipeRepository) List(ctx context.Context, f RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	var total int64
	if err := r.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var recipes []models.Recipe
	if err := preloadRecipe(r.filtered(ctx, f)).
		Order(newestFirst).
		Offset(offset).
		Limit(limit).
		Find(&recipes).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return recipes, total, nil
}

func (r *recipeRepository) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadRecipe(r.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &recipe, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, tags []models.Tag, ingredients []models.IngredientInRecipe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe.Tags = tags
		if err := tx.Omit("Author", "Ingredients").Create(recipe).Error; err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, ingredients)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *models.Recipe, tags []models.Tag, ingredients []models.IngredientInRecipe) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":         recipe.Name,
			"image":        recipe.Image,
			"text":         recipe.Text,
			"cooking_time": recipe.CookingTime,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", recipe.ID)
		}
		tagAssoc := tx.Model(recipe).Association("Tags")
		if len(tags) == 0 {
			if err := tagAssoc.Clear(); err != nil {
				return err
			}
		} else if err := tagAssoc.Replace(tags); err != nil {
			return err
		}
		return replaceIngredients(tx, recipe.ID, ingredients)
	})
	if err != nil {
		if models.IsNotFound(err) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

// replaceIngredients must run inside a transaction.
func replaceIngredients(tx *gorm.DB, recipeID uint, ingredients []models.IngredientInRecipe) error {
	if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.IngredientInRecipe{}).Error; err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}

	rows := make([]models.IngredientInRecipe, len(ingredients))
	for i, in := range ingredients {
		rows[i] = models.IngredientInRecipe{
			RecipeID:     recipeID,
			IngredientID: in.IngredientID,
			Amount:       in.Amount,
		}
	}
	return tx.Omit("Ingredient").Create(&rows).Error
}

func (r *recipeRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Recipe{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return deleteRecipes(tx, []uint{id})
	})
	if err != nil {
		if models.IsNotFound(err) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

// deleteRecipes removes recipes and every row that references them.
func deleteRecipes(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&models.IngredientInRecipe{}).Error; err != nil {
		return err
	}
	if err := tx.Exec("DELETE FROM recipe_tags WHERE recipe_id IN ?", ids).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&models.Favorite{}).Error; err != nil {
		return err
	}
	if err := tx.Where("recipe_id IN ?", ids).Delete(&models.ShoppingList{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Recipe{}).Error
}

func (r *recipeRepository) ListByAuthor(ctx context.Context, authorID uint, limit int) ([]models.Recipe, error) {
	q := r.db.WithContext(ctx).
		Where("recipes.author_id = ?", authorID).
		Order(newestFirst)
	if limit >= 0 {
		q = q.Limit(limit)
	}

	var recipes []models.Recipe
	if err := q.Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AuthorID uint
		Total    int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", authorIDs).
		Group("author_id").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, row := range rows {
		counts[row.AuthorID] = row.Total
	}
	return counts, nil
}
