package testhelpers

import (
	"fmt"
	"testing"
	"time"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain password of every user created by CreateUser.
const TestPassword = "password123"

// CreateUser inserts a user whose email is derived from username.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     username,
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, slug, color string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: "Tag " + slug, Color: color, Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// RecipeIngredient pairs an ingredient with an amount for CreateRecipe.
type RecipeIngredient struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe by author with the given ingredients and tags.
// Each call gets a later pub_date than the previous one.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, ingredients []RecipeIngredient, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       fmt.Sprintf("recipes/%s.png", name),
		Text:        "Mix and cook " + name,
		CookingTime: 10,
		PubDate:     nextPubDate(),
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}
	require.NoError(t, db.Create(recipe).Error)

	for _, ri := range ingredients {
		row := &models.IngredientInRecipe{RecipeID: recipe.ID, IngredientID: ri.Ingredient.ID, Amount: ri.Amount}
		require.NoError(t, db.Create(row).Error)
	}
	return recipe
}

var pubClock = time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)

func nextPubDate() time.Time {
	pubClock = pubClock.Add(time.Minute)
	return pubClock
}
