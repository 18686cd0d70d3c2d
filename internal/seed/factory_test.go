package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/storage"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestRun(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	testhelpers.CreateTag(t, db, "breakfast", "#E26C2D")
	testhelpers.CreateTag(t, db, "dinner", "#49B64E")
	for _, name := range []string{"flour", "eggs", "milk", "salt", "sugar", "butter"} {
		testhelpers.CreateIngredient(t, db, name, "g")
	}

	store, err := storage.NewLocalStore(t.TempDir(), "http://testserver/media/")
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	factory := NewFactory(users, repository.NewRecipeRepository(db), repository.NewCatalogRepository(db),
		repository.NewRelationRepository(db), service.NewImageService(store, 1<<20),
		Options{Users: 3, RecipesPerUser: 2, Seed: 42, BcryptCost: bcrypt.MinCost})

	summary, err := factory.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Users)
	assert.Equal(t, 6, summary.Recipes)

	var recipeCount int64
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipeCount).Error)
	assert.Equal(t, int64(6), recipeCount)

	var rows int64
	require.NoError(t, db.Model(&models.IngredientInRecipe{}).Count(&rows).Error)
	assert.GreaterOrEqual(t, rows, int64(6))

	list, total, err := users.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, u := range list {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("foodgram123")))
	}
}

func TestRunRequiresIngredients(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	store, err := storage.NewLocalStore(t.TempDir(), "http://testserver/media/")
	require.NoError(t, err)

	factory := NewFactory(repository.NewUserRepository(db), repository.NewRecipeRepository(db), repository.NewCatalogRepository(db),
		repository.NewRelationRepository(db), service.NewImageService(store, 1<<20), Options{Users: 1, RecipesPerUser: 1})

	_, err = factory.Run(context.Background())
	assert.Error(t, err)
}
