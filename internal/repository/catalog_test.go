package repository

import (
	"context"
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRepository_Ingredients(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	brown := testhelpers.CreateIngredient(t, db, "Brown sugar", "g")
	testhelpers.CreateIngredient(t, db, "Sugar", "g")
	testhelpers.CreateIngredient(t, db, "Salt", "pinch")

	found, err := repo.ListIngredients(ctx, "SUG")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Brown sugar", found[0].Name)
	assert.Equal(t, "Sugar", found[1].Name)

	all, err := repo.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	wildcard, err := repo.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, wildcard)

	got, err := repo.GetIngredient(ctx, brown.ID)
	require.NoError(t, err)
	assert.Equal(t, "g", got.MeasurementUnit)

	_, err = repo.GetIngredient(ctx, 999)
	assert.True(t, models.IsNotFound(err))

	some, err := repo.FindIngredients(ctx, []uint{brown.ID, 999})
	require.NoError(t, err)
	assert.Len(t, some, 1)
}

func TestCatalogRepository_IngredientsMatchWildcardsLiterally(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	testhelpers.CreateIngredient(t, db, "milk 3.2%", "ml")
	testhelpers.CreateIngredient(t, db, "salt", "g")
	testhelpers.CreateIngredient(t, db, "a_b", "g")
	testhelpers.CreateIngredient(t, db, "ab flour", "g")
	testhelpers.CreateIngredient(t, db, `back\slash`, "g")

	names := func(query string) []string {
		found, err := repo.ListIngredients(ctx, query)
		require.NoError(t, err)
		out := make([]string, 0, len(found))
		for _, ing := range found {
			out = append(out, ing.Name)
		}
		return out
	}

	assert.Equal(t, []string{"milk 3.2%"}, names("%"))
	assert.Equal(t, []string{"a_b"}, names("a_b"))
	assert.Equal(t, []string{"ab flour"}, names("ab"))
	assert.Equal(t, []string{`back\slash`}, names(`k\s`))
	assert.Empty(t, names("__"))
}

func TestCatalogRepository_Tags(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	repo := NewCatalogRepository(db)
	ctx := context.Background()

	lunch := testhelpers.CreateTag(t, db, "lunch", "#49B64E")
	testhelpers.CreateTag(t, db, "dinner", "#8775D2")

	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "lunch", tags[0].Slug)

	got, err := repo.GetTag(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, "#49B64E", got.Color)

	_, err = repo.GetTag(ctx, 999)
	assert.True(t, models.IsNotFound(err))

	none, err := repo.FindTags(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}
