// Package seed fills a database with demo users, recipes and relations.
// It is meant for development databases only.
package seed

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Options controls how much data Run creates.
type Options struct {
	Users          int
	RecipesPerUser int
	// Password is shared by every seeded user.
	Password string
	// Seed makes the generated content reproducible; 0 uses the clock.
	Seed       int64
	BcryptCost int
}

// Summary counts what Run created.
type Summary struct {
	Users         int
	Recipes       int
	Favorites     int
	Cart          int
	Subscriptions int
}

// Factory builds domain entities and persists them through the repositories.
type Factory struct {
	users     repository.UserRepository
	recipes   repository.RecipeRepository
	catalog   repository.CatalogRepository
	relations repository.RelationRepository
	images    *service.ImageService
	faker     *gofakeit.Faker
	opts      Options
}

func NewFactory(
	users repository.UserRepository,
	recipes repository.RecipeRepository,
	catalog repository.CatalogRepository,
	relations repository.RelationRepository,
	images *service.ImageService,
	opts Options,
) *Factory {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Password == "" {
		opts.Password = "foodgram123"
	}
	return &Factory{
		users:     users,
		recipes:   recipes,
		catalog:   catalog,
		relations: relations,
		images:    images,
		faker:     gofakeit.New(opts.Seed),
		opts:      opts,
	}
}

// CreateUser persists a user with a fake name. n keeps email and username unique.
func (f *Factory) CreateUser(ctx context.Context, n int) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(f.opts.Password), f.opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	username := fmt.Sprintf("%s%d", strings.ToLower(f.faker.Username()), n)
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    f.faker.FirstName(),
		LastName:     f.faker.LastName(),
		PasswordHash: string(hash),
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateRecipe persists a recipe by author using up to five of the given
// ingredients and at most two of the given tags.
func (f *Factory) CreateRecipe(ctx context.Context, author *models.User, ingredients []models.Ingredient, tags []models.Tag) (*models.Recipe, error) {
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("no ingredients to build a recipe from")
	}

	key, err := f.images.Save(ctx, f.imagePayload())
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        strings.TrimSuffix(f.faker.Sentence(3), "."),
		Image:       key,
		Text:        f.faker.Paragraph(2, 3, 8, "\n"),
		CookingTime: f.faker.Number(5, 180),
		PubDate:     time.Now().UTC().Add(-time.Duration(f.faker.Number(0, 90*24)) * time.Hour),
	}

	var rows []models.IngredientInRecipe
	seen := make(map[uint]bool)
	for i := 0; i < f.faker.Number(1, 5); i++ {
		ingredient := ingredients[f.faker.Number(0, len(ingredients)-1)]
		if seen[ingredient.ID] {
			continue
		}
		seen[ingredient.ID] = true
		rows = append(rows, models.IngredientInRecipe{IngredientID: ingredient.ID, Amount: f.faker.Number(1, 500)})
	}

	var picked []models.Tag
	if len(tags) > 0 {
		first := f.faker.Number(0, len(tags)-1)
		picked = append(picked, tags[first])
		if second := f.faker.Number(0, len(tags)-1); second != first && f.faker.Bool() {
			picked = append(picked, tags[second])
		}
	}

	if err := f.recipes.Create(ctx, recipe, picked, rows); err != nil {
		f.images.Remove(ctx, key)
		return nil, err
	}
	return recipe, nil
}

// imagePayload is a small solid-colour PNG as a data URI.
func (f *Factory) imagePayload() string {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	fill := color.RGBA{R: f.faker.Uint8(), G: f.faker.Uint8(), B: f.faker.Uint8(), A: 255}
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// Run creates users and their recipes, then lets every user favorite, cart
// and follow a few of the others.
func (f *Factory) Run(ctx context.Context) (*Summary, error) {
	log := logging.WithComponent("seed")

	tags, err := f.catalog.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	ingredients, err := f.catalog.ListIngredients(ctx, "")
	if err != nil {
		return nil, err
	}
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("ingredients table is empty, load fixtures first")
	}

	summary := &Summary{}
	var users []*models.User
	var recipes []*models.Recipe
	for i := 0; i < f.opts.Users; i++ {
		user, err := f.CreateUser(ctx, i)
		if err != nil {
			return summary, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
		summary.Users++

		for j := 0; j < f.opts.RecipesPerUser; j++ {
			recipe, err := f.CreateRecipe(ctx, user, ingredients, tags)
			if err != nil {
				return summary, fmt.Errorf("failed to create recipe: %w", err)
			}
			recipes = append(recipes, recipe)
			summary.Recipes++
		}
	}

	for _, user := range users {
		for _, author := range users {
			if author.ID != user.ID && f.faker.Bool() {
				if f.relations.Follow(ctx, user.ID, author.ID) == nil {
					summary.Subscriptions++
				}
			}
		}
		for _, recipe := range recipes {
			if f.faker.Number(0, 3) == 0 && f.relations.AddFavorite(ctx, user.ID, recipe.ID) == nil {
				summary.Favorites++
			}
			if f.faker.Number(0, 5) == 0 && f.relations.AddToCart(ctx, user.ID, recipe.ID) == nil {
				summary.Cart++
			}
		}
	}

	log.Info().
		Int("users", summary.Users).
		Int("recipes", summary.Recipes).
		Int("favorites", summary.Favorites).
		Int("cart", summary.Cart).
		Int("subscriptions", summary.Subscriptions).
		Msg("seed complete")
	return summary, nil
}
