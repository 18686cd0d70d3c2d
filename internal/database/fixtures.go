package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LoadIngredients inserts the JSON array
// [{"name": ..., "measurement_unit": ...}] read from r, skipping names that
// already exist. It returns the number of rows inserted.
func LoadIngredients(ctx context.Context, db *gorm.DB, r io.Reader) (int64, error) {
	var ingredients []models.Ingredient
	if err := json.NewDecoder(r).Decode(&ingredients); err != nil {
		return 0, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	if len(ingredients) == 0 {
		return 0, nil
	}
	for i := range ingredients {
		ingredients[i].ID = 0
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&ingredients, 500)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert ingredients: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// LoadTags inserts the JSON array [{"name", "color", "slug"}] read from r.
func LoadTags(ctx context.Context, db *gorm.DB, r io.Reader) (int64, error) {
	var tags []models.Tag
	if err := json.NewDecoder(r).Decode(&tags); err != nil {
		return 0, fmt.Errorf("failed to decode tags: %w", err)
	}
	if len(tags) == 0 {
		return 0, nil
	}
	for i := range tags {
		tags[i].ID = 0
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tags)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to insert tags: %w", res.Error)
	}
	return res.RowsAffected, nil
}
