package models

import (
	"time"
)

// MinCookingTime and MaxCookingTime bound Recipe.CookingTime, in minutes.
const (
	MinCookingTime = 1
	MaxCookingTime = 1440
)

type Recipe struct {
	ID          uint                 `gorm:"primaryKey" json:"id"`
	AuthorID    uint                 `gorm:"not null;index" json:"author_id"`
	Author      User                 `gorm:"constraint:OnDelete:CASCADE" json:"author"`
	Name        string               `gorm:"size:200;not null" json:"name"`
	Image       string               `gorm:"size:255;not null" json:"image"` // object key
	Text        string               `gorm:"type:text;not null" json:"text"`
	CookingTime int                  `gorm:"not null;check:cooking_time >= 1 AND cooking_time <= 1440" json:"cooking_time"`
	PubDate     time.Time            `gorm:"not null;index" json:"pub_date"`
	Tags        []Tag                `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE" json:"tags"`
	Ingredients []IngredientInRecipe `gorm:"constraint:OnDelete:CASCADE" json:"ingredients"`
}

// IngredientInRecipe is the amount of one ingredient in a recipe.
type IngredientInRecipe struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"recipe_id"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null;check:amount >= 1" json:"amount"`
}
