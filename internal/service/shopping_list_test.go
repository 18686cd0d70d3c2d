package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/service"
)

func TestAggregateShoppingListSumsByName(t *testing.T) {
	rows := []repository.CartIngredient{
		{Name: "Sugar", MeasurementUnit: "g", Amount: 100},
		{Name: "Milk", MeasurementUnit: "ml", Amount: 200},
		{Name: "Sugar", MeasurementUnit: "kg", Amount: 50},
	}

	items := service.AggregateShoppingList(rows)

	assert.Equal(t, []service.ShoppingItem{
		{Name: "Sugar", MeasurementUnit: "g", Amount: 150},
		{Name: "Milk", MeasurementUnit: "ml", Amount: 200},
	}, items)
	assert.Equal(t, "Sugar - 150 g\nMilk - 200 ml\n\nFoodGram, 2021", service.RenderShoppingList(items, "FoodGram, 2021"))
}

func TestRenderShoppingListEmpty(t *testing.T) {
	items := service.AggregateShoppingList(nil)
	assert.Empty(t, items)
	assert.Equal(t, "\nFoodGram, 2021", service.RenderShoppingList(items, "FoodGram, 2021"))
}

func TestAggregateShoppingListIsCaseSensitive(t *testing.T) {
	items := service.AggregateShoppingList([]repository.CartIngredient{
		{Name: "salt", MeasurementUnit: "g", Amount: 1},
		{Name: "Salt", MeasurementUnit: "g", Amount: 2},
	})
	assert.Len(t, items, 2)
}
