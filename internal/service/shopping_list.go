package service

import (
	"strconv"
	"strings"

	"github.com/pageza/foodgram/backend/internal/repository"
)

// ShoppingItem is one line of the shopping list.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

// AggregateShoppingList sums amounts per exact ingredient name. Items keep
// the order in which names first appear and the unit of that first row.
func AggregateShoppingList(rows []repository.CartIngredient) []ShoppingItem {
	items := make([]ShoppingItem, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, row := range rows {
		if i, ok := index[row.Name]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[row.Name] = len(items)
		items = append(items, ShoppingItem{
			Name:            row.Name,
			MeasurementUnit: row.MeasurementUnit,
			Amount:          row.Amount,
		})
	}
	return items
}

// RenderShoppingList writes one "name - amount unit" line per item, a
// blank line and the signature.
func RenderShoppingList(items []ShoppingItem, signature string) string {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.Name)
		b.WriteString(" - ")
		b.WriteString(strconv.Itoa(item.Amount))
		b.WriteString(" ")
		b.WriteString(item.MeasurementUnit)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(signature)
	return b.String()
}
