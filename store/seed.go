package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pizza-palace/models"
	"pizza-palace/services"
)

// DefaultMenu is the starter menu loaded into an empty catalog.
func DefaultMenu() []models.MenuItem {
	return []models.MenuItem{
		{
			Name:        "Margherita",
			Description: "Classic tomato sauce, mozzarella and fresh basil",
			Price:       decimal.NewFromInt(299),
			Category:    models.CategoryClassic,
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Basil"},
			Image:       "/images/margherita.jpg",
			Popular:     true,
			Vegetarian:  true,
		},
		{
			Name:        "Pepperoni",
			Description: "Loaded with pepperoni and mozzarella",
			Price:       decimal.NewFromInt(399),
			Category:    models.CategoryClassic,
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Pepperoni"},
			Image:       "/images/pepperoni.jpg",
			Popular:     true,
		},
		{
			Name:        "Supreme",
			Description: "Pepperoni, sausage, peppers, onions and olives",
			Price:       decimal.NewFromInt(549),
			Category:    models.CategoryPremium,
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Pepperoni", "Sausage", "Bell Peppers", "Onions", "Olives"},
			Image:       "/images/supreme.jpg",
		},
		{
			Name:        "Veggie Delight",
			Description: "Garden-fresh vegetables on a crispy crust",
			Price:       decimal.NewFromInt(449),
			Category:    models.CategoryVegetarian,
			Ingredients: []string{"Tomato Sauce", "Mozzarella", "Mushrooms", "Bell Peppers", "Onions", "Tomatoes"},
			Image:       "/images/veggie.jpg",
			Vegetarian:  true,
		},
		{
			Name:        "Paneer Tikka",
			Description: "Spiced paneer, onions and capsicum with tikka sauce",
			Price:       decimal.NewFromInt(499),
			Category:    models.CategorySpecialty,
			Ingredients: []string{"Tikka Sauce", "Mozzarella", "Paneer", "Onions", "Capsicum"},
			Image:       "/images/paneer-tikka.jpg",
			Popular:     true,
			Vegetarian:  true,
		},
		{
			Name:        "BBQ Chicken",
			Description: "Grilled chicken, BBQ sauce and red onions",
			Price:       decimal.NewFromInt(529),
			Category:    models.CategorySpecialty,
			Ingredients: []string{"BBQ Sauce", "Mozzarella", "Chicken", "Red Onions", "Cilantro"},
			Image:       "/images/bbq-chicken.jpg",
		},
	}
}

// SeedMenu adds DefaultMenu through the catalog when it has no items yet.
func SeedMenu(ctx context.Context, catalog *services.Catalog) (int, error) {
	existing, err := catalog.List(ctx, services.ListFilter{})
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	n := 0
	for _, item := range DefaultMenu() {
		if _, err := catalog.Add(ctx, item); err != nil {
			return n, fmt.Errorf("seed %s: %w", item.Name, err)
		}
		n++
	}
	return n, nil
}
