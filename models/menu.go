package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryClassic    Category = "classic"
	CategoryPremium    Category = "premium"
	CategoryVegetarian Category = "vegetarian"
	CategorySpecialty  Category = "specialty"
)

// Categories lists the menu categories in display order.
var Categories = []Category{CategoryClassic, CategoryPremium, CategoryVegetarian, CategorySpecialty}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"notblank"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gt=0"`
	Category    Category        `json:"category" validate:"oneof=classic premium vegetarian specialty"`
	Ingredients []string        `json:"ingredients"`
	Image       string          `json:"image"`
	Popular     bool            `json:"popular"`
	Vegetarian  bool            `json:"vegetarian"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Clone returns a copy that shares no slices with m.
func (m MenuItem) Clone() MenuItem {
	if m.Ingredients != nil {
		m.Ingredients = append([]string(nil), m.Ingredients...)
	}
	return m
}

// MenuItemPatch holds the fields to change on a menu item; nil fields are left as they are.
type MenuItemPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Ingredients *[]string        `json:"ingredients,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Popular     *bool            `json:"popular,omitempty"`
	Vegetarian  *bool            `json:"vegetarian,omitempty"`
}

// Apply merges the patch into m and returns the result.
func (p MenuItemPatch) Apply(m MenuItem) MenuItem {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Ingredients != nil {
		m.Ingredients = append([]string(nil), (*p.Ingredients)...)
	}
	if p.Image != nil {
		m.Image = *p.Image
	}
	if p.Popular != nil {
		m.Popular = *p.Popular
	}
	if p.Vegetarian != nil {
		m.Vegetarian = *p.Vegetarian
	}
	return m
}
