package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pizza-palace/models"
)

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog(newFakeStore())
	items := []models.MenuItem{
		{Name: "Margherita", Description: "Tomato and basil", Price: dec("299"), Category: models.CategoryClassic, Popular: true, Vegetarian: true},
		{Name: "Veggie Delight", Description: "Garden vegetables", Price: dec("349"), Category: models.CategoryVegetarian, Vegetarian: true},
		{Name: "Supreme", Description: "Everything on it", Price: dec("549"), Category: models.CategoryPremium, Popular: true},
		{Name: "Paneer Tikka", Description: "Spiced paneer", Price: dec("449"), Category: models.CategoryVegetarian, Vegetarian: true},
	}
	for _, it := range items {
		if _, err := c.Add(context.Background(), it); err != nil {
			t.Fatalf("Add(%s): %v", it.Name, err)
		}
	}
	return c
}

func names(items []models.MenuItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestCatalogList(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"Margherita", "Veggie Delight", "Supreme", "Paneer Tikka"}},
		{"vegetarian keeps insertion order", ListFilter{Category: models.CategoryVegetarian}, []string{"Veggie Delight", "Paneer Tikka"}},
		{"specialty empty", ListFilter{Category: models.CategorySpecialty}, []string{}},
		{"popular", ListFilter{PopularOnly: true}, []string{"Margherita", "Supreme"}},
		{"query matches name case-insensitively", ListFilter{Query: "SUPREME"}, []string{"Supreme"}},
		{"query matches description", ListFilter{Query: "basil"}, []string{"Margherita"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			gotNames := names(got)
			if len(gotNames) != len(tt.want) {
				t.Fatalf("List = %v, want %v", gotNames, tt.want)
			}
			for i := range tt.want {
				if gotNames[i] != tt.want[i] {
					t.Fatalf("List = %v, want %v", gotNames, tt.want)
				}
			}
		})
	}

	popular, _ := c.Popular(ctx)
	if len(popular) != 2 {
		t.Errorf("Popular = %v", names(popular))
	}
}

func TestCatalogAddValidation(t *testing.T) {
	c := NewCatalog(newFakeStore())
	tests := []struct {
		name string
		item models.MenuItem
		want string
	}{
		{"blank name", models.MenuItem{Name: "  ", Price: dec("10"), Category: models.CategoryClassic}, "name is required"},
		{"zero price", models.MenuItem{Name: "Free", Price: dec("0"), Category: models.CategoryClassic}, "price must be > 0"},
		{"negative price", models.MenuItem{Name: "Neg", Price: dec("-1"), Category: models.CategoryClassic}, "price must be > 0"},
		{"cent price, bad category", models.MenuItem{Name: "Crumb", Price: dec("0.01"), Category: "dessert"}, "category must be one of"},
		{"bad category", models.MenuItem{Name: "Odd", Price: dec("10"), Category: "dessert"}, "category must be one of"},
	}
	for _, tt := range tests {
		_, err := c.Add(context.Background(), tt.item)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("%s: err = %v, want ErrInvalidInput", tt.name, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %q, want it to mention %q", tt.name, err, tt.want)
		}
	}
	all, _ := c.List(context.Background(), ListFilter{})
	if len(all) != 0 {
		t.Errorf("invalid items were stored: %v", names(all))
	}
}

func TestCatalogAddAssignsUniqueIDs(t *testing.T) {
	c := seededCatalog(t)
	all, _ := c.List(context.Background(), ListFilter{})
	seen := map[string]bool{}
	for _, it := range all {
		if it.ID == "" || seen[it.ID] {
			t.Fatalf("duplicate or empty id %q", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestCatalogUpdate(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)
	all, _ := c.List(ctx, ListFilter{})
	target := all[0]

	price := dec("319")
	popular := false
	got, err := c.Update(ctx, target.ID, models.MenuItemPatch{Price: &price, Popular: &popular})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !got.Price.Equal(price) || got.Popular || got.Name != target.Name {
		t.Errorf("Update result = %+v", got)
	}

	zero := dec("0")
	if _, err := c.Update(ctx, target.ID, models.MenuItemPatch{Price: &zero}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("zero price patch: err = %v, want ErrInvalidInput", err)
	}
	if _, err := c.Update(ctx, "missing", models.MenuItemPatch{Price: &price}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: err = %v, want ErrNotFound", err)
	}
}

func TestCatalogDelete(t *testing.T) {
	ctx := context.Background()
	c := seededCatalog(t)
	all, _ := c.List(ctx, ListFilter{})

	if err := c.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing: err = %v, want ErrNotFound", err)
	}
	if after, _ := c.List(ctx, ListFilter{}); len(after) != len(all) {
		t.Errorf("deleting a missing id changed the catalog")
	}

	if err := c.Delete(ctx, all[1].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, all[1].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete: err = %v, want ErrNotFound", err)
	}
	if after, _ := c.List(ctx, ListFilter{}); len(after) != len(all)-1 {
		t.Errorf("len after delete = %d, want %d", len(after), len(all)-1)
	}
}
