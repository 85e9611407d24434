package services

import (
	"context"
	"strings"

	"pizza-palace/models"
)

// MenuStore persists menu items. ListMenuItems returns items in insertion order.
// Update and delete of a missing id return ErrNotFound.
type MenuStore interface {
	CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	GetMenuItem(ctx context.Context, id string) (models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, item models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
	ListMenuItems(ctx context.Context) ([]models.MenuItem, error)
}

// ListFilter narrows a menu listing. Zero value matches everything.
type ListFilter struct {
	Category    models.Category
	Query       string
	PopularOnly bool
}

func (f ListFilter) matches(item models.MenuItem) bool {
	if f.Category != "" && item.Category != f.Category {
		return false
	}
	if f.PopularOnly && !item.Popular {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(item.Name), q) && !strings.Contains(strings.ToLower(item.Description), q) {
			return false
		}
	}
	return true
}

type Catalog struct {
	store MenuStore
}

func NewCatalog(store MenuStore) *Catalog {
	return &Catalog{store: store}
}

// Add validates item and stores it under a fresh id.
func (c *Catalog) Add(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if err := validateStruct(item); err != nil {
		return models.MenuItem{}, err
	}
	if item.Ingredients == nil {
		item.Ingredients = []string{}
	}
	item.ID = ""
	return c.store.CreateMenuItem(ctx, item.Clone())
}

func (c *Catalog) Get(ctx context.Context, id string) (models.MenuItem, error) {
	return c.store.GetMenuItem(ctx, id)
}

// Update merges patch into the item with the given id.
func (c *Catalog) Update(ctx context.Context, id string, patch models.MenuItemPatch) (models.MenuItem, error) {
	current, err := c.store.GetMenuItem(ctx, id)
	if err != nil {
		return models.MenuItem{}, err
	}
	updated := patch.Apply(current)
	updated.ID = current.ID
	updated.Name = strings.TrimSpace(updated.Name)
	if err := validateStruct(updated); err != nil {
		return models.MenuItem{}, err
	}
	if err := c.store.UpdateMenuItem(ctx, updated); err != nil {
		return models.MenuItem{}, err
	}
	return c.store.GetMenuItem(ctx, id)
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	return c.store.DeleteMenuItem(ctx, id)
}

// List returns the items matching f, keeping insertion order.
func (c *Catalog) List(ctx context.Context, f ListFilter) ([]models.MenuItem, error) {
	all, err := c.store.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]models.MenuItem, 0, len(all))
	for _, item := range all {
		if f.matches(item) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (c *Catalog) Popular(ctx context.Context) ([]models.MenuItem, error) {
	return c.List(ctx, ListFilter{PopularOnly: true})
}
