package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pizza-palace/models"
)

// CartStore keeps one cart per user. GetCart returns an empty cart for a user who has none.
type CartStore interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type CartService struct {
	store   CartStore
	catalog *Catalog
	pricing Pricing
	policy  models.LinePolicy
	newID   func() string
	now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type CartOption func(*CartService)

func WithLinePolicy(p models.LinePolicy) CartOption {
	return func(s *CartService) { s.policy = p }
}

func WithCartPricing(p Pricing) CartOption {
	return func(s *CartService) { s.pricing = p }
}

func NewCartService(store CartStore, catalog *Catalog, opts ...CartOption) *CartService {
	s := &CartService{
		store:   store,
		catalog: catalog,
		pricing: DefaultPricing(),
		policy:  models.MergeLines,
		newID:   uuid.NewString,
		now:     time.Now,
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockUser serializes load-modify-save for one user's cart.
func (s *CartService) lockUser(userID string) func() {
	s.mu.Lock()
	mu, ok := s.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[userID] = mu
	}
	s.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	return s.store.GetCart(ctx, userID)
}

func (s *CartService) modify(ctx context.Context, userID string, fn func(c *models.Cart) error) (*models.Cart, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = s.now()
	if err := s.store.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return cart, nil
}

// AddItem looks the menu item up and adds it in the chosen size.
func (s *CartService) AddItem(ctx context.Context, userID, menuItemID string, size models.Size) (*models.Cart, error) {
	if size == "" {
		size = models.SizeMedium
	}
	if !size.Valid() {
		return nil, fmt.Errorf("%w: invalid size: %s", ErrInvalidInput, size)
	}
	item, err := s.catalog.Get(ctx, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("menu item %s: %w", menuItemID, err)
	}
	return s.modify(ctx, userID, func(c *models.Cart) error {
		c.AddItem(item, size, s.policy, s.newID)
		return nil
	})
}

// SetQuantity sets the line quantity; anything below 1 removes the line.
func (s *CartService) SetQuantity(ctx context.Context, userID, lineID string, qty int) (*models.Cart, error) {
	return s.modify(ctx, userID, func(c *models.Cart) error {
		if !c.SetQuantity(lineID, qty) {
			return fmt.Errorf("cart line %s: %w", lineID, ErrNotFound)
		}
		return nil
	})
}

func (s *CartService) RemoveLine(ctx context.Context, userID, lineID string) (*models.Cart, error) {
	return s.modify(ctx, userID, func(c *models.Cart) error {
		if !c.RemoveLine(lineID) {
			return fmt.Errorf("cart line %s: %w", lineID, ErrNotFound)
		}
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	unlock := s.lockUser(userID)
	defer unlock()
	return s.store.DeleteCart(ctx, userID)
}

// Consume removes ordered lines from the user's cart, keeping whatever was added since
// they were snapshotted.
func (s *CartService) Consume(ctx context.Context, userID string, ordered []models.CartLine) (*models.Cart, error) {
	return s.modify(ctx, userID, func(c *models.Cart) error {
		c.Consume(ordered)
		return nil
	})
}

func (s *CartService) Summary(cart *models.Cart) Summary {
	return s.pricing.Summarize(cart.Lines)
}
