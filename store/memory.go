package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"pizza-palace/models"
	"pizza-palace/services"
)

// Memory keeps menu items, carts and orders in process memory. It implements
// services.MenuStore, services.CartStore and services.OrderStore.
type Memory struct {
	mu sync.RWMutex

	menu       []models.MenuItem
	nextMenuID int64

	carts map[string]*models.Cart

	orders      []models.Order
	nextOrderID int64

	now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		carts:       make(map[string]*models.Cart),
		nextMenuID:  1,
		nextOrderID: 1,
		now:         time.Now,
	}
}

func (m *Memory) menuIndex(id string) int {
	for i := range m.menu {
		if m.menu[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) CreateMenuItem(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = strconv.FormatInt(m.nextMenuID, 10)
	m.nextMenuID++
	now := m.now()
	item.CreatedAt, item.UpdatedAt = now, now
	m.menu = append(m.menu, item.Clone())
	return item, nil
}

func (m *Memory) GetMenuItem(_ context.Context, id string) (models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.menuIndex(id)
	if i < 0 {
		return models.MenuItem{}, services.ErrNotFound
	}
	return m.menu[i].Clone(), nil
}

func (m *Memory) UpdateMenuItem(_ context.Context, item models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.menuIndex(item.ID)
	if i < 0 {
		return services.ErrNotFound
	}
	item.CreatedAt = m.menu[i].CreatedAt
	item.UpdatedAt = m.now()
	m.menu[i] = item.Clone()
	return nil
}

func (m *Memory) DeleteMenuItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.menuIndex(id)
	if i < 0 {
		return services.ErrNotFound
	}
	m.menu = append(m.menu[:i], m.menu[i+1:]...)
	return nil
}

func (m *Memory) ListMenuItems(_ context.Context) ([]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.MenuItem, len(m.menu))
	for i, item := range m.menu {
		out[i] = item.Clone()
	}
	return out, nil
}

func (m *Memory) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.carts[userID]; ok {
		return c.Clone(), nil
	}
	return models.NewCart(userID), nil
}

func (m *Memory) SaveCart(_ context.Context, cart *models.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[cart.UserID] = cart.Clone()
	return nil
}

func (m *Memory) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	delete(m.carts, userID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) CreateOrder(_ context.Context, o models.Order) (models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextOrderID
	m.nextOrderID++
	m.orders = append(m.orders, o.Clone())
	return o, nil
}

func (m *Memory) orderIndex(id int64) int {
	for i := range m.orders {
		if m.orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) GetOrder(_ context.Context, id int64) (models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.orderIndex(id)
	if i < 0 {
		return models.Order{}, services.ErrNotFound
	}
	return m.orders[i].Clone(), nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, id int64, status models.OrderStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.orderIndex(id)
	if i < 0 {
		return services.ErrNotFound
	}
	m.orders[i].Status = status
	m.orders[i].UpdatedAt = at
	return nil
}

func (m *Memory) ListOrders(_ context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Order, len(m.orders))
	for i, o := range m.orders {
		out[i] = o.Clone()
	}
	return out, nil
}
