package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pizza-palace/models"
	"pizza-palace/services"
)

// Postgres implements the menu, cart and order stores on top of a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, services.ErrNotFound
	}
	return n, nil
}

const menuColumns = `id, name, description, price, category, ingredients, image, popular, vegetarian, created_at, updated_at`

func scanMenuItem(row pgx.Row) (models.MenuItem, error) {
	var (
		item        models.MenuItem
		id          int64
		category    string
		ingredients []byte
	)
	err := row.Scan(&id, &item.Name, &item.Description, &item.Price, &category, &ingredients,
		&item.Image, &item.Popular, &item.Vegetarian, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return models.MenuItem{}, err
	}
	item.ID = strconv.FormatInt(id, 10)
	item.Category = models.Category(category)
	item.Ingredients = []string{}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &item.Ingredients); err != nil {
			return models.MenuItem{}, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
	}
	return item, nil
}

func (p *Postgres) CreateMenuItem(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	ingredients, err := json.Marshal(item.Ingredients)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	return scanMenuItem(p.pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, description, price, category, ingredients, image, popular, vegetarian)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)
		RETURNING `+menuColumns,
		item.Name, item.Description, item.Price.String(), string(item.Category), ingredients,
		item.Image, item.Popular, item.Vegetarian,
	))
}

func (p *Postgres) GetMenuItem(ctx context.Context, id string) (models.MenuItem, error) {
	n, err := parseID(id)
	if err != nil {
		return models.MenuItem{}, err
	}
	item, err := scanMenuItem(p.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, n))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MenuItem{}, services.ErrNotFound
	}
	return item, err
}

func (p *Postgres) UpdateMenuItem(ctx context.Context, item models.MenuItem) error {
	n, err := parseID(item.ID)
	if err != nil {
		return err
	}
	ingredients, err := json.Marshal(item.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE menu_items SET
			name = $1,
			description = $2,
			price = $3::numeric,
			category = $4,
			ingredients = $5,
			image = $6,
			popular = $7,
			vegetarian = $8,
			updated_at = now()
		WHERE id = $9`,
		item.Name, item.Description, item.Price.String(), string(item.Category), ingredients,
		item.Image, item.Popular, item.Vegetarian, n,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteMenuItem(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, n)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (p *Postgres) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (p *Postgres) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	var linesJSON []byte
	var updatedAt time.Time
	err := p.pool.QueryRow(ctx, `
		SELECT lines, updated_at FROM carts WHERE user_id = $1`,
		userID,
	).Scan(&linesJSON, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.NewCart(userID), nil
	}
	if err != nil {
		return nil, err
	}

	cart := models.NewCart(userID)
	cart.UpdatedAt = updatedAt
	if len(linesJSON) > 0 {
		if err := json.Unmarshal(linesJSON, &cart.Lines); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cart lines: %w", err)
		}
	}
	return cart, nil
}

func (p *Postgres) SaveCart(ctx context.Context, cart *models.Cart) error {
	linesJSON, err := json.Marshal(cart.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO carts (user_id, lines, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET
			lines = $2,
			updated_at = now()`,
		cart.UserID, linesJSON,
	)
	return err
}

func (p *Postgres) DeleteCart(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}

const orderColumns = `id, user_id, customer_name, items, subtotal, delivery_fee, tax, total,
	delivery_address, phone, payment_method, notes, status, created_at, estimated_delivery, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		o                     models.Order
		itemsJSON, addrJSON   []byte
		paymentMethod, status string
	)
	err := row.Scan(&o.ID, &o.UserID, &o.CustomerName, &itemsJSON, &o.Subtotal, &o.DeliveryFee, &o.Tax, &o.Total,
		&addrJSON, &o.Phone, &paymentMethod, &o.Notes, &status, &o.CreatedAt, &o.EstimatedDelivery, &o.UpdatedAt)
	if err != nil {
		return models.Order{}, err
	}
	o.PaymentMethod = models.PaymentMethod(paymentMethod)
	o.Status = models.OrderStatus(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return models.Order{}, fmt.Errorf("failed to unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(addrJSON, &o.DeliveryAddress); err != nil {
		return models.Order{}, fmt.Errorf("failed to unmarshal delivery address: %w", err)
	}
	return o, nil
}

func (p *Postgres) CreateOrder(ctx context.Context, o models.Order) (models.Order, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to marshal order items: %w", err)
	}
	addrJSON, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return models.Order{}, fmt.Errorf("failed to marshal delivery address: %w", err)
	}
	return scanOrder(p.pool.QueryRow(ctx, `
		INSERT INTO orders (
			user_id, customer_name, items, subtotal, delivery_fee, tax, total,
			delivery_address, phone, payment_method, notes, status,
			created_at, estimated_delivery, updated_at
		) VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+orderColumns,
		o.UserID, o.CustomerName, itemsJSON, o.Subtotal.String(), o.DeliveryFee.String(), o.Tax.String(), o.Total.String(),
		addrJSON, o.Phone, string(o.PaymentMethod), o.Notes, string(o.Status),
		o.CreatedAt, o.EstimatedDelivery, o.UpdatedAt,
	))
}

func (p *Postgres) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	o, err := scanOrder(p.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, services.ErrNotFound
	}
	return o, err
}

func (p *Postgres) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus, at time.Time) error {
	tag, err := p.pool.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (p *Postgres) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// OrderStats aggregates in SQL so the ledger does not load every order.
func (p *Postgres) OrderStats(ctx context.Context) (models.OrderStats, error) {
	var s models.OrderStats
	var revenue string
	err := p.pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COALESCE(SUM(total), 0)::text,
			COUNT(*) FILTER (WHERE status = $1)::int,
			COUNT(*) FILTER (WHERE status = $2)::int
		FROM orders`,
		string(models.OrderStatusPending), string(models.OrderStatusDelivered),
	).Scan(&s.TotalOrders, &revenue, &s.PendingOrders, &s.CompletedOrders)
	if err != nil {
		return models.OrderStats{}, err
	}
	s.TotalRevenue, err = decimal.NewFromString(revenue)
	if err != nil {
		return models.OrderStats{}, fmt.Errorf("parse revenue %q: %w", revenue, err)
	}
	return s, nil
}
