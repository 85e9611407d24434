package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"pizza-palace/models"
	"pizza-palace/services"
)

// Users authenticates against the users table. Passwords are stored as bcrypt hashes.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// Authenticate checks password against the stored hash; returns the user if valid and active.
func (u *Users) Authenticate(ctx context.Context, creds models.Credentials) (*models.User, error) {
	var (
		id       int64
		user     models.User
		role     string
		hash     string
		isActive bool
	)
	err := u.pool.QueryRow(ctx, `
		SELECT id, name, email, role, password_hash, is_active FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(creds.Email)),
	).Scan(&id, &user.Name, &user.Email, &role, &hash, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, services.ErrInvalidCredentials
		}
		return nil, err
	}
	if !isActive {
		return nil, services.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)) != nil {
		return nil, services.ErrInvalidCredentials
	}
	user.ID = strconv.FormatInt(id, 10)
	user.Role = models.Role(role)
	return &user, nil
}

// UpsertUser creates the user or resets its name, role and password. Do not log plainPassword.
func (u *Users) UpsertUser(ctx context.Context, user models.User, plainPassword string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	var id int64
	err = u.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, role, password_hash, is_active, updated_at)
		VALUES ($1, $2, $3, $4, true, now())
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash,
			is_active = true,
			updated_at = now()
		RETURNING id`,
		strings.ToLower(strings.TrimSpace(user.Email)), user.Name, string(user.Role), string(hash),
	).Scan(&id)
	if err != nil {
		return models.User{}, err
	}
	user.ID = strconv.FormatInt(id, 10)
	return user, nil
}

// SeedDemoUsers makes sure every demo account can log in.
func (u *Users) SeedDemoUsers(ctx context.Context, accounts []services.DemoAccount) error {
	for _, acc := range accounts {
		if _, err := u.UpsertUser(ctx, acc.User, acc.Password); err != nil {
			return fmt.Errorf("seed user %s: %w", acc.User.Email, err)
		}
	}
	return nil
}
