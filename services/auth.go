package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"pizza-palace/models"
)

// Authenticator checks credentials and returns the matching user, or ErrInvalidCredentials.
type Authenticator interface {
	Authenticate(ctx context.Context, creds models.Credentials) (*models.User, error)
}

// DemoAccount is a hard-coded login for local use.
type DemoAccount struct {
	User     models.User
	Password string
}

var DemoAccounts = []DemoAccount{
	{User: models.User{ID: "1", Name: "Admin User", Email: "admin@pizzahut.com", Role: models.RoleAdmin}, Password: "admin123"},
	{User: models.User{ID: "2", Name: "John Doe", Email: "user@example.com", Role: models.RoleCustomer}, Password: "user123"},
}

type demoEntry struct {
	user models.User
	hash []byte
}

// DemoAuthenticator knows only DemoAccounts. Replace it with a real identity provider.
type DemoAuthenticator struct {
	accounts map[string]demoEntry
}

func NewDemoAuthenticator(accounts []DemoAccount) (*DemoAuthenticator, error) {
	a := &DemoAuthenticator{accounts: make(map[string]demoEntry, len(accounts))}
	for _, acc := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password for %s: %w", acc.User.Email, err)
		}
		a.accounts[normalizeEmail(acc.User.Email)] = demoEntry{user: acc.User, hash: hash}
	}
	return a, nil
}

func (a *DemoAuthenticator) Authenticate(_ context.Context, creds models.Credentials) (*models.User, error) {
	e, ok := a.accounts[normalizeEmail(creds.Email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(e.hash, []byte(creds.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	u := e.user
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Auth ties the authenticator, the login throttle and the session table together.
type Auth struct {
	authn    Authenticator
	throttle *LoginThrottle
	sessions *Sessions
}

func NewAuth(authn Authenticator, throttle *LoginThrottle, sessions *Sessions) *Auth {
	return &Auth{authn: authn, throttle: throttle, sessions: sessions}
}

// Login returns a session token for valid credentials. While the email is cooling down
// after failures it returns ErrTooManyAttempts and the seconds left.
func (a *Auth) Login(ctx context.Context, creds models.Credentials) (token string, user *models.User, wait int, err error) {
	key := normalizeEmail(creds.Email)
	if key == "" || creds.Password == "" {
		return "", nil, 0, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if wait := a.throttle.WaitSeconds(key); wait > 0 {
		return "", nil, wait, ErrTooManyAttempts
	}
	user, err = a.authn.Authenticate(ctx, creds)
	if err != nil {
		a.throttle.RecordFailed(key)
		return "", nil, 0, err
	}
	a.throttle.RecordSuccess(key)
	return a.sessions.Create(*user), user, 0, nil
}

func (a *Auth) Logout(token string) {
	a.sessions.Delete(token)
}

// Resolve returns the user behind a session token, or ErrUnauthorized when the token is
// empty, unknown or expired.
func (a *Auth) Resolve(token string) (*models.User, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: login required", ErrUnauthorized)
	}
	u, ok := a.sessions.Get(token)
	if !ok {
		return nil, fmt.Errorf("%w: session expired or unknown", ErrUnauthorized)
	}
	return u, nil
}
