// Package auth verifies credentials against the configured credential
// stores and turns a stored user into a caller identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"aliados/internal/logger"
	"aliados/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidUser        = errors.New("invalid user")
)

// Store looks up credential records by username.
type Store interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// dummyHash is compared against when the username is unknown so both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("aliados-unknown-user"), bcrypt.DefaultCost)
	return h
})

// Authenticator checks username/password pairs.
type Authenticator struct {
	store Store
	log   logger.Logger
}

// NewAuthenticator creates an authenticator over store.
func NewAuthenticator(store Store, log logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Authenticator{store: store, log: log.With(map[string]interface{}{"component": "auth"})}
}

// Login returns the caller identity for a valid username and password.
// Every rejection is ErrInvalidCredentials; store failures are returned
// as they are.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := a.store.GetUser(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
		a.log.Info("login rejected", map[string]interface{}{"username": username, "reason": "unknown user"})
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		a.log.Info("login rejected", map[string]interface{}{"username": user.Username, "reason": "password mismatch"})
		return nil, ErrInvalidCredentials
	}

	a.log.Info("login succeeded", map[string]interface{}{"username": user.Username, "role": user.Role})
	return user.Identity(), nil
}

// Lookup returns the identity of a user that was authenticated elsewhere,
// such as through single sign-on.
func (a *Authenticator) Lookup(ctx context.Context, username string) (*models.Identity, error) {
	user, err := a.store.GetUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// HashPassword returns a bcrypt hash suitable for a credential store.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// validateUser rejects records an identity cannot be built from.
func validateUser(u *models.User) error {
	switch {
	case strings.TrimSpace(u.Username) == "":
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	case strings.ContainsAny(u.Username, " \t\n"):
		return fmt.Errorf("%w: username %q contains whitespace", ErrInvalidUser, u.Username)
	case !models.ValidRole(u.Role):
		return fmt.Errorf("%w: %s has unknown role %q", ErrInvalidUser, u.Username, u.Role)
	case u.Role == models.RolePartner && strings.TrimSpace(u.HomePartner) == "":
		return fmt.Errorf("%w: partner user %s has no home partner", ErrInvalidUser, u.Username)
	}
	if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
		return fmt.Errorf("%w: %s password is not a bcrypt hash", ErrInvalidUser, u.Username)
	}
	return nil
}
