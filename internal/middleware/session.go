package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"aliados/internal/models"
)

// Session keys holding the caller identity.
const (
	sessionUsername    = "username"
	sessionRole        = "role"
	sessionHomePartner = "home_partner"
)

var ErrNoSession = errors.New("session not available")

// IdentityStore keeps the caller identity for the duration of a session.
type IdentityStore interface {
	Get(c fiber.Ctx) *models.Identity
	Put(c fiber.Ctx, id *models.Identity) error
	Clear(c fiber.Ctx) error
}

// SessionIdentityStore stores the identity in the Fiber session installed
// by the session middleware.
type SessionIdentityStore struct{}

// NewSessionIdentityStore creates a session backed identity store.
func NewSessionIdentityStore() *SessionIdentityStore {
	return &SessionIdentityStore{}
}

// Get returns the stored identity, or nil when the caller has not logged in.
func (SessionIdentityStore) Get(c fiber.Ctx) *models.Identity {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	username, _ := sess.Get(sessionUsername).(string)
	role, _ := sess.Get(sessionRole).(string)
	if username == "" || !models.ValidRole(role) {
		return nil
	}
	home, _ := sess.Get(sessionHomePartner).(string)
	return &models.Identity{Username: username, Role: role, HomePartner: home}
}

// Put stores id under a fresh session id.
func (SessionIdentityStore) Put(c fiber.Ctx, id *models.Identity) error {
	sess := session.FromContext(c)
	if sess == nil {
		return ErrNoSession
	}
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(sessionUsername, id.Username)
	sess.Set(sessionRole, id.Role)
	sess.Set(sessionHomePartner, id.HomePartner)
	return nil
}

// Clear ends the session.
func (SessionIdentityStore) Clear(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return nil
	}
	return sess.Destroy()
}
