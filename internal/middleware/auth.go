package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"aliados/internal/logger"
	"aliados/internal/models"
)

// LocalsIdentity is the fiber.Locals key of the caller identity.
const LocalsIdentity = "identity"

// IdentityLookup resolves a user authenticated outside the password flow.
type IdentityLookup interface {
	Lookup(ctx context.Context, username string) (*models.Identity, error)
}

// AuthMiddleware loads the caller identity from the session.
type AuthMiddleware struct {
	store   IdentityStore
	lookup  IdentityLookup
	useMTLS bool
	log     logger.Logger
}

// NewAuthMiddleware creates a new auth middleware instance. When useMTLS is
// set, a verified client certificate logs the caller in without a password.
func NewAuthMiddleware(store IdentityStore, lookup IdentityLookup, useMTLS bool, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &AuthMiddleware{store: store, lookup: lookup, useMTLS: useMTLS, log: log}
}

// IdentityFrom returns the identity loaded for this request, if any.
func IdentityFrom(c fiber.Ctx) *models.Identity {
	id, _ := c.Locals(LocalsIdentity).(*models.Identity)
	return id
}

// LoadIdentity loads the identity if the caller is logged in, but doesn't
// require it.
func (m *AuthMiddleware) LoadIdentity(c fiber.Ctx) error {
	id := m.store.Get(c)
	if id == nil && m.useMTLS {
		id = m.certificateIdentity(c)
	}
	if id != nil {
		c.Locals(LocalsIdentity, id)
	}
	return c.Next()
}

// RequireIdentity rejects callers that have not logged in.
func (m *AuthMiddleware) RequireIdentity(c fiber.Ctx) error {
	if IdentityFrom(c) == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "authentication required",
		})
	}
	return c.Next()
}

// RequireAdmin ensures the caller is an admin.
func (m *AuthMiddleware) RequireAdmin(c fiber.Ctx) error {
	id := IdentityFrom(c)
	if id == nil {
		return m.RequireIdentity(c)
	}
	if !id.IsAdmin() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"status": "error",
			"error":  "admin access required",
		})
	}
	return c.Next()
}

// certificateIdentity logs in the owner of a verified client certificate
// and keeps them in the session.
func (m *AuthMiddleware) certificateIdentity(c fiber.Ctx) *models.Identity {
	if m.lookup == nil {
		return nil
	}
	state := c.RequestCtx().TLSConnectionState()
	if state == nil || len(state.PeerCertificates) == 0 {
		return nil
	}
	username := extractUsernameFromCN(state.PeerCertificates[0].Subject.CommonName)
	if username == "" {
		return nil
	}
	id, err := m.lookup.Lookup(c.Context(), username)
	if err != nil {
		m.log.Warn("client certificate user not found", map[string]interface{}{"username": username, "error": err.Error()})
		return nil
	}
	if err := m.store.Put(c, id); err != nil {
		m.log.Warn("failed to store certificate identity", map[string]interface{}{"error": err.Error()})
	}
	return id
}

// extractUsernameFromCN pulls the username out of a "Full Name (username)"
// certificate common name.
func extractUsernameFromCN(cn string) string {
	cn = strings.TrimSpace(cn)
	if !strings.HasSuffix(cn, ")") {
		return ""
	}
	open := strings.LastIndex(cn, "(")
	if open < 0 {
		return ""
	}
	inner := cn[open+1 : len(cn)-1]
	if strings.ContainsAny(inner, "()") {
		return ""
	}
	return strings.TrimSpace(inner)
}
