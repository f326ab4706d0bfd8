package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"aliados/internal/auth"
	"aliados/internal/config"
	"aliados/internal/logger"
	"aliados/internal/middleware"
)

// AuthHandler handles OIDC authentication flows. The provider only proves
// who the caller is; role and home partner still come from the credential
// stores.
type AuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	lookup       middleware.IdentityLookup
	ids          middleware.IdentityStore
	logins       LoginRecorder
	cfg          *config.Config
	log          logger.Logger
}

// NewAuthHandler creates a new auth handler with OIDC configuration.
func NewAuthHandler(ctx context.Context, cfg *config.Config, lookup middleware.IdentityLookup, ids middleware.IdentityStore, logins LoginRecorder, log logger.Logger) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		RedirectURL:  cfg.OIDCRedirectURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	if logins == nil {
		logins = nopLoginRecorder{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &AuthHandler{
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     verifier,
		lookup:       lookup,
		ids:          ids,
		logins:       logins,
		cfg:          cfg,
		log:          log.With(map[string]interface{}{"component": "oidc"}),
	}, nil
}

// Login initiates the OIDC login flow.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	state := generateState()

	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}
	sess.Set("oauth_state", state)

	url := h.oauth2Config.AuthCodeURL(state)
	return c.Redirect().To(url)
}

// Callback handles the OIDC callback after authentication.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	// Verify state
	savedState, _ := sess.Get("oauth_state").(string)
	if savedState == "" || savedState != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	sess.Delete("oauth_state")

	// Exchange code for token
	oauth2Token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	// Extract and verify ID token
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}

	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	claimsMap := make(map[string]any)
	if err := idToken.Claims(&claimsMap); err != nil {
		return err
	}

	// Some OIDC providers only include minimal claims in the ID token
	userInfo, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(oauth2Token))
	if err == nil {
		var userInfoClaims map[string]any
		if err := userInfo.Claims(&userInfoClaims); err == nil {
			for k, v := range userInfoClaims {
				claimsMap[k] = v
			}
		}
	} else {
		h.log.Warn("failed to fetch userinfo", map[string]interface{}{"error": err.Error()})
	}

	username := usernameClaim(claimsMap, h.cfg.OIDCUsernameClaim)
	if username == "" {
		h.logins.ObserveLogin(LoginRejected)
		return fiber.NewError(fiber.StatusForbidden, "identity provider did not return a username")
	}

	id, err := h.lookup.Lookup(c.Context(), username)
	if errors.Is(err, auth.ErrUserNotFound) {
		h.logins.ObserveLogin(LoginRejected)
		h.log.Info("sso user has no account", map[string]interface{}{"username": username})
		return fiber.NewError(fiber.StatusForbidden, "your account is not enabled for this assistant")
	}
	if err != nil {
		h.logins.ObserveLogin(LoginFailed)
		return err
	}

	if err := h.ids.Put(c, id); err != nil {
		h.logins.ObserveLogin(LoginFailed)
		return err
	}
	h.logins.ObserveLogin(LoginSucceeded)
	return c.Redirect().To("/")
}

// Logout clears the user session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if err := h.ids.Clear(c); err != nil {
		return err
	}
	return c.Redirect().To("/")
}

// usernameClaim reads a string claim; list claims use their first entry.
func usernameClaim(claims map[string]any, name string) string {
	switch v := claims[name].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			s, _ := v[0].(string)
			return s
		}
	}
	return ""
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
