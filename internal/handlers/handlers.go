package handlers

import (
	"context"

	"aliados/internal/models"
)

// Login results reported to a LoginRecorder.
const (
	LoginSucceeded = "success"
	LoginRejected  = "rejected"
	LoginFailed    = "error"
)

// Authenticator checks chat login attempts.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.Identity, error)
}

// LoginRecorder counts login attempts by result.
type LoginRecorder interface {
	ObserveLogin(result string)
}

type nopLoginRecorder struct{}

func (nopLoginRecorder) ObserveLogin(string) {}
