package engine

import (
	"errors"
	"fmt"

	"aliados/internal/report"
)

var (
	ErrUnauthenticated = errors.New("caller is not logged in")
	ErrUnlinked        = errors.New("caller has no home partner")
)

// AuthPrompt asks for credentials. It is also the reply to a failed login,
// so it never says which credential was wrong.
func AuthPrompt() string {
	return report.GlyphAuth + " Please enter your username and password (e.g. CLARO 1198)"
}

// Greeting welcomes a caller after a successful login.
func Greeting(username string) string {
	return fmt.Sprintf("%s Hello %s! You can now ask me about performance, goal attainment or period comparisons.",
		report.GlyphSuccess, username)
}

// Unlinked tells a partner user their account has no partner assigned.
func Unlinked() string {
	return report.GlyphError + " Your account is not linked to a partner. Please contact the administrator."
}

// Apology replaces any answer that failed unexpectedly.
func Apology(incidentID string) string {
	return fmt.Sprintf("%s Something went wrong while processing your request (ref %s).", report.GlyphError, incidentID)
}

