package models

import (
	"time"

	"github.com/google/uuid"
)

// Role constants
const (
	RoleAdmin   = "admin"
	RolePartner = "partner"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RolePartner
}

// User is a credential record as held by a credential store.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`         // admin, partner
	HomePartner  string    `json:"home_partner"` // required for partner users
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user is an admin.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Identity returns the caller identity this user logs in as.
func (u *User) Identity() *Identity {
	id := &Identity{
		Username: u.Username,
		Role:     u.Role,
	}
	if !u.IsAdmin() {
		id.HomePartner = u.HomePartner
	}
	return id
}
