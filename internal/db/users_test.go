package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"aliados/internal/models"
)

func TestUpsertUser_Create(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{
		Username:     "CLARO",
		PasswordHash: "$2a$10$hash",
		Role:         models.RolePartner,
		HomePartner:  "CLARO",
	}

	if err := db.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser() error = %v", err)
	}
	if user.ID == uuid.Nil {
		t.Error("UpsertUser() did not set ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("UpsertUser() did not set CreatedAt")
	}
}

func TestUpsertUser_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	user := &models.User{Username: "atento", PasswordHash: "$2a$10$first", Role: models.RolePartner, HomePartner: "ATENTO"}
	if err := db.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser() create error = %v", err)
	}
	originalID := user.ID

	// Same username in another case, no new password: keeps the old hash.
	update := &models.User{Username: "ATENTO", Role: models.RoleAdmin}
	if err := db.UpsertUser(ctx, update); err != nil {
		t.Fatalf("UpsertUser() update error = %v", err)
	}
	if update.ID != originalID {
		t.Errorf("UpsertUser() changed ID from %v to %v", originalID, update.ID)
	}
	if update.PasswordHash != "$2a$10$first" {
		t.Errorf("UpsertUser() password hash = %q, want original", update.PasswordHash)
	}

	got, err := db.GetUserByUsername(ctx, "Atento")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if got.Role != models.RoleAdmin {
		t.Errorf("GetUserByUsername() role = %q, want %q", got.Role, models.RoleAdmin)
	}
}

func TestUpsertUser_Invalid(t *testing.T) {
	// Validation happens before any query, so no database is needed.
	db := &DB{}
	ctx := context.Background()

	tests := []struct {
		name string
		user models.User
	}{
		{"empty username", models.User{Role: models.RoleAdmin}},
		{"unknown role", models.User{Username: "x", Role: "owner"}},
		{"partner without home", models.User{Username: "x", Role: models.RolePartner}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.UpsertUser(ctx, &tt.user)
			if !errors.Is(err, ErrInvalidUser) {
				t.Errorf("UpsertUser() error = %v, want ErrInvalidUser", err)
			}
		})
	}
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUserByUsername() error = %v, want ErrUserNotFound", err)
	}
}

func TestListAndDeleteUsers(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	for _, u := range []*models.User{
		{Username: "zeta", Role: models.RoleAdmin},
		{Username: "alpha", Role: models.RolePartner, HomePartner: "COS"},
	} {
		if err := db.UpsertUser(ctx, u); err != nil {
			t.Fatalf("UpsertUser() error = %v", err)
		}
	}

	users, err := db.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[0].Username != "alpha" {
		t.Errorf("ListUsers() = %+v, want alpha first of 2", users)
	}

	if err := db.DeleteUser(ctx, "ZETA"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if err := db.DeleteUser(ctx, "zeta"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("DeleteUser() second time error = %v, want ErrUserNotFound", err)
	}
}
