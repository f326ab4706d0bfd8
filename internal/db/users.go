package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"aliados/internal/models"
)

// UpsertUser creates or updates a user keyed by case-insensitive username.
func (d *DB) UpsertUser(ctx context.Context, user *models.User) error {
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUser)
	}
	if !models.ValidRole(user.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidUser, user.Role)
	}
	if user.Role == models.RolePartner && strings.TrimSpace(user.HomePartner) == "" {
		return fmt.Errorf("%w: partner user %q needs a home partner", ErrInvalidUser, user.Username)
	}

	query := `
		INSERT INTO users (username, password_hash, role, home_partner)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((LOWER(username))) DO UPDATE SET
			password_hash = COALESCE(NULLIF(EXCLUDED.password_hash, ''), users.password_hash),
			role = EXCLUDED.role,
			home_partner = EXCLUDED.home_partner,
			updated_at = NOW()
		RETURNING id, password_hash, created_at, updated_at
	`

	return d.Pool.QueryRow(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.HomePartner,
	).Scan(&user.ID, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
}

// GetUserByUsername retrieves a user by username, ignoring case.
func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, home_partner, created_at, updated_at
		FROM users WHERE LOWER(username) = LOWER($1)
	`

	var user models.User
	err := d.Pool.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.HomePartner,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers returns all users ordered by username.
func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, username, password_hash, role, home_partner, created_at, updated_at
		FROM users ORDER BY LOWER(username)
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.HomePartner, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user by username.
func (d *DB) DeleteUser(ctx context.Context, username string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM users WHERE LOWER(username) = LOWER($1)`, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
