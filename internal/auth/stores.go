package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aliados/internal/config"
	"aliados/internal/db"
	"aliados/internal/models"
	"aliados/internal/partners"
)

// FileStore holds the users listed in the YAML directory file.
type FileStore struct {
	users map[string]*models.User
}

// NewFileStore validates the configured users. Home partners are stored
// in canonical form.
func NewFileStore(users []config.UserConfig) (*FileStore, error) {
	s := &FileStore{users: make(map[string]*models.User, len(users))}
	for _, uc := range users {
		u := &models.User{
			Username:     strings.TrimSpace(uc.Username),
			PasswordHash: uc.PasswordHash,
			Role:         strings.ToLower(strings.TrimSpace(uc.Role)),
			HomePartner:  partners.Canonical(uc.HomePartner),
		}
		if err := validateUser(u); err != nil {
			return nil, err
		}
		key := strings.ToLower(u.Username)
		if _, dup := s.users[key]; dup {
			return nil, fmt.Errorf("%w: duplicate username %s", ErrInvalidUser, u.Username)
		}
		s.users[key] = u
	}
	return s, nil
}

// Len returns the number of users.
func (s *FileStore) Len() int { return len(s.users) }

func (s *FileStore) GetUser(_ context.Context, username string) (*models.User, error) {
	u, ok := s.users[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UserGetter is the part of the database the Postgres store needs.
type UserGetter interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// PostgresStore reads users from the users table.
type PostgresStore struct {
	db UserGetter
}

// NewPostgresStore creates a store over database.
func NewPostgresStore(database UserGetter) *PostgresStore {
	return &PostgresStore{db: database}
}

func (s *PostgresStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	u, err := s.db.GetUserByUsername(ctx, username)
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	u.HomePartner = partners.Canonical(u.HomePartner)
	if err := validateUser(u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChainStore asks each store in turn; the first one that knows the user
// answers.
type ChainStore []Store

func (c ChainStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	for _, s := range c {
		u, err := s.GetUser(ctx, username)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		return u, err
	}
	return nil, ErrUserNotFound
}
