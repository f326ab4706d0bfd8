package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"aliados/internal/config"
	"aliados/internal/db"
	"aliados/internal/models"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func fileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore([]config.UserConfig{
		{Username: "CLARO", PasswordHash: hash(t, "1198"), Role: "partner", HomePartner: "claro"},
		{Username: "admin", PasswordHash: hash(t, "s3cret"), Role: "admin"},
	})
	require.NoError(t, err)
	return s
}

func TestLogin(t *testing.T) {
	a := NewAuthenticator(fileStore(t), nil)
	ctx := context.Background()

	t.Run("partner", func(t *testing.T) {
		id, err := a.Login(ctx, "claro", "1198")
		require.NoError(t, err)
		assert.Equal(t, &models.Identity{Username: "CLARO", Role: models.RolePartner, HomePartner: "CLARO"}, id)
	})

	t.Run("admin has no home partner", func(t *testing.T) {
		id, err := a.Login(ctx, "admin", "s3cret")
		require.NoError(t, err)
		assert.True(t, id.IsAdmin())
		assert.Empty(t, id.HomePartner)
	})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "CLARO", "0000"},
		{"unknown user", "NEXA", "1198"},
		{"empty username", "", "1198"},
		{"empty password", "CLARO", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Login(ctx, tt.username, tt.password)
			assert.Nil(t, id)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

type failingStore struct{ err error }

func (f failingStore) GetUser(context.Context, string) (*models.User, error) { return nil, f.err }

func TestLoginStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	a := NewAuthenticator(failingStore{err: boom}, nil)

	_, err := a.Login(context.Background(), "CLARO", "1198")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestLookup(t *testing.T) {
	a := NewAuthenticator(fileStore(t), nil)

	id, err := a.Lookup(context.Background(), " claro ")
	require.NoError(t, err)
	assert.Equal(t, "CLARO", id.HomePartner)

	_, err = a.Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestNewFileStoreRejectsInvalidUsers(t *testing.T) {
	good := hash(t, "pw")
	tests := []struct {
		name string
		user config.UserConfig
	}{
		{"partner without home", config.UserConfig{Username: "x", PasswordHash: good, Role: "partner"}},
		{"unknown role", config.UserConfig{Username: "x", PasswordHash: good, Role: "owner"}},
		{"plain text password", config.UserConfig{Username: "x", PasswordHash: "1198", Role: "admin"}},
		{"empty username", config.UserConfig{PasswordHash: good, Role: "admin"}},
		{"username with space", config.UserConfig{Username: "a b", PasswordHash: good, Role: "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFileStore([]config.UserConfig{tt.user})
			assert.ErrorIs(t, err, ErrInvalidUser)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		_, err := NewFileStore([]config.UserConfig{
			{Username: "root", PasswordHash: good, Role: "admin"},
			{Username: "ROOT", PasswordHash: good, Role: "admin"},
		})
		assert.ErrorIs(t, err, ErrInvalidUser)
	})
}

type fakeDB struct {
	users map[string]*models.User
}

func (f fakeDB) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func TestPostgresStore(t *testing.T) {
	s := NewPostgresStore(fakeDB{users: map[string]*models.User{
		"nexa":   {Username: "nexa", PasswordHash: hash(t, "pw"), Role: "partner", HomePartner: "Nexa"},
		"broken": {Username: "broken", PasswordHash: hash(t, "pw"), Role: "partner"},
	}})
	ctx := context.Background()

	u, err := s.GetUser(ctx, "nexa")
	require.NoError(t, err)
	assert.Equal(t, "NEXA", u.HomePartner)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = s.GetUser(ctx, "broken")
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestChainStore(t *testing.T) {
	files := fileStore(t)
	pg := NewPostgresStore(fakeDB{users: map[string]*models.User{
		"NEXA": {Username: "NEXA", PasswordHash: hash(t, "pw"), Role: "partner", HomePartner: "NEXA"},
	}})
	a := NewAuthenticator(ChainStore{files, pg}, nil)
	ctx := context.Background()

	id, err := a.Login(ctx, "CLARO", "1198")
	require.NoError(t, err)
	assert.Equal(t, "CLARO", id.HomePartner)

	id, err = a.Login(ctx, "NEXA", "pw")
	require.NoError(t, err)
	assert.Equal(t, "NEXA", id.HomePartner)

	_, err = a.Login(ctx, "ghost", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("1198")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("1198")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
