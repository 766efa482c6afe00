package pg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/migrations/postgres"
)

// Requiere TEST_DATABASE_URL apuntando a una base descartable.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Connect(ctx, Config{DSN: dsn, MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = NewMigrator(postgres.FS, postgres.Dir).Run(ctx, s.Pool())
	require.NoError(t, err)
	return s
}

func seed(t *testing.T, s *Store) (userID, clientID string) {
	t.Helper()
	ctx := context.Background()
	clientID = "c-" + uuid.NewString()
	require.NoError(t, s.Clients().Upsert(ctx, repository.Client{
		ID: clientID, RedirectURIs: []string{"https://a/cb"},
		AccessTokenTTLSeconds: 600, RefreshTokenTTLSeconds: 3600,
	}))
	u, err := s.Users().Create(ctx, repository.CreateUserInput{
		Email: uuid.NewString() + "@example.com", PasswordHash: "phc", Roles: []string{"user"},
	})
	require.NoError(t, err)
	return u.ID, clientID
}

func TestPG_UsersAndClients(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	userID, clientID := seed(t, s)

	u, err := s.Users().GetRolesByID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, []string{"user"}, u.Roles)

	_, err = s.Users().GetRolesByID(ctx, "not-a-uuid")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.Users().Create(ctx, repository.CreateUserInput{Email: u.Email, PasswordHash: "x"})
	require.ErrorIs(t, err, repository.ErrConflict)

	c, err := s.Clients().Get(ctx, clientID)
	require.NoError(t, err)
	require.Equal(t, []string{"https://a/cb"}, c.RedirectURIs)
	require.Equal(t, 3600, c.RefreshTokenTTLSeconds)
}

func TestPG_RefreshRotation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	userID, clientID := seed(t, s)
	repo := s.RefreshTokens()
	exp := time.Now().Add(time.Hour)

	old, err := repo.Create(ctx, repository.CreateRefreshTokenInput{UserID: userID, ClientID: clientID, TokenHash: uuid.NewString(), ExpiresAt: exp})
	require.NoError(t, err)

	newHash := uuid.NewString()
	nt, err := repo.Rotate(ctx, old.ID, repository.CreateRefreshTokenInput{UserID: userID, ClientID: clientID, TokenHash: newHash, ExpiresAt: exp})
	require.NoError(t, err)

	_, err = repo.FindValid(ctx, old.TokenHash)
	require.ErrorIs(t, err, repository.ErrNotFound)
	gotOld, err := repo.FindByHash(ctx, old.TokenHash)
	require.NoError(t, err)
	require.NotNil(t, gotOld.RevokedAt)
	require.Equal(t, nt.ID, *gotOld.ReplacedBy)

	// segunda rotación: conflicto, el hash nuevo no queda persistido
	lost := uuid.NewString()
	_, err = repo.Rotate(ctx, old.ID, repository.CreateRefreshTokenInput{UserID: userID, ClientID: clientID, TokenHash: lost, ExpiresAt: exp})
	require.ErrorIs(t, err, repository.ErrConflict)
	_, err = repo.FindByHash(ctx, lost)
	require.ErrorIs(t, err, repository.ErrNotFound)

	// revocación idempotente
	require.NoError(t, repo.Revoke(ctx, nt.ID, ""))
	require.NoError(t, repo.Revoke(ctx, nt.ID, ""))
	require.ErrorIs(t, repo.Revoke(ctx, uuid.NewString(), ""), repository.ErrNotFound)

	n, err := repo.RevokeDescendants(ctx, old.ID)
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
