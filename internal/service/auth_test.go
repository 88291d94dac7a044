package service

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/tokens"
	"github.com/brewhollow/shop-backend/internal/tokenstore"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.TokenRecord{}))

	return &AuthService{
		DB:            db,
		Store:         tokenstore.New(db),
		AccessSecret:  []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    30 * 24 * time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "smith", "alice@example.com", "test_password")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "test_password", user.PasswordHash)

	loggedIn, pair, err := svc.Login(ctx, "alice@example.com", "test_password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	accessClaims, err := tokens.Parse(pair.AccessToken, tokens.TypeAccess, svc.AccessSecret)
	require.NoError(t, err)
	refreshClaims, err := tokens.Parse(pair.RefreshToken, tokens.TypeRefresh, svc.RefreshSecret)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", accessClaims.Subject)
	assert.Equal(t, "alice@example.com", refreshClaims.Subject)
	assert.NotEqual(t, accessClaims.ID, refreshClaims.ID)

	for _, jti := range []string{accessClaims.ID, refreshClaims.ID} {
		revoked, err := svc.Store.IsRevoked(ctx, jti)
		require.NoError(t, err)
		assert.False(t, revoked)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "smith", "alice@example.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "other", "person", "alice@example.com", "pw2")
	assert.ErrorIs(t, err, ErrEmailInUse)
}

func TestLoginUnknownUser(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "smith", "alice@example.com", "correct")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrPasswordIncorrect)
}

func TestIssueAccessMintsFreshJTI(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		access, err := svc.IssueAccess(ctx, "alice@example.com")
		require.NoError(t, err)

		claims, err := tokens.Parse(access, tokens.TypeAccess, svc.AccessSecret)
		require.NoError(t, err)

		_, dup := seen[claims.ID]
		require.False(t, dup, "refresh must mint a previously unseen jti")
		seen[claims.ID] = struct{}{}

		revoked, err := svc.Store.IsRevoked(ctx, claims.ID)
		require.NoError(t, err)
		assert.False(t, revoked)
	}
}

func TestRevokePassthrough(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(t)
	ctx := context.Background()

	access, err := svc.IssueAccess(ctx, "alice@example.com")
	require.NoError(t, err)
	claims, err := tokens.Parse(access, tokens.TypeAccess, svc.AccessSecret)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, claims.ID))
	revoked, err := svc.Store.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
