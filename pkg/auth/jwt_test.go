package auth

import (
	"context"
	"testing"
	"time"

	"github.com/shashiranjanraj/bazaar/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(now *time.Time) *TokenService {
	s := NewTokenService("test-secret", time.Hour, 24*time.Hour, cache.NewMemory())
	s.now = func() time.Time { return *now }
	return s
}

func TestIssueResolveRoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)

	token, err := s.Issue(Principal{ID: 7, Role: RoleSeller})
	require.NoError(t, err)

	p, err := s.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Principal{ID: 7, Role: RoleSeller}, p)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)
	ctx := context.Background()

	_, err := s.Resolve(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)

	other := NewTokenService("other-secret", time.Hour, time.Hour, nil)
	foreign, err := other.Issue(Principal{ID: 1, Role: RoleAdmin})
	require.NoError(t, err)
	_, err = s.Resolve(ctx, foreign)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveRejectsExpired(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)

	token, err := s.Issue(Principal{ID: 1, Role: RoleBuyer})
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = s.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)
	ctx := context.Background()

	token, err := s.Issue(Principal{ID: 3, Role: RoleShopOwner})
	require.NoError(t, err)
	require.NoError(t, s.Revoke(ctx, token))

	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)
	ctx := context.Background()

	old, err := s.Issue(Principal{ID: 5, Role: RoleSeller})
	require.NoError(t, err)

	// Expired for access, still inside the refresh window.
	now = now.Add(3 * time.Hour)
	fresh, p, err := s.Refresh(ctx, old)
	require.NoError(t, err)
	assert.Equal(t, uint(5), p.ID)
	assert.NotEqual(t, old, fresh)

	_, err = s.Resolve(ctx, fresh)
	require.NoError(t, err)

	_, _, err = s.Refresh(ctx, old)
	assert.ErrorIs(t, err, ErrUnauthorized, "an old token can be refreshed once")
}

func TestRefreshWindowCloses(t *testing.T) {
	now := time.Now()
	s := newTestService(&now)

	token, err := s.Issue(Principal{ID: 5, Role: RoleSeller})
	require.NoError(t, err)

	now = now.Add(25 * time.Hour)
	_, _, err = s.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{ID: 9, Role: RoleAdmin})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.True(t, p.IsAdmin())
}
