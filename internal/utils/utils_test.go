package utils

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

func TestJWTRoundTrip(t *testing.T) {
	s, err := GenerateJWT(7, "secret", time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), s.ExpiresAt, time.Minute)

	claims, err := ParseJWT(s.Token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, s.ID, claims.ID)

	other, err := GenerateJWT(7, "secret", time.Now())
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)
}

func TestParseJWTRejects(t *testing.T) {
	valid, err := GenerateJWT(7, "secret", time.Now())
	require.NoError(t, err)
	expired, err := GenerateJWT(7, "secret", time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name, token, secret string
	}{
		{name: "wrong secret", token: valid.Token, secret: "other"},
		{name: "expired", token: expired.Token, secret: "secret"},
		{name: "garbage", token: "not-a-token", secret: "secret"},
		{name: "unsigned", token: none, secret: "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJWT(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestCacheAside(t *testing.T) {
	rdb, mr := newRedis(t)
	ctx := context.Background()

	var got []string
	hit, err := GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, SetCache(ctx, rdb, "k", []string{"a", "b"}, time.Minute))
	hit, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, got)

	mr.FastForward(2 * time.Minute)
	hit, err = GetCache(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, mr.Set("bad", "{"))
	hit, err = GetCache(ctx, rdb, "bad", &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestDeleteCachePattern(t *testing.T) {
	rdb, mr := newRedis(t)
	ctx := context.Background()

	for i := 0; i < 250; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("summary:1:%d", i), "x"))
	}
	require.NoError(t, mr.Set("summary:2:0", "x"))
	require.NoError(t, mr.Set("categories", "x"))

	require.NoError(t, DeleteCachePattern(ctx, rdb, "summary:1:*"))
	assert.Equal(t, []string{"categories", "summary:2:0"}, mr.Keys())

	require.NoError(t, DeleteCache(ctx, rdb, "categories", "summary:2:0"))
	assert.Empty(t, mr.Keys())
	require.NoError(t, DeleteCache(ctx, rdb))
}

func TestRevokeToken(t *testing.T) {
	rdb, mr := newRedis(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, rdb, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, rdb, "abc", time.Now().Add(time.Hour)))
	revoked, err = IsTokenRevoked(ctx, rdb, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = IsTokenRevoked(ctx, rdb, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, rdb, "old", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(revokedPrefix+"old"))
}

func TestNilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	var dest map[string]int
	hit, err := GetCache(ctx, nil, "k", &dest)
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, SetCache(ctx, nil, "k", 1, time.Minute))
	assert.NoError(t, DeleteCache(ctx, nil, "k"))
	assert.NoError(t, DeleteCachePattern(ctx, nil, "*"))
	assert.NoError(t, RevokeToken(ctx, nil, "id", time.Now().Add(time.Hour)))
	revoked, err := IsTokenRevoked(ctx, nil, "id")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
