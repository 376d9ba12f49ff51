package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestAccessRoundTrip(t *testing.T) {
	tok, err := SignAccess(secret, "user-1", "admin", time.Now().Add(time.Minute))
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestAccessExpired(t *testing.T) {
	tok, err := SignAccess(secret, "user-1", "user", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, secret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessWrongSecret(t *testing.T) {
	tok, err := SignAccess(secret, "user-1", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(tok, []byte("other"))
	require.Error(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	tok, err := SignAccess(secret, "user-1", "user", time.Now().Add(time.Minute))
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(tok, secret)
	require.Error(t, err)
}

func TestRefreshRoundTrip(t *testing.T) {
	jti := NewJTI()
	tok, err := SignRefresh(secret, "user-1", jti, time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestSha256HexStable(t *testing.T) {
	assert.Equal(t, Sha256Hex("abc"), Sha256Hex("abc"))
	assert.Len(t, Sha256Hex("abc"), 64)
}
