package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, "Secret123", h)

	require.True(t, CheckPassword(h, "Secret123"))
	require.False(t, CheckPassword(h, "secret123"))
	require.False(t, CheckPassword("not-a-hash", "Secret123"))
}
