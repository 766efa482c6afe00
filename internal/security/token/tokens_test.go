package tokens

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSHA256Base64URL_KnownVector(t *testing.T) {
	// sha256("abc")
	require.Equal(t, "ungWv48Bz-pBQUDeXa4iI7ADYaOWF3qctBD_YfIAFa0", SHA256Base64URL("abc"))
}

func TestGenerateOpaqueToken_Lengths(t *testing.T) {
	code, hash, err := NewAuthCode()
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(code)
	require.NoError(t, err)
	require.Len(t, raw, AuthCodeBytes)
	require.Equal(t, SHA256Base64URL(code), hash)

	rt, _, err := NewRefreshToken()
	require.NoError(t, err)
	raw, err = base64.RawURLEncoding.DecodeString(rt)
	require.NoError(t, err)
	require.Len(t, raw, RefreshTokenBytes)
	require.NotEqual(t, code, rt)

	_, err = GenerateOpaqueToken(0)
	require.Error(t, err)
}
