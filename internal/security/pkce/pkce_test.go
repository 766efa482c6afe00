package pkce

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChallenge_RFC7636Vector(t *testing.T) {
	// RFC 7636 Appendix B
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", Challenge(verifier))
	require.True(t, Verify(MethodS256, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", verifier))
}

func TestVerify_Rejects(t *testing.T) {
	v := NewVerifier()
	require.Len(t, v, 43)
	ch := Challenge(v)

	require.False(t, Verify("plain", v, v))
	require.False(t, Verify(MethodS256, ch, v+"x"))
	require.False(t, Verify(MethodS256, "", v))
	require.False(t, Verify(MethodS256, ch, ""))
	require.True(t, Verify(MethodS256, ch, v))
}
