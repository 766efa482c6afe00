package jwt_test

import (
	"crypto"
	"encoding/json"
	"strings"
	"testing"
	"time"

	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mustKeys(t *testing.T, kind string) *jwtx.KeyMaterial {
	t.Helper()
	signer, err := jwtx.GenerateKey(kind)
	require.NoError(t, err)
	km, err := jwtx.NewKeyMaterial(signer)
	require.NoError(t, err)
	return km
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newCodec(t *testing.T, km *jwtx.KeyMaterial, c *clock) *jwtx.Codec {
	t.Helper()
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		Keys:      km,
		Issuer:    "https://auth.example",
		Audience:  "api",
		AccessTTL: 10 * time.Minute,
		Now:       c.Now,
	})
	require.NoError(t, err)
	return codec
}

func TestSignVerify_RoundTrip(t *testing.T) {
	for _, kind := range []string{"rsa", "ed25519"} {
		t.Run(kind, func(t *testing.T) {
			c := &clock{t: time.Unix(1_700_000_000, 0)}
			codec := newCodec(t, mustKeys(t, kind), c)

			tok, exp, err := codec.Sign("u1", []string{"user", "admin"}, "c1")
			require.NoError(t, err)
			require.Equal(t, c.t.Add(10*time.Minute).Unix(), exp.Unix())

			claims, err := codec.Verify(tok)
			require.NoError(t, err)
			require.Equal(t, "u1", claims.Subject)
			require.Equal(t, []string{"user", "admin"}, claims.Roles)
			require.Equal(t, "c1", claims.ClientID)
			require.Equal(t, "https://auth.example", claims.Issuer)
			require.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())

			parsed, _, err := jwtv5.NewParser().ParseUnverified(tok, jwtv5.MapClaims{})
			require.NoError(t, err)
			require.Equal(t, codec.KeyID(), parsed.Header["kid"])
		})
	}
}

func TestVerify_CorruptedSignature(t *testing.T) {
	c := &clock{t: time.Now()}
	codec := newCodec(t, mustKeys(t, "rsa"), c)
	tok, _, err := codec.Sign("u1", nil, "c1")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	_, err = codec.Verify(parts[0] + "." + parts[1] + "." + string(sig))
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	_, err = codec.Verify("not-a-jwt")
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerify_ForeignKey(t *testing.T) {
	c := &clock{t: time.Now()}
	ours := newCodec(t, mustKeys(t, "rsa"), c)
	theirs := newCodec(t, mustKeys(t, "rsa"), c)

	tok, _, err := theirs.Sign("u1", nil, "c1")
	require.NoError(t, err)
	_, err = ours.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	codec := newCodec(t, mustKeys(t, "ed25519"), c)
	tok, exp, err := codec.SignWithTTL("u1", nil, "c1", time.Minute)
	require.NoError(t, err)

	c.t = exp.Add(-time.Second)
	_, err = codec.Verify(tok)
	require.NoError(t, err)

	// exp == now ya no es válido
	c.t = exp
	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrTokenExpired)
}

func TestVerify_ClaimMismatch(t *testing.T) {
	c := &clock{t: time.Now()}
	km := mustKeys(t, "rsa")
	codec := newCodec(t, km, c)

	other, err := jwtx.NewCodec(jwtx.CodecConfig{Keys: km, Issuer: "https://evil.example", Audience: "api", AccessTTL: time.Minute, Now: c.Now})
	require.NoError(t, err)
	tok, _, err := other.Sign("u1", nil, "c1")
	require.NoError(t, err)
	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrClaimMismatch)

	otherAud, err := jwtx.NewCodec(jwtx.CodecConfig{Keys: km, Issuer: "https://auth.example", Audience: "other", AccessTTL: time.Minute, Now: c.Now})
	require.NoError(t, err)
	tok, _, err = otherAud.Sign("u1", nil, "c1")
	require.NoError(t, err)
	_, err = codec.Verify(tok)
	require.ErrorIs(t, err, jwtx.ErrClaimMismatch)
}

func TestVerify_RejectsUnexpectedKid(t *testing.T) {
	c := &clock{t: time.Now()}
	signer, err := jwtx.GenerateKey("rsa")
	require.NoError(t, err)
	km, err := jwtx.NewKeyMaterial(signer)
	require.NoError(t, err)
	codec := newCodec(t, km, c)

	claims := jwtv5.RegisteredClaims{
		Issuer:    "https://auth.example",
		Subject:   "u1",
		Audience:  jwtv5.ClaimStrings{"api"},
		ExpiresAt: jwtv5.NewNumericDate(c.t.Add(time.Minute)),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, claims)
	tk.Header["kid"] = "someone-else"
	raw, err := tk.SignedString(signer)
	require.NoError(t, err)

	_, err = codec.Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidToken)

	// sin exp tampoco
	tk = jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, jwtv5.RegisteredClaims{Issuer: "https://auth.example", Subject: "u1", Audience: jwtv5.ClaimStrings{"api"}})
	tk.Header["kid"] = km.KID()
	raw, err = tk.SignedString(signer)
	require.NoError(t, err)
	_, err = codec.Verify(raw)
	require.Error(t, err)
}

func TestKeySet_PublishesKid(t *testing.T) {
	km := mustKeys(t, "rsa")
	codec := newCodec(t, km, &clock{t: time.Now()})

	var doc struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(codec.KeySetJSON(), &doc))
	require.Len(t, doc.Keys, 1)
	k := doc.Keys[0]
	require.Equal(t, codec.KeyID(), k["kid"])
	require.Equal(t, "sig", k["use"])
	require.Equal(t, "RS256", k["alg"])
	require.Equal(t, "RSA", k["kty"])
	require.NotContains(t, k, "d")

	// mismo resultado en cada llamada, y el caller no puede mutarlo
	a := codec.KeySetJSON()
	a[0] = 'X'
	require.Equal(t, byte('{'), codec.KeySetJSON()[0])
	require.Equal(t, codec.KeyID(), codec.KeySet().Keys[0].KeyID)
}

func TestDeriveKeyID_StableForSameKey(t *testing.T) {
	signer, err := jwtx.GenerateKey("ed25519")
	require.NoError(t, err)
	priv, pub, err := jwtx.EncodePEM(signer)
	require.NoError(t, err)

	a, err := jwtx.LoadKeyMaterial(priv, pub)
	require.NoError(t, err)
	b, err := jwtx.LoadKeyMaterial(priv, nil)
	require.NoError(t, err)
	require.Equal(t, a.KID(), b.KID())
	require.Equal(t, "EdDSA", a.Algorithm())

	kid, err := jwtx.DeriveKeyID(signer.Public())
	require.NoError(t, err)
	require.Equal(t, kid, a.KID())
}

func TestLoadKeyMaterial_Errors(t *testing.T) {
	_, err := jwtx.LoadKeyMaterial([]byte("garbage"), nil)
	require.ErrorIs(t, err, jwtx.ErrNoPEMBlock)

	s1, err := jwtx.GenerateKey("rsa")
	require.NoError(t, err)
	s2, err := jwtx.GenerateKey("rsa")
	require.NoError(t, err)
	priv1, _, err := jwtx.EncodePEM(s1)
	require.NoError(t, err)
	_, pub2, err := jwtx.EncodePEM(s2)
	require.NoError(t, err)

	_, err = jwtx.LoadKeyMaterial(priv1, pub2)
	require.ErrorIs(t, err, jwtx.ErrPublicKeyMismatch)

	var nilSigner crypto.Signer
	_, err = jwtx.NewKeyMaterial(nilSigner)
	require.ErrorIs(t, err, jwtx.ErrUnsupportedKey)
}
