package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/security/pkce"
	"github.com/dropDatabas3/authcore/internal/store/authcode"
	"github.com/dropDatabas3/authcore/internal/store/memory"
)

func TestLogin_UnknownEmailRunsArgon2(t *testing.T) {
	signer, err := jwtx.GenerateKey("ed25519")
	require.NoError(t, err)
	km, err := jwtx.NewKeyMaterial(signer)
	require.NoError(t, err)
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{Keys: km, Issuer: "https://auth.example", Audience: "api", AccessTTL: time.Minute})
	require.NoError(t, err)

	params := password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}
	s, err := NewService(Deps{
		Users:          memory.NewUsers(),
		Clients:        memory.NewClients(repository.Client{ID: "c1", RedirectURIs: []string{"https://a/cb"}}),
		Codes:          authcode.New(cache.NewMemory(""), time.Minute),
		Refresh:        memory.NewRefreshTokens(),
		Codec:          codec,
		PasswordPolicy: password.DefaultPolicy,
		PasswordParams: params,
	})
	require.NoError(t, err)

	// mismos params que un usuario registrado
	require.True(t, strings.HasPrefix(s.dummyHash, "$argon2id$v=19$m=8192,t=1,p=1$"))

	var calls []string
	orig := verifyPassword
	verifyPassword = func(plain, phc string) bool {
		calls = append(calls, phc)
		return orig(plain, phc)
	}
	t.Cleanup(func() { verifyPassword = orig })

	_, err = s.Login(context.Background(), LoginRequest{
		Email:               "nobody@example.com",
		Password:            "whatever-password",
		ClientID:            "c1",
		RedirectURI:         "https://a/cb",
		CodeChallenge:       pkce.Challenge(pkce.NewVerifier()),
		CodeChallengeMethod: pkce.MethodS256,
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, []string{s.dummyHash}, calls)
}
