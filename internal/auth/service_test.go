package auth_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/security/pkce"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/store/authcode"
	"github.com/dropDatabas3/authcore/internal/store/memory"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "correct-horse-battery"
	redirect     = "https://a/cb"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type harness struct {
	svc     *auth.Service
	clk     *clock
	codec   *jwtx.Codec
	refresh *memory.RefreshTokens
	userID  string
	reg     *prometheus.Registry
}

func newHarness(t *testing.T, mutate ...func(*auth.Deps)) *harness {
	t.Helper()
	clk := &clock{t: time.Unix(1_700_000_000, 0).UTC()}

	signer, err := jwtx.GenerateKey("ed25519")
	require.NoError(t, err)
	km, err := jwtx.NewKeyMaterial(signer)
	require.NoError(t, err)
	codec, err := jwtx.NewCodec(jwtx.CodecConfig{
		Keys:      km,
		Issuer:    "https://auth.example",
		Audience:  "api",
		AccessTTL: 10 * time.Minute,
		Now:       clk.Now,
	})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	refresh := memory.NewRefreshTokens(memory.WithClock(clk.Now))
	d := auth.Deps{
		Users: memory.NewUsers(memory.WithClock(clk.Now)),
		Clients: memory.NewClients(
			repository.Client{ID: "c1", RedirectURIs: []string{redirect}},
			repository.Client{ID: "c2", RedirectURIs: []string{"https://b/cb"}, AccessTokenTTLSeconds: 60, RefreshTokenTTLSeconds: 3600},
		),
		Codes:          authcode.New(cache.NewMemory(""), 10*time.Minute, authcode.WithClock(clk.Now)),
		Refresh:        refresh,
		Codec:          codec,
		Metrics:        m,
		CodeTTL:        300 * time.Second,
		RefreshTTL:     30 * 24 * time.Hour,
		PasswordPolicy: password.DefaultPolicy,
		PasswordParams: password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32},
		Now:            clk.Now,
	}
	for _, fn := range mutate {
		fn(&d)
	}
	svc, err := auth.NewService(d)
	require.NoError(t, err)

	u, err := svc.Register(context.Background(), auth.RegisterRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)

	return &harness{svc: svc, clk: clk, codec: codec, refresh: refresh, userID: u.ID, reg: reg}
}

// login emite un code para c1 y devuelve code + verifier.
func (h *harness) login(t *testing.T) (string, string) {
	t.Helper()
	verifier := pkce.NewVerifier()
	res, err := h.svc.Login(context.Background(), auth.LoginRequest{
		Email:               testEmail,
		Password:            testPassword,
		ClientID:            "c1",
		RedirectURI:         redirect,
		CodeChallenge:       pkce.Challenge(verifier),
		CodeChallengeMethod: pkce.MethodS256,
	})
	require.NoError(t, err)
	return res.Code, verifier
}

func (h *harness) exchange(code, verifier string) (*auth.TokenResponse, error) {
	return h.svc.Token(context.Background(), auth.TokenRequest{
		GrantType:    auth.GrantAuthorizationCode,
		Code:         code,
		RedirectURI:  redirect,
		ClientID:     "c1",
		CodeVerifier: verifier,
	})
}

func (h *harness) refreshWith(token, clientID string) (*auth.TokenResponse, error) {
	return h.svc.Token(context.Background(), auth.TokenRequest{
		GrantType:    auth.GrantRefreshToken,
		RefreshToken: token,
		ClientID:     clientID,
	})
}

func TestLoginAndExchange(t *testing.T) {
	h := newHarness(t)
	verifier := pkce.NewVerifier()

	res, err := h.svc.Login(context.Background(), auth.LoginRequest{
		Email:               "  ANA@example.com ",
		Password:            testPassword,
		ClientID:            "c1",
		RedirectURI:         redirect,
		CodeChallenge:       pkce.Challenge(verifier),
		CodeChallengeMethod: "S256",
		State:               "xyz",
	})
	require.NoError(t, err)
	assert.Len(t, res.Code, 64) // 48 bytes en base64url
	assert.Equal(t, 300, res.ExpiresIn)
	assert.Equal(t, redirect, res.RedirectURI)
	assert.Equal(t, "xyz", res.State)

	tok, err := h.exchange(res.Code, verifier)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, 600, tok.ExpiresIn)
	assert.Len(t, tok.RefreshToken, 86) // 64 bytes en base64url

	claims, err := h.codec.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, h.userID, claims.Subject)
	assert.Equal(t, []string{repository.RoleUser}, claims.Roles)
	assert.Equal(t, "c1", claims.ClientID)

	// solo el hash se persiste
	rt, err := h.refresh.FindValid(context.Background(), tokens.SHA256Base64URL(tok.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, "c1", rt.ClientID)
	assert.Equal(t, h.clk.Now().Add(30*24*time.Hour), rt.ExpiresAt)

	n, err := testutil.GatherAndCount(h.reg, "authcore_grants_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExchange_SingleRedemption(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)

	_, err := h.exchange(code, verifier)
	require.NoError(t, err)

	_, err = h.exchange(code, verifier)
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
}

func TestExchange_WrongVerifierKeepsCode(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)

	_, err := h.exchange(code, pkce.NewVerifier())
	require.ErrorIs(t, err, auth.ErrInvalidGrant)

	_, err = h.exchange(code, verifier)
	require.NoError(t, err)
}

func TestExchange_BindingMismatchKeepsCode(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)
	ctx := context.Background()

	_, err := h.svc.ExchangeAuthorizationCode(ctx, code, "https://a/cb2", "c1", verifier)
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
	_, err = h.svc.ExchangeAuthorizationCode(ctx, code, redirect, "c2", verifier)
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
	_, err = h.svc.ExchangeAuthorizationCode(ctx, "", redirect, "c1", verifier)
	require.ErrorIs(t, err, auth.ErrInvalidGrant)

	_, err = h.svc.ExchangeAuthorizationCode(ctx, code, redirect, "c1", verifier)
	require.NoError(t, err)
}

func TestExchange_ExpiredCode(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)

	// expiresAt == now ya no es válido
	h.clk.Advance(300 * time.Second)
	_, err := h.exchange(code, verifier)
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
}

func TestExchange_ConcurrentRedemption(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)

	var ok, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.exchange(code, verifier)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, auth.ErrInvalidGrant):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(15), rejected.Load())
}

func TestLogin_Errors(t *testing.T) {
	h := newHarness(t)
	verifier := pkce.NewVerifier()
	base := auth.LoginRequest{
		Email:               testEmail,
		Password:            testPassword,
		ClientID:            "c1",
		RedirectURI:         redirect,
		CodeChallenge:       pkce.Challenge(verifier),
		CodeChallengeMethod: pkce.MethodS256,
	}

	cases := []struct {
		name   string
		mutate func(r *auth.LoginRequest)
		want   error
	}{
		// client y redirect se validan antes que la credencial
		{"unknown client", func(r *auth.LoginRequest) { r.ClientID = "nope"; r.Password = "bad" }, auth.ErrUnknownClient},
		{"empty client", func(r *auth.LoginRequest) { r.ClientID = "" }, auth.ErrUnknownClient},
		{"redirect not registered", func(r *auth.LoginRequest) { r.RedirectURI = "https://a/cb/"; r.Password = "bad" }, auth.ErrInvalidRedirectURI},
		{"wrong password", func(r *auth.LoginRequest) { r.Password = "wrong-password" }, auth.ErrInvalidCredentials},
		{"unknown email", func(r *auth.LoginRequest) { r.Email = "bob@example.com" }, auth.ErrInvalidCredentials},
		{"plain method", func(r *auth.LoginRequest) { r.CodeChallengeMethod = "plain" }, auth.ErrInvalidRequest},
		{"empty challenge", func(r *auth.LoginRequest) { r.CodeChallenge = "" }, auth.ErrInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := h.svc.Login(context.Background(), req)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthorize(t *testing.T) {
	h := newHarness(t)
	verifier := pkce.NewVerifier()
	ctx := context.Background()

	res, err := h.svc.Authorize(ctx, auth.AuthorizeRequest{
		UserID:              h.userID,
		ClientID:            "c2",
		RedirectURI:         "https://b/cb",
		CodeChallenge:       pkce.Challenge(verifier),
		CodeChallengeMethod: pkce.MethodS256,
		State:               "s1",
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", res.State)

	// TTLs propios del client c2
	tok, err := h.svc.ExchangeAuthorizationCode(ctx, res.Code, "https://b/cb", "c2", verifier)
	require.NoError(t, err)
	assert.Equal(t, 60, tok.ExpiresIn)
	claims, err := h.codec.Verify(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, h.clk.Now().Add(time.Minute).Unix(), claims.ExpiresAt.Unix())

	rt, err := h.refresh.FindValid(ctx, tokens.SHA256Base64URL(tok.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, h.clk.Now().Add(time.Hour), rt.ExpiresAt)

	_, err = h.svc.Authorize(ctx, auth.AuthorizeRequest{ClientID: "c2", RedirectURI: "https://b/cb"})
	require.ErrorIs(t, err, auth.ErrInvalidRequest)
	_, err = h.svc.Authorize(ctx, auth.AuthorizeRequest{UserID: h.userID, ClientID: "c2", RedirectURI: redirect})
	require.ErrorIs(t, err, auth.ErrInvalidRedirectURI)
}

func TestExchange_UserGone(t *testing.T) {
	h := newHarness(t)
	verifier := pkce.NewVerifier()
	res, err := h.svc.Authorize(context.Background(), auth.AuthorizeRequest{
		UserID:              "ghost",
		ClientID:            "c1",
		RedirectURI:         redirect,
		CodeChallenge:       pkce.Challenge(verifier),
		CodeChallengeMethod: pkce.MethodS256,
	})
	require.NoError(t, err)

	_, err = h.exchange(res.Code, verifier)
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestRefresh_Rotation(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)
	first, err := h.exchange(code, verifier)
	require.NoError(t, err)

	second, err := h.refreshWith(first.RefreshToken, "c1")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	_, err = h.codec.Verify(second.AccessToken)
	require.NoError(t, err)

	// el viejo queda revocado y enlazado al nuevo
	ctx := context.Background()
	old, err := h.refresh.FindByHash(ctx, tokens.SHA256Base64URL(first.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, old.RevokedAt)
	nt, err := h.refresh.FindValid(ctx, tokens.SHA256Base64URL(second.RefreshToken))
	require.NoError(t, err)
	require.NotNil(t, old.ReplacedBy)
	assert.Equal(t, nt.ID, *old.ReplacedBy)

	_, err = h.refreshWith(first.RefreshToken, "c1")
	require.ErrorIs(t, err, auth.ErrInvalidGrant)

	third, err := h.refreshWith(second.RefreshToken, "c1")
	require.NoError(t, err)
	assert.NotEmpty(t, third.RefreshToken)
}

func TestRefresh_ClientMismatchLeavesTokenValid(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)
	tok, err := h.exchange(code, verifier)
	require.NoError(t, err)

	_, err = h.refreshWith(tok.RefreshToken, "c2")
	require.ErrorIs(t, err, auth.ErrInvalidGrant)

	_, err = h.refreshWith(tok.RefreshToken, "c1")
	require.NoError(t, err)
}

func TestRefresh_Expired(t *testing.T) {
	h := newHarness(t)
	code, verifier := h.login(t)
	tok, err := h.exchange(code, verifier)
	require.NoError(t, err)

	h.clk.Advance(30 * 24 * time.Hour)
	_, err = h.refreshWith(tok.RefreshToken, "c1")
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
}

func TestRefresh_ReusePolicy(t *testing.T) {
	for _, tc := range []struct {
		policy        string
		descendantsOK bool
	}{
		{auth.ReusePolicyNone, true},
		{auth.ReusePolicyCascade, false},
	} {
		t.Run(tc.policy, func(t *testing.T) {
			h := newHarness(t, func(d *auth.Deps) { d.ReusePolicy = tc.policy })
			code, verifier := h.login(t)
			t1, err := h.exchange(code, verifier)
			require.NoError(t, err)
			t2, err := h.refreshWith(t1.RefreshToken, "c1")
			require.NoError(t, err)

			// reuso del token ya rotado
			_, err = h.refreshWith(t1.RefreshToken, "c1")
			require.ErrorIs(t, err, auth.ErrInvalidGrant)

			_, err = h.refreshWith(t2.RefreshToken, "c1")
			if tc.descendantsOK {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, auth.ErrInvalidGrant)
			}
		})
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	h := newHarness(t)
	_, err := h.refreshWith("never-issued-token-value-aaaaaaaaaa", "c1")
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
	_, err = h.refreshWith("", "c1")
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	code, verifier := h.login(t)
	tok, err := h.exchange(code, verifier)
	require.NoError(t, err)

	require.ErrorIs(t, h.svc.Logout(ctx, tok.RefreshToken, "c2"), auth.ErrInvalidGrant)
	require.NoError(t, h.svc.Logout(ctx, tok.RefreshToken, "c1"))
	// idempotente
	require.NoError(t, h.svc.Logout(ctx, tok.RefreshToken, "c1"))
	require.NoError(t, h.svc.Logout(ctx, "unknown", "c1"))
	require.NoError(t, h.svc.Logout(ctx, "", "c1"))

	_, err = h.refreshWith(tok.RefreshToken, "c1")
	require.ErrorIs(t, err, auth.ErrInvalidGrant)
}

func TestToken_UnsupportedGrant(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Token(context.Background(), auth.TokenRequest{GrantType: "password"})
	require.ErrorIs(t, err, auth.ErrUnsupportedGrant)
}

func TestRegisterAndMe(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Register(ctx, auth.RegisterRequest{Email: "Ana@Example.com", Password: "another-password"})
	require.ErrorIs(t, err, auth.ErrEmailExists)

	_, err = h.svc.Register(ctx, auth.RegisterRequest{Email: "not-an-email", Password: testPassword})
	require.ErrorIs(t, err, auth.ErrInvalidRequest)

	_, err = h.svc.Register(ctx, auth.RegisterRequest{Email: "bob@example.com", Password: "short"})
	require.ErrorIs(t, err, auth.ErrInvalidRequest)
	require.ErrorIs(t, err, password.ErrWeakPassword)

	u, err := h.svc.Register(ctx, auth.RegisterRequest{Email: "Bob@Example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", u.Email)
	assert.Equal(t, []string{repository.RoleUser}, u.Roles)

	me, err := h.svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, me)

	_, err = h.svc.Me(ctx, "ghost")
	require.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestNewService_Validation(t *testing.T) {
	_, err := auth.NewService(auth.Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Users")
	assert.Contains(t, err.Error(), "Codec")

	h := newHarness(t)
	require.NotNil(t, h.svc)

	_, err = auth.NewService(auth.Deps{
		Users:       memory.NewUsers(),
		Clients:     memory.NewClients(),
		Codes:       authcode.New(cache.NewMemory(""), time.Minute),
		Refresh:     memory.NewRefreshTokens(),
		Codec:       h.codec,
		ReusePolicy: "burn-everything",
	})
	require.Error(t, err)
}
