package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	svc "github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
)

type fakeService struct {
	login    svc.LoginRequest
	token    svc.TokenRequest
	logout   [2]string
	err      error
	codeRes  *svc.CodeResult
	tokenRes *svc.TokenResponse
}

func (f *fakeService) Register(_ context.Context, in svc.RegisterRequest) (*svc.PublicUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &svc.PublicUser{ID: "u1", Email: in.Email, Roles: []string{"user"}}, nil
}

func (f *fakeService) Login(_ context.Context, in svc.LoginRequest) (*svc.CodeResult, error) {
	f.login = in
	return f.codeRes, f.err
}

func (f *fakeService) Authorize(_ context.Context, in svc.AuthorizeRequest) (*svc.CodeResult, error) {
	return &svc.CodeResult{Code: "code-for-" + in.UserID, ExpiresIn: 300, RedirectURI: in.RedirectURI, State: in.State}, f.err
}

func (f *fakeService) Token(_ context.Context, in svc.TokenRequest) (*svc.TokenResponse, error) {
	f.token = in
	return f.tokenRes, f.err
}

func (f *fakeService) Logout(_ context.Context, rt, clientID string) error {
	f.logout = [2]string{rt, clientID}
	return f.err
}

func (f *fakeService) Me(_ context.Context, userID string) (*svc.PublicUser, error) {
	return &svc.PublicUser{ID: userID, Email: "ana@example.com", Roles: []string{"user"}}, f.err
}

var (
	challenge = strings.Repeat("c", 43)
	verifier  = strings.Repeat("v", 43)
	code      = strings.Repeat("k", 64)
	refresh   = strings.Repeat("r", 86)
)

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

func TestRegister(t *testing.T) {
	f := &fakeService{}
	c := NewControllers(f)

	rr := postJSON(c.Register.Register, `{"email":"ana@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "ana@example.com", decode(t, rr)["email"])

	rr = postJSON(c.Register.Register, `{"email":"ana@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	f.err = svc.ErrEmailExists
	rr = postJSON(c.Register.Register, `{"email":"ana@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "email_exists", decode(t, rr)["error"])
}

func TestLogin(t *testing.T) {
	f := &fakeService{codeRes: &svc.CodeResult{Code: code, ExpiresIn: 300, RedirectURI: "https://a/cb", State: "s1"}}
	c := NewControllers(f)

	body := `{"email":" ana@example.com ","password":"password123","client_id":"c1",` +
		`"redirect_uri":"https://a/cb","code_challenge":"` + challenge + `","code_challenge_method":"S256","state":"s1"}`
	rr := postJSON(c.Login.Login, body)
	require.Equal(t, http.StatusOK, rr.Code)

	m := decode(t, rr)
	assert.Equal(t, code, m["code"])
	assert.Equal(t, "s1", m["state"])
	assert.EqualValues(t, 300, m["expires_in"])
	assert.Equal(t, "ana@example.com", f.login.Email)

	f.codeRes, f.err = nil, svc.ErrInvalidCredentials
	rr = postJSON(c.Login.Login, body)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid_credentials", decode(t, rr)["error"])

	rr = postJSON(c.Login.Login, strings.Replace(body, "S256", "plain", 1))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_request", decode(t, rr)["error"])
}

func TestAuthorize(t *testing.T) {
	c := NewControllers(&fakeService{})
	q := url.Values{
		"response_type":         {"code"},
		"client_id":             {"c1"},
		"redirect_uri":          {"https://a/cb"},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
		"state":                 {"abc"},
	}

	rr := httptest.NewRecorder()
	c.Authorize.Authorize(rr, httptest.NewRequest(http.MethodGet, "/auth/authorize?"+q.Encode(), nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/auth/authorize?"+q.Encode(), nil)
	req = req.WithContext(middlewares.WithClaims(req.Context(), &jwtx.AccessClaims{}))
	rr = httptest.NewRecorder()
	c.Authorize.Authorize(rr, req)
	// claims sin sub equivalen a no tener token
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	claims := &jwtx.AccessClaims{}
	claims.Subject = "u1"
	req = httptest.NewRequest(http.MethodGet, "/auth/authorize?"+q.Encode(), nil)
	req = req.WithContext(middlewares.WithClaims(req.Context(), claims))
	rr = httptest.NewRecorder()
	c.Authorize.Authorize(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	m := decode(t, rr)
	assert.Equal(t, "code-for-u1", m["code"])
	assert.Equal(t, "abc", m["state"])
}

func TestToken(t *testing.T) {
	f := &fakeService{tokenRes: &svc.TokenResponse{AccessToken: "at", TokenType: "Bearer", ExpiresIn: 600, RefreshToken: refresh}}
	c := NewControllers(f)

	rr := postJSON(c.Token.Token, `{"grant_type":"authorization_code","code":"`+code+
		`","redirect_uri":"https://a/cb","client_id":"c1","code_verifier":"`+verifier+`"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bearer", decode(t, rr)["token_type"])
	assert.Equal(t, verifier, f.token.CodeVerifier)

	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refresh}, "client_id": {"c1"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	c.Token.Token(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, refresh, f.token.RefreshToken)

	rr = postJSON(c.Token.Token, `{"grant_type":"password","client_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "unsupported_grant_type", decode(t, rr)["error"])

	f.tokenRes, f.err = nil, svc.ErrInvalidGrant
	rr = postJSON(c.Token.Token, `{"grant_type":"refresh_token","refresh_token":"`+refresh+`","client_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_grant", decode(t, rr)["error"])
}

func TestLogout(t *testing.T) {
	f := &fakeService{}
	c := NewControllers(f)

	rr := postJSON(c.Logout.Logout, `{"refresh_token":"`+refresh+`","client_id":"c1"}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, [2]string{refresh, "c1"}, f.logout)

	rr = postJSON(c.Logout.Logout, `{"refresh_token":"short","client_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	f.err = svc.ErrInvalidGrant
	rr = postJSON(c.Logout.Logout, `{"refresh_token":"`+refresh+`","client_id":"c2"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMe(t *testing.T) {
	c := NewControllers(&fakeService{})
	claims := &jwtx.AccessClaims{}
	claims.Subject = "u9"

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req = req.WithContext(middlewares.WithClaims(req.Context(), claims))
	rr := httptest.NewRecorder()
	c.Me.Me(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u9", decode(t, rr)["id"])
}
