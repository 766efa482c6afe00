package auth

import (
	"strings"

	svc "github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
)

// TokenRequest es el body de POST /auth/token, discriminado por grant_type.
type TokenRequest struct {
	GrantType    string `json:"grant_type"`
	Code         string `json:"code,omitempty"`
	RedirectURI  string `json:"redirect_uri,omitempty"`
	ClientID     string `json:"client_id"`
	CodeVerifier string `json:"code_verifier,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// FromForm completa el request desde application/x-www-form-urlencoded.
func (r *TokenRequest) FromForm(get func(string) string) {
	r.GrantType = get("grant_type")
	r.Code = get("code")
	r.RedirectURI = get("redirect_uri")
	r.ClientID = get("client_id")
	r.CodeVerifier = get("code_verifier")
	r.RefreshToken = get("refresh_token")
}

func (r *TokenRequest) Normalize() {
	r.GrantType = strings.TrimSpace(r.GrantType)
	r.Code = strings.TrimSpace(r.Code)
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.CodeVerifier = strings.TrimSpace(r.CodeVerifier)
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
}

func (r TokenRequest) Validate() error {
	var v helpers.Validator
	switch r.GrantType {
	case svc.GrantAuthorizationCode:
		v.MinLen("code", r.Code, MinCodeLen)
		v.URL("redirect_uri", r.RedirectURI)
		v.Required("client_id", r.ClientID)
		v.MinLen("code_verifier", r.CodeVerifier, MinVerifierLen)
	case svc.GrantRefreshToken:
		v.MinLen("refresh_token", r.RefreshToken, MinRefreshLen)
		v.Required("client_id", r.ClientID)
	case "":
		v.Required("grant_type", r.GrantType)
	default:
		return errors.ErrUnsupportedGrantType
	}
	return v.Err()
}

func (r TokenRequest) ToService() svc.TokenRequest {
	return svc.TokenRequest{
		GrantType:    r.GrantType,
		Code:         r.Code,
		RedirectURI:  r.RedirectURI,
		ClientID:     r.ClientID,
		CodeVerifier: r.CodeVerifier,
		RefreshToken: r.RefreshToken,
	}
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
}

func (r *LogoutRequest) Normalize() {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	r.ClientID = strings.TrimSpace(r.ClientID)
}

func (r LogoutRequest) Validate() error {
	var v helpers.Validator
	v.MinLen("refresh_token", r.RefreshToken, MinRefreshLen)
	v.Required("client_id", r.ClientID)
	return v.Err()
}
