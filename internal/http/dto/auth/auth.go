// Package auth contiene los DTOs HTTP de /auth y sus reglas de validación.
package auth

import (
	"strings"

	svc "github.com/dropDatabas3/authcore/internal/auth"
	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/security/pkce"
)

// Largos mínimos de los valores opacos. Los codes y refresh tokens emitidos
// son más largos; esto filtra basura antes de tocar los stores.
const (
	MinPasswordLen  = 8
	MinFullNameLen  = 3
	MinChallengeLen = 43
	MinVerifierLen  = 43
	MinCodeLen      = 32
	MinRefreshLen   = 32
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
}

func (r RegisterRequest) Validate() error {
	var v helpers.Validator
	v.Email("email", r.Email)
	v.MinLen("password", r.Password, MinPasswordLen)
	if r.FullName != "" {
		v.MinLen("fullName", r.FullName, MinFullNameLen)
	}
	return v.Err()
}

func (r RegisterRequest) ToService() svc.RegisterRequest {
	return svc.RegisterRequest{Email: r.Email, Password: r.Password}
}

// CodeRequest son los campos comunes a login y authorize.
type CodeRequest struct {
	ClientID            string `json:"client_id"`
	RedirectURI         string `json:"redirect_uri"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
	State               string `json:"state,omitempty"`
}

func (r *CodeRequest) normalize() {
	r.ClientID = strings.TrimSpace(r.ClientID)
	// redirect_uri se compara tal cual contra las URIs registradas
	r.CodeChallenge = strings.TrimSpace(r.CodeChallenge)
	r.CodeChallengeMethod = strings.TrimSpace(r.CodeChallengeMethod)
}

func (r CodeRequest) validate(v *helpers.Validator) {
	v.Required("client_id", r.ClientID)
	v.URL("redirect_uri", r.RedirectURI)
	v.MinLen("code_challenge", r.CodeChallenge, MinChallengeLen)
	v.Equals("code_challenge_method", r.CodeChallengeMethod, pkce.MethodS256)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	CodeRequest
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.normalize()
}

func (r LoginRequest) Validate() error {
	var v helpers.Validator
	v.Email("email", r.Email)
	v.MinLen("password", r.Password, MinPasswordLen)
	r.validate(&v)
	return v.Err()
}

func (r LoginRequest) ToService() svc.LoginRequest {
	return svc.LoginRequest{
		Email:               r.Email,
		Password:            r.Password,
		ClientID:            r.ClientID,
		RedirectURI:         r.RedirectURI,
		CodeChallenge:       r.CodeChallenge,
		CodeChallengeMethod: r.CodeChallengeMethod,
		State:               r.State,
	}
}

// AuthorizeRequest viaja en la query string de GET /auth/authorize.
type AuthorizeRequest struct {
	ResponseType string
	CodeRequest
}

// AuthorizeFromQuery lee los parámetros con get (ej: r.URL.Query().Get).
func AuthorizeFromQuery(get func(string) string) AuthorizeRequest {
	r := AuthorizeRequest{
		ResponseType: strings.TrimSpace(get("response_type")),
		CodeRequest: CodeRequest{
			ClientID:            get("client_id"),
			RedirectURI:         get("redirect_uri"),
			CodeChallenge:       get("code_challenge"),
			CodeChallengeMethod: get("code_challenge_method"),
			State:               get("state"),
		},
	}
	r.normalize()
	return r
}

func (r AuthorizeRequest) Validate() error {
	var v helpers.Validator
	v.Equals("response_type", r.ResponseType, "code")
	r.validate(&v)
	return v.Err()
}

func (r AuthorizeRequest) ToService(userID string) svc.AuthorizeRequest {
	return svc.AuthorizeRequest{
		UserID:              userID,
		ClientID:            r.ClientID,
		RedirectURI:         r.RedirectURI,
		CodeChallenge:       r.CodeChallenge,
		CodeChallengeMethod: r.CodeChallengeMethod,
		State:               r.State,
	}
}
