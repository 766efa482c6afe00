package auth

// Grant types aceptados por Token.
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

const TokenTypeBearer = "Bearer"

// LoginRequest autentica por password y emite un authorization code.
type LoginRequest struct {
	Email               string
	Password            string
	ClientID            string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	State               string
}

// AuthorizeRequest emite un code para un usuario ya autenticado (bearer).
type AuthorizeRequest struct {
	UserID              string
	ClientID            string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	State               string
}

// CodeResult lleva el code en claro: es la única vez que existe fuera del caller.
type CodeResult struct {
	Code        string `json:"code"`
	ExpiresIn   int    `json:"expires_in"`
	RedirectURI string `json:"redirect_uri"`
	State       string `json:"state,omitempty"`
}

// TokenRequest unifica los dos grants; GrantType decide qué campos aplican.
type TokenRequest struct {
	GrantType    string
	Code         string
	RedirectURI  string
	ClientID     string
	CodeVerifier string
	RefreshToken string
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type RegisterRequest struct {
	Email    string
	Password string
}

// PublicUser es la vista de usuario que se puede devolver al caller.
type PublicUser struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}
