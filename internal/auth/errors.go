package auth

import "errors"

// Errores del motor de tokens. Son un set cerrado: la capa HTTP los traduce
// a status + código OAuth2 en internal/http/errors.
//
// ErrInvalidGrant no distingue causa (code inexistente, consumido, expirado,
// verifier incorrecto, client distinto, token revocado).
var (
	ErrUnknownClient      = errors.New("unknown client")
	ErrInvalidRedirectURI = errors.New("invalid redirect_uri")
	ErrInvalidGrant       = errors.New("invalid grant")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrEmailExists        = errors.New("email already registered")
	ErrUnsupportedGrant   = errors.New("unsupported grant_type")
)
