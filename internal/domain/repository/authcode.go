package repository

import (
	"context"
	"time"
)

// AuthCode es un authorization code pendiente de canje. Solo se guarda el hash.
type AuthCode struct {
	CodeHash            string    `json:"code_hash"`
	UserID              string    `json:"user_id"`
	ClientID            string    `json:"client_id"`
	RedirectURI         string    `json:"redirect_uri"`
	CodeChallenge       string    `json:"code_challenge"`
	CodeChallengeMethod string    `json:"code_challenge_method"`
	CreatedAt           time.Time `json:"created_at"`
	ExpiresAt           time.Time `json:"expires_at"`
}

// CreateAuthCodeInput contiene los datos para emitir un code.
type CreateAuthCodeInput struct {
	CodeHash            string
	UserID              string
	ClientID            string
	RedirectURI         string
	CodeChallenge       string
	CodeChallengeMethod string
	ExpiresAt           time.Time
}

// AuthCodeRepository guarda codes de un solo uso con expiración.
type AuthCodeRepository interface {
	// Create guarda el code; pisa cualquier entrada con el mismo hash.
	Create(ctx context.Context, input CreateAuthCodeInput) (*AuthCode, error)

	// FindValid retorna el code si existe y no expiró. ErrNotFound si no.
	// Una entrada expirada se elimina como efecto lateral.
	FindValid(ctx context.Context, codeHash string) (*AuthCode, error)

	// Consume elimina el code de forma atómica. Retorna ErrNotFound si otro
	// caller ya lo consumió: de dos canjes concurrentes gana uno solo.
	Consume(ctx context.Context, codeHash string) error
}
