package repository

import (
	"context"
	"time"
)

// RefreshToken representa un token de refresco. Solo se guarda el hash.
type RefreshToken struct {
	ID         string
	UserID     string
	ClientID   string
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string // id del token que lo reemplazó en una rotación
}

// Active reporta si el token es utilizable en now: no revocado y now < expires_at.
func (t *RefreshToken) Active(now time.Time) bool {
	return t != nil && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}

// CreateRefreshTokenInput contiene los datos para crear un refresh token.
type CreateRefreshTokenInput struct {
	UserID    string
	ClientID  string
	TokenHash string
	ExpiresAt time.Time
}

// RefreshTokenRepository define operaciones sobre refresh tokens.
type RefreshTokenRepository interface {
	// Create inserta un token nuevo. ErrConflict si el hash ya existe.
	Create(ctx context.Context, input CreateRefreshTokenInput) (*RefreshToken, error)

	// FindValid retorna el token si está activo. ErrNotFound si no existe,
	// expiró o fue revocado.
	FindValid(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// FindByHash retorna el token en cualquier estado (detección de reuso).
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// Revoke marca revoked_at (y replaced_by si no es vacío). Idempotente:
	// un token ya revocado no se modifica.
	Revoke(ctx context.Context, tokenID, replacedBy string) error

	// Rotate inserta el token nuevo y revoca el viejo enlazando replaced_by,
	// todo en una unidad atómica. ErrConflict si el viejo ya no está activo;
	// en ese caso no se persiste nada.
	Rotate(ctx context.Context, oldID string, input CreateRefreshTokenInput) (*RefreshToken, error)

	// RevokeDescendants sigue la cadena replaced_by desde tokenID y revoca
	// cada descendiente activo. Retorna cuántos revocó.
	RevokeDescendants(ctx context.Context, tokenID string) (int, error)
}
