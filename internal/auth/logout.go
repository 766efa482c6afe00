package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// Logout revoca el refresh token. Es idempotente: un token desconocido,
// expirado o ya revocado es un no-op exitoso. Un token de otro client
// devuelve ErrInvalidGrant y no se toca.
func (s *Service) Logout(ctx context.Context, refreshToken, clientID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.logout"),
		logger.Op("Logout"),
		logger.ClientID(clientID),
	)

	if refreshToken == "" {
		return nil
	}
	rt, err := s.deps.Refresh.FindValid(ctx, tokens.SHA256Base64URL(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("logout of unknown or inactive token")
			return nil
		}
		log.Error("refresh lookup failed", logger.Err(err))
		return fmt.Errorf("auth: find refresh token: %w", err)
	}
	log = log.With(logger.TokenID(rt.ID), logger.UserID(rt.UserID))

	if rt.ClientID != clientID {
		log.Info("logout client mismatch")
		return ErrInvalidGrant
	}
	if err := s.deps.Refresh.Revoke(ctx, rt.ID, ""); err != nil {
		// revocado entre FindValid y Revoke: el resultado es el mismo
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		log.Error("revoke failed", logger.Err(err))
		return fmt.Errorf("auth: revoke refresh token: %w", err)
	}
	audit.Log(ctx, audit.LoggedOut, logger.TokenID(rt.ID), logger.UserID(rt.UserID), logger.ClientID(clientID))
	return nil
}
