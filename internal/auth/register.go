package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/password"
)

// Register crea un usuario con rol "user". El email se normaliza a minúsculas.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*PublicUser, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.register"),
		logger.Op("Register"),
	)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: email", ErrInvalidRequest)
	}
	if err := s.deps.PasswordPolicy.Check(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	phc, err := password.Hash(s.deps.PasswordParams, in.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	u, err := s.deps.Users.Create(ctx, repository.CreateUserInput{
		Email:        email,
		PasswordHash: phc,
		Roles:        []string{repository.RoleUser},
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Info("register: email exists")
			return nil, ErrEmailExists
		}
		log.Error("create user failed", logger.Err(err))
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	audit.Log(ctx, audit.UserRegistered, logger.UserID(u.ID))
	return toPublic(u), nil
}

// Me devuelve el usuario dueño de un access token ya verificado.
func (s *Service) Me(ctx context.Context, userID string) (*PublicUser, error) {
	u, err := s.resolveRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPublic(u), nil
}

func toPublic(u *repository.UserWithRoles) *PublicUser {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return &PublicUser{ID: u.ID, Email: u.Email, Roles: roles}
}
