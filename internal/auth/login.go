package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/password"
	"github.com/dropDatabas3/authcore/internal/security/pkce"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
	"github.com/dropDatabas3/authcore/internal/util"
)

// verifyPassword se reemplaza en tests.
var verifyPassword = password.Verify

// Login autentica por email + password y emite un authorization code ligado
// al challenge PKCE. Client y redirect_uri se validan antes que la credencial.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*CodeResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.login"),
		logger.Op("Login"),
		logger.ClientID(in.ClientID),
	)

	client, err := s.checkClient(ctx, in.ClientID, in.RedirectURI)
	if err != nil {
		log.Debug("client rejected", logger.Err(err))
		return nil, err
	}

	user, err := s.deps.Users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			verifyPassword(in.Password, s.dummyHash)
			audit.Log(ctx, audit.LoginFailed,
				logger.ClientID(in.ClientID),
				logger.Email(util.MaskEmail(in.Email)),
				logger.String("reason", "unknown_email"),
			)
			return nil, ErrInvalidCredentials
		}
		log.Error("user lookup failed", logger.Err(err))
		return nil, fmt.Errorf("auth: get user: %w", err)
	}
	if !verifyPassword(in.Password, user.PasswordHash) {
		audit.Log(ctx, audit.LoginFailed,
			logger.ClientID(in.ClientID),
			logger.UserID(user.ID),
			logger.String("reason", "bad_password"),
		)
		return nil, ErrInvalidCredentials
	}

	return s.issueCode(ctx, user.ID, client, in.RedirectURI, in.CodeChallenge, in.CodeChallengeMethod, in.State)
}

// Authorize emite un code para un usuario ya autenticado por bearer token.
func (s *Service) Authorize(ctx context.Context, in AuthorizeRequest) (*CodeResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.authorize"),
		logger.Op("Authorize"),
		logger.ClientID(in.ClientID),
		logger.UserID(in.UserID),
	)

	if strings.TrimSpace(in.UserID) == "" {
		return nil, ErrInvalidRequest
	}
	client, err := s.checkClient(ctx, in.ClientID, in.RedirectURI)
	if err != nil {
		log.Debug("client rejected", logger.Err(err))
		return nil, err
	}

	return s.issueCode(ctx, in.UserID, client, in.RedirectURI, in.CodeChallenge, in.CodeChallengeMethod, in.State)
}

func (s *Service) checkClient(ctx context.Context, clientID, redirectURI string) (*repository.Client, error) {
	client, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.AllowsRedirect(redirectURI) {
		return nil, ErrInvalidRedirectURI
	}
	return client, nil
}

func (s *Service) issueCode(ctx context.Context, userID string, client *repository.Client, redirectURI, challenge, method, state string) (*CodeResult, error) {
	if !pkce.SupportedMethod(method) || strings.TrimSpace(challenge) == "" {
		return nil, ErrInvalidRequest
	}

	plain, hash, err := tokens.NewAuthCode()
	if err != nil {
		return nil, fmt.Errorf("auth: generate code: %w", err)
	}
	expiresAt := s.now().Add(s.deps.CodeTTL)
	if _, err := s.deps.Codes.Create(ctx, repository.CreateAuthCodeInput{
		CodeHash:            hash,
		UserID:              userID,
		ClientID:            client.ID,
		RedirectURI:         redirectURI,
		CodeChallenge:       challenge,
		CodeChallengeMethod: pkce.MethodS256,
		ExpiresAt:           expiresAt,
	}); err != nil {
		logger.From(ctx).Error("store code failed", logger.Layer("service"), logger.Err(err))
		return nil, fmt.Errorf("auth: store code: %w", err)
	}
	s.deps.Metrics.Issued("code")
	audit.Log(ctx, audit.CodeIssued, logger.UserID(userID), logger.ClientID(client.ID))

	return &CodeResult{
		Code:        plain,
		ExpiresIn:   seconds(s.deps.CodeTTL),
		RedirectURI: redirectURI,
		State:       state,
	}, nil
}
