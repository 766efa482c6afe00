package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authcore/internal/audit"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
	"github.com/dropDatabas3/authcore/internal/security/pkce"
	tokens "github.com/dropDatabas3/authcore/internal/security/token"
)

// Token despacha por grant_type.
func (s *Service) Token(ctx context.Context, in TokenRequest) (*TokenResponse, error) {
	switch strings.TrimSpace(in.GrantType) {
	case GrantAuthorizationCode:
		return s.ExchangeAuthorizationCode(ctx, in.Code, in.RedirectURI, in.ClientID, in.CodeVerifier)
	case GrantRefreshToken:
		return s.ExchangeRefreshToken(ctx, in.RefreshToken, in.ClientID)
	default:
		return nil, ErrUnsupportedGrant
	}
}

// ExchangeAuthorizationCode canjea un code por un par access/refresh.
//
// Un verifier incorrecto no consume el code. De dos canjes concurrentes del
// mismo code, a lo sumo uno obtiene tokens.
func (s *Service) ExchangeAuthorizationCode(ctx context.Context, code, redirectURI, clientID, verifier string) (resp *TokenResponse, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.token"),
		logger.Op("ExchangeAuthorizationCode"),
		logger.GrantType(GrantAuthorizationCode),
		logger.ClientID(clientID),
	)
	defer func() { s.observeGrant(GrantAuthorizationCode, err) }()

	if code == "" {
		return nil, ErrInvalidGrant
	}
	hash := tokens.SHA256Base64URL(code)

	ac, err := s.deps.Codes.FindValid(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info("code not found or expired")
			return nil, ErrInvalidGrant
		}
		log.Error("code lookup failed", logger.Err(err))
		return nil, fmt.Errorf("auth: find code: %w", err)
	}
	log = log.With(logger.UserID(ac.UserID))

	if ac.ClientID != clientID || ac.RedirectURI != redirectURI {
		log.Info("code binding mismatch")
		return nil, ErrInvalidGrant
	}
	if !pkce.Verify(ac.CodeChallengeMethod, ac.CodeChallenge, verifier) {
		log.Info("pkce verification failed")
		return nil, ErrInvalidGrant
	}

	if err := s.deps.Codes.Consume(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("code already consumed")
			return nil, ErrInvalidGrant
		}
		log.Error("code consume failed", logger.Err(err))
		return nil, fmt.Errorf("auth: consume code: %w", err)
	}

	client, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	user, err := s.resolveRoles(ctx, ac.UserID)
	if err != nil {
		return nil, err
	}
	lt := s.lifetimesFor(client)

	resp, refreshHash, err := s.mint(user, client.ID, lt)
	if err != nil {
		return nil, err
	}
	rt, err := s.deps.Refresh.Create(ctx, repository.CreateRefreshTokenInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		TokenHash: refreshHash,
		ExpiresAt: s.now().Add(lt.refresh),
	})
	if err != nil {
		log.Error("store refresh token failed", logger.Err(err))
		return nil, fmt.Errorf("auth: store refresh token: %w", err)
	}
	s.issued()
	audit.Log(ctx, audit.CodeRedeemed, logger.UserID(user.ID), logger.ClientID(client.ID), logger.TokenID(rt.ID))
	return resp, nil
}

// ExchangeRefreshToken rota el refresh token presentado. Un token de otro
// client se rechaza sin modificarlo.
func (s *Service) ExchangeRefreshToken(ctx context.Context, refreshToken, clientID string) (resp *TokenResponse, err error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.token"),
		logger.Op("ExchangeRefreshToken"),
		logger.GrantType(GrantRefreshToken),
		logger.ClientID(clientID),
	)
	defer func() { s.observeGrant(GrantRefreshToken, err) }()

	if refreshToken == "" {
		return nil, ErrInvalidGrant
	}
	hash := tokens.SHA256Base64URL(refreshToken)

	old, err := s.deps.Refresh.FindValid(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.handleReuse(ctx, hash, log)
			return nil, ErrInvalidGrant
		}
		log.Error("refresh lookup failed", logger.Err(err))
		return nil, fmt.Errorf("auth: find refresh token: %w", err)
	}
	log = log.With(logger.TokenID(old.ID), logger.UserID(old.UserID))

	if old.ClientID != clientID {
		log.Info("refresh token client mismatch")
		return nil, ErrInvalidGrant
	}

	client, err := s.resolveClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	user, err := s.resolveRoles(ctx, old.UserID)
	if err != nil {
		return nil, err
	}
	lt := s.lifetimesFor(client)

	resp, newHash, err := s.mint(user, client.ID, lt)
	if err != nil {
		return nil, err
	}
	rt, err := s.deps.Refresh.Rotate(ctx, old.ID, repository.CreateRefreshTokenInput{
		UserID:    user.ID,
		ClientID:  client.ID,
		TokenHash: newHash,
		ExpiresAt: s.now().Add(lt.refresh),
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			log.Warn("refresh token rotated concurrently")
			return nil, ErrInvalidGrant
		}
		log.Error("rotate failed", logger.Err(err))
		return nil, fmt.Errorf("auth: rotate refresh token: %w", err)
	}

	s.issued()
	audit.Log(ctx, audit.RefreshRotated,
		logger.UserID(user.ID),
		logger.ClientID(client.ID),
		logger.TokenID(old.ID),
		logger.String("new_token_id", rt.ID),
	)
	return resp, nil
}

// handleReuse: si el token existe pero ya no es válido y fue revocado, es un
// reuso. Con la política cascade se revoca toda la cadena que lo reemplazó.
// Los errores acá se loguean y no cambian la respuesta (invalid_grant).
func (s *Service) handleReuse(ctx context.Context, hash string, log *zap.Logger) {
	rt, err := s.deps.Refresh.FindByHash(ctx, hash)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Warn("reuse lookup failed", logger.Err(err))
		}
		return
	}
	if rt.RevokedAt == nil {
		// expirado, no revocado
		return
	}
	s.deps.Metrics.RefreshReuse()
	ids := []zap.Field{logger.TokenID(rt.ID), logger.UserID(rt.UserID), logger.ClientID(rt.ClientID)}
	audit.Log(ctx, audit.RefreshReuse, ids...)
	if s.deps.ReusePolicy != ReusePolicyCascade {
		return
	}
	n, err := s.deps.Refresh.RevokeDescendants(ctx, rt.ID)
	if err != nil {
		log.Error("cascade revocation failed", append(ids, logger.Err(err))...)
		return
	}
	audit.Log(ctx, audit.RefreshChainBurnt, append(ids, logger.Count(n))...)
}

// mint firma el access token y genera el refresh en claro. Devuelve también
// el hash del refresh, que es lo único que se persiste.
func (s *Service) mint(user *repository.UserWithRoles, clientID string, lt lifetimes) (*TokenResponse, string, error) {
	access, _, err := s.deps.Codec.SignWithTTL(user.ID, user.Roles, clientID, lt.access)
	if err != nil {
		return nil, "", fmt.Errorf("auth: sign access token: %w", err)
	}
	refreshPlain, refreshHash, err := tokens.NewRefreshToken()
	if err != nil {
		return nil, "", fmt.Errorf("auth: generate refresh token: %w", err)
	}
	return &TokenResponse{
		AccessToken:  access,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    seconds(lt.access),
		RefreshToken: refreshPlain,
	}, refreshHash, nil
}

func (s *Service) issued() {
	s.deps.Metrics.Issued("access")
	s.deps.Metrics.Issued("refresh")
}

func (s *Service) observeGrant(grant string, err error) {
	switch {
	case err == nil:
		s.deps.Metrics.Grant(grant, metrics.ResultOK)
	case isRejection(err):
		s.deps.Metrics.Grant(grant, metrics.ResultRejected)
	default:
		s.deps.Metrics.Grant(grant, metrics.ResultError)
	}
}

func isRejection(err error) bool {
	for _, e := range []error{ErrInvalidGrant, ErrUnknownClient, ErrUserNotFound, ErrInvalidRequest} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
