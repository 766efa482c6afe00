// Package auth es el motor del ciclo de vida de tokens: login, authorize,
// canje de authorization codes con PKCE, rotación de refresh tokens y logout.
//
// El motor no guarda estado entre llamadas. La atomicidad del canje y de la
// rotación la ponen los stores (GETDEL en Redis, transacciones en Postgres,
// mutex en memoria) y nunca se reintenta internamente.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/security/password"
)

// Políticas ante la presentación de un refresh token ya revocado.
const (
	ReusePolicyNone    = "none"
	ReusePolicyCascade = "cascade"
)

// Deps contiene las dependencias del motor.
type Deps struct {
	Users   repository.UserRepository
	Clients repository.ClientRepository
	Codes   repository.AuthCodeRepository
	Refresh repository.RefreshTokenRepository
	Codec   *jwtx.Codec

	// Opcional: nil no registra métricas.
	Metrics *metrics.Metrics

	// Lifetimes por defecto: los del client tienen prioridad.
	CodeTTL    time.Duration
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	ReusePolicy    string
	PasswordPolicy password.Policy
	PasswordParams password.Params

	Now func() time.Time
}

type Service struct {
	deps Deps

	// PHC con los mismos params que los usuarios; Login lo verifica cuando
	// el email no existe.
	dummyHash string
}

// NewService valida las dependencias obligatorias y completa defaults.
func NewService(d Deps) (*Service, error) {
	var missing []string
	if d.Users == nil {
		missing = append(missing, "Users")
	}
	if d.Clients == nil {
		missing = append(missing, "Clients")
	}
	if d.Codes == nil {
		missing = append(missing, "Codes")
	}
	if d.Refresh == nil {
		missing = append(missing, "Refresh")
	}
	if d.Codec == nil {
		missing = append(missing, "Codec")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("auth: missing deps: %s", strings.Join(missing, ", "))
	}
	if d.CodeTTL <= 0 {
		d.CodeTTL = 5 * time.Minute
	}
	if d.AccessTTL <= 0 {
		d.AccessTTL = d.Codec.AccessTTL()
	}
	if d.RefreshTTL <= 0 {
		d.RefreshTTL = 30 * 24 * time.Hour
	}
	switch d.ReusePolicy {
	case "":
		d.ReusePolicy = ReusePolicyNone
	case ReusePolicyNone, ReusePolicyCascade:
	default:
		return nil, fmt.Errorf("auth: unknown reuse policy %q", d.ReusePolicy)
	}
	if d.PasswordParams == (password.Params{}) {
		d.PasswordParams = password.Default
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	dummy, err := password.Hash(d.PasswordParams, "authcore-unknown-user")
	if err != nil {
		return nil, fmt.Errorf("auth: dummy hash: %w", err)
	}
	return &Service{deps: d, dummyHash: dummy}, nil
}

func (s *Service) now() time.Time { return s.deps.Now().UTC() }

type lifetimes struct {
	access  time.Duration
	refresh time.Duration
}

// lifetimesFor usa los TTLs del client, con fallback a Deps.
func (s *Service) lifetimesFor(c *repository.Client) lifetimes {
	lt := lifetimes{access: s.deps.AccessTTL, refresh: s.deps.RefreshTTL}
	if c.AccessTokenTTLSeconds > 0 {
		lt.access = time.Duration(c.AccessTokenTTLSeconds) * time.Second
	}
	if c.RefreshTokenTTLSeconds > 0 {
		lt.refresh = time.Duration(c.RefreshTokenTTLSeconds) * time.Second
	}
	return lt
}

// resolveClient traduce ErrNotFound a ErrUnknownClient y envuelve el resto.
func (s *Service) resolveClient(ctx context.Context, clientID string) (*repository.Client, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, ErrUnknownClient
	}
	c, err := s.deps.Clients.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownClient
		}
		return nil, fmt.Errorf("auth: get client: %w", err)
	}
	return c, nil
}

func (s *Service) resolveRoles(ctx context.Context, userID string) (*repository.UserWithRoles, error) {
	u, err := s.deps.Users.GetRolesByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: get user roles: %w", err)
	}
	return u, nil
}

// seconds redondea hacia arriba a segundos enteros.
func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
