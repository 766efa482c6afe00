// Package authcode guarda authorization codes de un solo uso sobre cache.Client.
package authcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/authcore/internal/cache"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// KeyPrefix de las entradas: auth_code:<hash>.
const KeyPrefix = "auth_code:"

// Store implementa repository.AuthCodeRepository.
type Store struct {
	c      cache.Client
	maxTTL time.Duration
	now    func() time.Time
}

// Option configura el Store.
type Option func(*Store)

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New crea el store. maxTTL acota el TTL de cada entrada (0 = sin tope).
func New(c cache.Client, maxTTL time.Duration, opts ...Option) *Store {
	s := &Store{c: c, maxTTL: maxTTL, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ repository.AuthCodeRepository = (*Store)(nil)

func key(hash string) string { return KeyPrefix + hash }

// ttlFor redondea hacia arriba a segundos enteros, mínimo 1s, acotado a maxTTL.
func (s *Store) ttlFor(expiresAt time.Time) time.Duration {
	remaining := expiresAt.Sub(s.now())
	secs := remaining / time.Second
	if remaining%time.Second > 0 {
		secs++
	}
	ttl := secs * time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	if s.maxTTL > 0 && ttl > s.maxTTL {
		ttl = s.maxTTL
	}
	return ttl
}

func (s *Store) Create(ctx context.Context, in repository.CreateAuthCodeInput) (*repository.AuthCode, error) {
	if in.CodeHash == "" {
		return nil, repository.ErrInvalidInput
	}
	code := &repository.AuthCode{
		CodeHash:            in.CodeHash,
		UserID:              in.UserID,
		ClientID:            in.ClientID,
		RedirectURI:         in.RedirectURI,
		CodeChallenge:       in.CodeChallenge,
		CodeChallengeMethod: in.CodeChallengeMethod,
		CreatedAt:           s.now().UTC(),
		ExpiresAt:           in.ExpiresAt.UTC(),
	}
	raw, err := json.Marshal(code)
	if err != nil {
		return nil, fmt.Errorf("authcode: marshal: %w", err)
	}
	if err := s.c.Set(ctx, key(in.CodeHash), string(raw), s.ttlFor(in.ExpiresAt)); err != nil {
		return nil, fmt.Errorf("authcode: set: %w", err)
	}
	return code, nil
}

func (s *Store) FindValid(ctx context.Context, hash string) (*repository.AuthCode, error) {
	raw, err := s.c.Get(ctx, key(hash))
	if cache.IsNotFound(err) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("authcode: get: %w", err)
	}

	var code repository.AuthCode
	if err := json.Unmarshal([]byte(raw), &code); err != nil {
		// entrada corrupta: nunca canjeable
		_ = s.c.Delete(ctx, key(hash))
		return nil, repository.ErrNotFound
	}
	if !s.now().Before(code.ExpiresAt) {
		if err := s.c.Delete(ctx, key(hash)); err != nil {
			return nil, fmt.Errorf("authcode: purge expired: %w", err)
		}
		return nil, repository.ErrNotFound
	}
	return &code, nil
}

func (s *Store) Consume(ctx context.Context, hash string) error {
	_, err := s.c.Pop(ctx, key(hash))
	if errors.Is(err, cache.ErrNotFound) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("authcode: consume: %w", err)
	}
	return nil
}
