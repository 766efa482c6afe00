package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// RefreshTokens implementa repository.RefreshTokenRepository.
// Un único mutex serializa las mutaciones: Rotate es atómico.
type RefreshTokens struct {
	mu     sync.Mutex
	byID   map[string]*repository.RefreshToken
	byHash map[string]string // hash → id
	opts   options
}

func NewRefreshTokens(opts ...Option) *RefreshTokens {
	return &RefreshTokens{
		byID:   make(map[string]*repository.RefreshToken),
		byHash: make(map[string]string),
		opts:   buildOptions(opts),
	}
}

var _ repository.RefreshTokenRepository = (*RefreshTokens)(nil)

func cloneToken(t *repository.RefreshToken) *repository.RefreshToken {
	out := *t
	if t.RevokedAt != nil {
		ts := *t.RevokedAt
		out.RevokedAt = &ts
	}
	if t.ReplacedBy != nil {
		id := *t.ReplacedBy
		out.ReplacedBy = &id
	}
	return &out
}

// insertLocked requiere s.mu tomado.
func (s *RefreshTokens) insertLocked(in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	if in.TokenHash == "" || in.UserID == "" || in.ClientID == "" {
		return nil, repository.ErrInvalidInput
	}
	if _, dup := s.byHash[in.TokenHash]; dup {
		return nil, repository.ErrConflict
	}
	t := &repository.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		ClientID:  in.ClientID,
		TokenHash: in.TokenHash,
		CreatedAt: s.opts.now().UTC(),
		ExpiresAt: in.ExpiresAt.UTC(),
	}
	s.byID[t.ID] = t
	s.byHash[t.TokenHash] = t.ID
	return t, nil
}

func (s *RefreshTokens) Create(ctx context.Context, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.insertLocked(in)
	if err != nil {
		return nil, err
	}
	return cloneToken(t), nil
}

func (s *RefreshTokens) FindValid(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	t := s.byID[id]
	if !t.Active(s.opts.now()) {
		return nil, repository.ErrNotFound
	}
	return cloneToken(t), nil
}

func (s *RefreshTokens) FindByHash(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneToken(s.byID[id]), nil
}

func (s *RefreshTokens) Revoke(ctx context.Context, tokenID, replacedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[tokenID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.RevokedAt != nil {
		return nil
	}
	now := s.opts.now().UTC()
	t.RevokedAt = &now
	if replacedBy != "" {
		t.ReplacedBy = &replacedBy
	}
	return nil
}

func (s *RefreshTokens) Rotate(ctx context.Context, oldID string, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.opts.now().UTC()
	old, ok := s.byID[oldID]
	if !ok || !old.Active(now) {
		return nil, repository.ErrConflict
	}
	nt, err := s.insertLocked(in)
	if err != nil {
		return nil, err
	}
	old.RevokedAt = &now
	newID := nt.ID
	old.ReplacedBy = &newID
	return cloneToken(nt), nil
}

func (s *RefreshTokens) RevokeDescendants(ctx context.Context, tokenID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.byID[tokenID]
	if !ok {
		return 0, nil
	}
	now := s.opts.now().UTC()
	n := 0
	seen := map[string]bool{tokenID: true}
	for t.ReplacedBy != nil && !seen[*t.ReplacedBy] {
		next, ok := s.byID[*t.ReplacedBy]
		if !ok {
			break
		}
		seen[next.ID] = true
		if next.RevokedAt == nil {
			ts := now
			next.RevokedAt = &ts
			n++
		}
		t = next
	}
	return n, nil
}
