package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

type userRow struct {
	user  repository.User
	roles []string
}

// Users implementa repository.UserRepository.
type Users struct {
	mu      sync.RWMutex
	byID    map[string]*userRow
	byEmail map[string]string // email normalizado → id
	opts    options
}

func NewUsers(opts ...Option) *Users {
	return &Users{
		byID:    make(map[string]*userRow),
		byEmail: make(map[string]string),
		opts:    buildOptions(opts),
	}
}

var _ repository.UserRepository = (*Users)(nil)

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (s *Users) Create(ctx context.Context, in repository.CreateUserInput) (*repository.UserWithRoles, error) {
	email := normEmail(in.Email)
	if email == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return nil, repository.ErrConflict
	}
	row := &userRow{
		user: repository.User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: in.PasswordHash,
			CreatedAt:    s.opts.now().UTC(),
		},
		roles: append([]string(nil), in.Roles...),
	}
	s.byID[row.user.ID] = row
	s.byEmail[email] = row.user.ID
	return &repository.UserWithRoles{ID: row.user.ID, Email: email, Roles: append([]string(nil), row.roles...)}, nil
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.byID[id].user
	return &u, nil
}

func (s *Users) GetRolesByID(ctx context.Context, userID string) (*repository.UserWithRoles, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byID[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.UserWithRoles{
		ID:    row.user.ID,
		Email: row.user.Email,
		Roles: append([]string(nil), row.roles...),
	}, nil
}
