package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// Users implementa repository.UserRepository.
type Users struct{ s *Store }

var _ repository.UserRepository = (*Users)(nil)

func (r *Users) Create(ctx context.Context, in repository.CreateUserInput) (*repository.UserWithRoles, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.PasswordHash == "" {
		return nil, repository.ErrInvalidInput
	}

	tx, err := r.s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO app_user (email, password_hash) VALUES ($1, $2)
		RETURNING id::text`, email, in.PasswordHash).Scan(&id)
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: insert user: %w", err)
	}

	for _, role := range in.Roles {
		if err := assignRole(ctx, tx, id, role); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: commit: %w", err)
	}
	return &repository.UserWithRoles{ID: id, Email: email, Roles: append([]string(nil), in.Roles...)}, nil
}

// assignRole crea el rol si no existe y lo asigna.
func assignRole(ctx context.Context, tx pgx.Tx, userID, name string) error {
	var roleID string
	err := tx.QueryRow(ctx, `
		INSERT INTO role (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id::text`, name).Scan(&roleID)
	if err != nil {
		return fmt.Errorf("pg: ensure role %q: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO user_role (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, roleID); err != nil {
		return fmt.Errorf("pg: assign role %q: %w", name, err)
	}
	return nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	var u repository.User
	err := r.s.pool.QueryRow(ctx, `
		SELECT id::text, email, password_hash, created_at
		  FROM app_user WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Users) GetRolesByID(ctx context.Context, userID string) (*repository.UserWithRoles, error) {
	if !validUUID(userID) {
		return nil, repository.ErrNotFound
	}
	var u repository.UserWithRoles
	err := r.s.pool.QueryRow(ctx, `
		SELECT u.id::text, u.email,
		       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')
		  FROM app_user u
		  LEFT JOIN user_role ur ON ur.user_id = u.id
		  LEFT JOIN role r ON r.id = ur.role_id
		 WHERE u.id = $1
		 GROUP BY u.id, u.email`, userID,
	).Scan(&u.ID, &u.Email, &u.Roles)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
