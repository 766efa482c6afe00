package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// RefreshTokens implementa repository.RefreshTokenRepository.
type RefreshTokens struct{ s *Store }

var _ repository.RefreshTokenRepository = (*RefreshTokens)(nil)

const refreshCols = `id::text, user_id::text, client_id, token_hash, created_at, expires_at, revoked_at, replaced_by::text`

func scanRefresh(row pgx.Row) (*repository.RefreshToken, error) {
	var t repository.RefreshToken
	if err := row.Scan(&t.ID, &t.UserID, &t.ClientID, &t.TokenHash,
		&t.CreatedAt, &t.ExpiresAt, &t.RevokedAt, &t.ReplacedBy); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertRefresh(ctx context.Context, q queryRower, in repository.CreateRefreshTokenInput, now time.Time) (*repository.RefreshToken, error) {
	if in.TokenHash == "" || !validUUID(in.UserID) || in.ClientID == "" {
		return nil, repository.ErrInvalidInput
	}
	t, err := scanRefresh(q.QueryRow(ctx, `
		INSERT INTO refresh_token (user_id, client_id, token_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+refreshCols,
		in.UserID, in.ClientID, in.TokenHash, now, in.ExpiresAt.UTC()))
	if isUniqueViolation(err) {
		return nil, repository.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("pg: insert refresh token: %w", err)
	}
	return t, nil
}

func (r *RefreshTokens) Create(ctx context.Context, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	return insertRefresh(ctx, r.s.pool, in, r.s.now().UTC())
}

func (r *RefreshTokens) FindValid(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	return scanRefresh(r.s.pool.QueryRow(ctx, `
		SELECT `+refreshCols+` FROM refresh_token
		 WHERE token_hash = $1 AND revoked_at IS NULL AND expires_at > $2`,
		hash, r.s.now().UTC()))
}

func (r *RefreshTokens) FindByHash(ctx context.Context, hash string) (*repository.RefreshToken, error) {
	return scanRefresh(r.s.pool.QueryRow(ctx,
		`SELECT `+refreshCols+` FROM refresh_token WHERE token_hash = $1`, hash))
}

func (r *RefreshTokens) Revoke(ctx context.Context, tokenID, replacedBy string) error {
	if !validUUID(tokenID) || (replacedBy != "" && !validUUID(replacedBy)) {
		return repository.ErrNotFound
	}
	tag, err := r.s.pool.Exec(ctx, `
		UPDATE refresh_token
		   SET revoked_at = $2,
		       replaced_by = COALESCE(NULLIF($3, '')::uuid, replaced_by)
		 WHERE id = $1 AND revoked_at IS NULL`,
		tokenID, r.s.now().UTC(), replacedBy)
	if err != nil {
		return fmt.Errorf("pg: revoke refresh token: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	// 0 filas: ya revocado (no-op) o inexistente
	var exists bool
	if err := r.s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM refresh_token WHERE id = $1)`, tokenID).Scan(&exists); err != nil {
		return fmt.Errorf("pg: revoke refresh token: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return nil
}

// Rotate: INSERT nuevo + UPDATE condicional del viejo en una transacción.
// Si el UPDATE no afecta filas (otro rotó o revocó antes) se hace rollback
// y el token nuevo no queda persistido.
func (r *RefreshTokens) Rotate(ctx context.Context, oldID string, in repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	if !validUUID(oldID) {
		return nil, repository.ErrConflict
	}
	now := r.s.now().UTC()

	tx, err := r.s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	nt, err := insertRefresh(ctx, tx, in, now)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE refresh_token
		   SET revoked_at = $2, replaced_by = $3::uuid
		 WHERE id = $1 AND revoked_at IS NULL AND expires_at > $2`,
		oldID, now, nt.ID)
	if err != nil {
		return nil, fmt.Errorf("pg: revoke rotated token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: commit rotation: %w", err)
	}
	return nt, nil
}

func (r *RefreshTokens) RevokeDescendants(ctx context.Context, tokenID string) (int, error) {
	if !validUUID(tokenID) {
		return 0, nil
	}
	tag, err := r.s.pool.Exec(ctx, `
		WITH RECURSIVE chain(id) AS (
		    SELECT replaced_by FROM refresh_token WHERE id = $1 AND replaced_by IS NOT NULL
		    UNION
		    SELECT t.replaced_by FROM refresh_token t
		      JOIN chain c ON t.id = c.id
		     WHERE t.replaced_by IS NOT NULL
		)
		UPDATE refresh_token SET revoked_at = $2
		 WHERE id IN (SELECT id FROM chain) AND revoked_at IS NULL`,
		tokenID, r.s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("pg: revoke descendants: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
