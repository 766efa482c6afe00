package pg

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// Clients implementa repository.ClientRepository y ClientWriter.
type Clients struct{ s *Store }

var (
	_ repository.ClientRepository = (*Clients)(nil)
	_ repository.ClientWriter     = (*Clients)(nil)
)

func (r *Clients) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	var c repository.Client
	err := r.s.pool.QueryRow(ctx, `
		SELECT id, name, redirect_uris, access_token_ttl_seconds, refresh_token_ttl_seconds
		  FROM oauth_client WHERE id = $1`, clientID,
	).Scan(&c.ID, &c.Name, &c.RedirectURIs, &c.AccessTokenTTLSeconds, &c.RefreshTokenTTLSeconds)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *Clients) Upsert(ctx context.Context, c repository.Client) error {
	if strings.TrimSpace(c.ID) == "" {
		return repository.ErrInvalidInput
	}
	uris := c.RedirectURIs
	if uris == nil {
		uris = []string{}
	}
	_, err := r.s.pool.Exec(ctx, `
		INSERT INTO oauth_client (id, name, redirect_uris, access_token_ttl_seconds, refresh_token_ttl_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
		    name = EXCLUDED.name,
		    redirect_uris = EXCLUDED.redirect_uris,
		    access_token_ttl_seconds = EXCLUDED.access_token_ttl_seconds,
		    refresh_token_ttl_seconds = EXCLUDED.refresh_token_ttl_seconds`,
		c.ID, c.Name, uris, c.AccessTokenTTLSeconds, c.RefreshTokenTTLSeconds)
	if err != nil {
		return fmt.Errorf("pg: upsert client: %w", err)
	}
	return nil
}
