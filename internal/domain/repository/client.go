package repository

import (
	"context"
	"slices"
)

// Client es un cliente OAuth registrado.
type Client struct {
	ID                     string   `yaml:"id" json:"id"`
	Name                   string   `yaml:"name" json:"name"`
	RedirectURIs           []string `yaml:"redirect_uris" json:"redirect_uris"`
	AccessTokenTTLSeconds  int      `yaml:"access_token_ttl_seconds" json:"access_token_ttl_seconds"`
	RefreshTokenTTLSeconds int      `yaml:"refresh_token_ttl_seconds" json:"refresh_token_ttl_seconds"`
}

// AllowsRedirect compara por igualdad exacta contra las URIs registradas.
func (c *Client) AllowsRedirect(uri string) bool {
	return c != nil && uri != "" && slices.Contains(c.RedirectURIs, uri)
}

// ClientRepository resuelve clients por id.
type ClientRepository interface {
	// Get retorna ErrNotFound si el client no existe.
	Get(ctx context.Context, clientID string) (*Client, error)
}

// ClientWriter lo implementan los stores que permiten alta/edición (CLI).
type ClientWriter interface {
	Upsert(ctx context.Context, c Client) error
}
