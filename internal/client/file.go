// Package client resuelve clients OAuth: carga desde YAML y cache de lecturas.
package client

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// Defaults se aplican a clients sin TTLs explícitos.
type Defaults struct {
	AccessTokenTTLSeconds  int
	RefreshTokenTTLSeconds int
}

type fileDoc struct {
	Clients []repository.Client `yaml:"clients"`
}

// LoadFile lee un archivo YAML:
//
//	clients:
//	  - id: web
//	    redirect_uris: ["https://app.example/cb"]
//	    access_token_ttl_seconds: 600
func LoadFile(path string, d Defaults) ([]repository.Client, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("client: read %s: %w", path, err)
	}
	return Parse(raw, d)
}

// Parse valida y normaliza la lista de clients.
func Parse(raw []byte, d Defaults) ([]repository.Client, error) {
	var doc fileDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("client: parse yaml: %w", err)
	}
	seen := make(map[string]bool, len(doc.Clients))
	out := make([]repository.Client, 0, len(doc.Clients))
	for i, c := range doc.Clients {
		c.ID = strings.TrimSpace(c.ID)
		if c.AccessTokenTTLSeconds == 0 {
			c.AccessTokenTTLSeconds = d.AccessTokenTTLSeconds
		}
		if c.RefreshTokenTTLSeconds == 0 {
			c.RefreshTokenTTLSeconds = d.RefreshTokenTTLSeconds
		}
		if err := Validate(c); err != nil {
			return nil, fmt.Errorf("client: entry %d: %w", i, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("client: duplicate id %q", c.ID)
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out, nil
}

// Validate exige id, TTLs positivos y redirect URIs absolutas.
func Validate(c repository.Client) error {
	var errs []error
	if c.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if c.AccessTokenTTLSeconds <= 0 {
		errs = append(errs, errors.New("access_token_ttl_seconds must be > 0"))
	}
	if c.RefreshTokenTTLSeconds <= 0 {
		errs = append(errs, errors.New("refresh_token_ttl_seconds must be > 0"))
	}
	for _, u := range c.RedirectURIs {
		if !IsAbsoluteURL(u) {
			errs = append(errs, fmt.Errorf("redirect uri %q is not an absolute URL", u))
		}
	}
	return errors.Join(errs...)
}

// IsAbsoluteURL: scheme + host.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
