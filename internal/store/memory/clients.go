package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// Clients implementa repository.ClientRepository y ClientWriter.
type Clients struct {
	mu   sync.RWMutex
	byID map[string]repository.Client
}

// NewClients precarga los clients dados (ej: leídos del clients file).
func NewClients(seed ...repository.Client) *Clients {
	s := &Clients{byID: make(map[string]repository.Client, len(seed))}
	for _, c := range seed {
		s.byID[c.ID] = cloneClient(c)
	}
	return s
}

var (
	_ repository.ClientRepository = (*Clients)(nil)
	_ repository.ClientWriter     = (*Clients)(nil)
)

func cloneClient(c repository.Client) repository.Client {
	c.RedirectURIs = append([]string(nil), c.RedirectURIs...)
	return c
}

func (s *Clients) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[clientID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneClient(c)
	return &out, nil
}

func (s *Clients) Upsert(ctx context.Context, c repository.Client) error {
	if strings.TrimSpace(c.ID) == "" {
		return repository.ErrInvalidInput
	}
	s.mu.Lock()
	s.byID[c.ID] = cloneClient(c)
	s.mu.Unlock()
	return nil
}
