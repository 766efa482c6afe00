package client

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/authcore/internal/domain/repository"
)

// Cached decora un ClientRepository con un cache de lecturas positivas.
// Lecturas concurrentes del mismo id comparten una sola consulta (singleflight).
// Los errores (incluido ErrNotFound) no se cachean.
type Cached struct {
	next repository.ClientRepository
	c    *gocache.Cache
	sf   singleflight.Group
}

func NewCached(next repository.ClientRepository, ttl time.Duration) *Cached {
	return &Cached{next: next, c: gocache.New(ttl, 2*ttl)}
}

var (
	_ repository.ClientRepository = (*Cached)(nil)
	_ repository.ClientWriter     = (*Cached)(nil)
)

// ErrReadOnly: el repositorio decorado no implementa ClientWriter.
var ErrReadOnly = errors.New("client: repository is read-only")

func clone(c *repository.Client) *repository.Client {
	out := *c
	out.RedirectURIs = append([]string(nil), c.RedirectURIs...)
	return &out
}

func (r *Cached) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	if v, ok := r.c.Get(clientID); ok {
		return clone(v.(*repository.Client)), nil
	}
	v, err, _ := r.sf.Do(clientID, func() (any, error) {
		c, err := r.next.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		r.c.SetDefault(clientID, clone(c))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.(*repository.Client)), nil
}

// Upsert escribe en el repositorio decorado y descarta la entrada cacheada,
// así el próximo Get ve el client nuevo.
func (r *Cached) Upsert(ctx context.Context, c repository.Client) error {
	w, ok := r.next.(repository.ClientWriter)
	if !ok {
		return ErrReadOnly
	}
	if err := w.Upsert(ctx, c); err != nil {
		return err
	}
	r.Invalidate(c.ID)
	return nil
}

// Invalidate descarta la entrada cacheada.
func (r *Cached) Invalidate(clientID string) { r.c.Delete(clientID) }
