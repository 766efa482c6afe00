// Package health contiene los controllers de liveness y readiness.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authcore/internal/http/helpers"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// Check verifica una dependencia (store, cache). nil = sana.
type Check func(ctx context.Context) error

const defaultCheckTimeout = 2 * time.Second

type HealthController struct {
	checks  map[string]Check
	timeout time.Duration
	version string
}

// NewHealthController recibe los checks de readiness por nombre.
func NewHealthController(version string, checks map[string]Check) *HealthController {
	return &HealthController{checks: checks, timeout: defaultCheckTimeout, version: version}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Healthz maneja GET /healthz. Solo indica que el proceso responde.
func (c *HealthController) Healthz(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: c.version})
}

// Readyz maneja GET /readyz: corre todos los checks en paralelo con timeout.
// 503 si alguno falla.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu      sync.Mutex
		results = make(map[string]string, len(names))
		failed  bool
	)
	var g errgroup.Group
	for _, name := range names {
		name := name
		check := c.checks[name]
		g.Go(func() error {
			status := "ok"
			if err := check(ctx); err != nil {
				status = "error"
				logger.From(ctx).Warn("readiness check failed",
					logger.Component("health"),
					logger.String("check", name),
					logger.Err(err),
				)
			}
			mu.Lock()
			results[name] = status
			failed = failed || status != "ok"
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	resp := healthResponse{Status: "ok", Version: c.version, Checks: results}
	code := http.StatusOK
	if failed {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, code, resp)
}
