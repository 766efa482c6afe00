// Package router arma el árbol de rutas HTTP del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/authcore/internal/http/controllers/auth"
	"github.com/dropDatabas3/authcore/internal/http/controllers/health"
	"github.com/dropDatabas3/authcore/internal/http/controllers/oidc"
	httperrors "github.com/dropDatabas3/authcore/internal/http/errors"
	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Auth   *authctrl.Controllers
	Health *health.HealthController
	JWKS   *oidc.JWKSController
	Codec  *jwtx.Codec

	// Opcionales
	Metrics      *metrics.Metrics
	LoginLimiter rate.Limiter
	CORSOrigins  []string

	// nil: la IP del cliente es siempre RemoteAddr
	TrustedProxies *mw.TrustedProxies
}

// New devuelve el handler raíz. El orden global es client ip, request id,
// logging, recover, security headers y CORS; los grupos agregan no-store, rate limit
// y bearer donde corresponde.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(use(
		mw.WithClientIP(d.TrustedProxies),
		mw.WithRequestID(),
		mw.WithLogging(d.Metrics),
		mw.WithRecover(),
		mw.WithSecurityHeaders(),
		mw.WithCORS(d.CORSOrigins, d.Metrics),
	)...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerAuthRoutes(r, d)
	registerOIDCRoutes(r, d)
	registerHealthRoutes(r, d)
	return r
}

// use descarta middlewares nil (ej: rate limit deshabilitado).
func use(mws ...mw.Middleware) []func(http.Handler) http.Handler {
	out := make([]func(http.Handler) http.Handler, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}
