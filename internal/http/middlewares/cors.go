package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authcore/internal/http/errors"
	"github.com/dropDatabas3/authcore/internal/metrics"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// WithCORS permite los orígenes de la lista (comparación exacta, sin "/"
// final). Un request sin Origin (server-to-server, curl) pasa siempre; uno
// con Origin fuera de la lista se rechaza con 403.
func WithCORS(allowed []string, m *metrics.Metrics) Middleware {
	trim := func(s string) string { return strings.TrimRight(strings.TrimSpace(s), "/") }

	alist := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		if v = trim(v); v != "" {
			alist[strings.ToLower(v)] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := trim(r.Header.Get("Origin"))

			// Vary headers para caches/proxies
			w.Header().Add("Vary", "Origin")

			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := alist[strings.ToLower(origin)]; !ok {
				m.CORSReject()
				logger.From(r.Context()).Info("cors origin rejected", logger.String("origin", origin))
				errors.WriteError(w, errors.ErrOriginNotAllowed)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After, X-RateLimit-Remaining, WWW-Authenticate")

			// Preflight
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Add("Vary", "Access-Control-Request-Method")
				w.Header().Add("Vary", "Access-Control-Request-Headers")
				h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
				h.Set("Access-Control-Max-Age", "600") // 10 min
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
