package middlewares

import "net/http"

// WithNoStore agrega Cache-Control: no-store. Obligatorio en respuestas con
// codes o tokens.
func WithNoStore() Middleware {
	return WithCacheControl("no-store")
}

// WithCacheControl fija Cache-Control (ej: JWKS con max-age).
func WithCacheControl(directive string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", directive)
			if directive == "no-store" {
				w.Header().Set("Pragma", "no-cache")
			}
			next.ServeHTTP(w, r)
		})
	}
}
