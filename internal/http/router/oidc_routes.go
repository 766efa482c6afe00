package router

import "github.com/go-chi/chi/v5"

func registerOIDCRoutes(r chi.Router, d Deps) {
	// GET /.well-known/jwks.json
	r.Get("/.well-known/jwks.json", d.JWKS.GetJWKS)
}
