package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/authcore/internal/http/middlewares"
)

const routeLogin = "/auth/login"

// registerAuthRoutes registra /auth/* y /users/me. Todas las respuestas
// llevan Cache-Control: no-store.
func registerAuthRoutes(r chi.Router, d Deps) {
	c := d.Auth
	bearer := mw.RequireBearer(d.Codec)

	r.Route("/auth", func(r chi.Router) {
		r.Use(use(mw.WithNoStore())...)

		// POST /auth/register
		r.Post("/register", c.Register.Register)

		// POST /auth/login: limitado por IP
		r.With(use(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.LoginLimiter,
			Route:   routeLogin,
			Metrics: d.Metrics,
		}))...).Post("/login", c.Login.Login)

		// GET /auth/authorize: sesión existente via bearer
		r.With(use(bearer)...).Get("/authorize", c.Authorize.Authorize)

		// POST /auth/token: authorization_code | refresh_token
		r.Post("/token", c.Token.Token)

		// POST /auth/logout
		r.Post("/logout", c.Logout.Logout)
	})

	r.With(use(mw.WithNoStore(), bearer)...).Get("/users/me", c.Me.Me)
}
