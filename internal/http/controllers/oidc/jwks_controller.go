// Package oidc publica el material de clave del emisor.
package oidc

import (
	"net/http"

	"github.com/dropDatabas3/authcore/internal/http/helpers"
)

// KeySource entrega el JWKS ya serializado (ver jwt.Codec.KeySetJSON).
type KeySource interface {
	KeySetJSON() []byte
}

type JWKSController struct {
	keys KeySource
}

func NewJWKSController(keys KeySource) *JWKSController {
	return &JWKSController{keys: keys}
}

// GetJWKS maneja GET /.well-known/jwks.json. Solo claves públicas.
func (c *JWKSController) GetJWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	helpers.WriteRawJSON(w, http.StatusOK, c.keys.KeySetJSON())
}
