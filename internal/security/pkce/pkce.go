// Package pkce implementa la verificación PKCE S256 (RFC 7636).
package pkce

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/oauth2"
)

// MethodS256 es el único método aceptado ("plain" se rechaza).
const MethodS256 = "S256"

// SupportedMethod reporta si method es aceptado.
func SupportedMethod(method string) bool {
	return strings.TrimSpace(method) == MethodS256
}

// Challenge = BASE64URL(SHA256(verifier)), sin padding.
func Challenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// NewVerifier genera un code_verifier aleatorio de 43 caracteres.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// Verify recalcula el challenge para verifier y lo compara en tiempo constante.
func Verify(method, challenge, verifier string) bool {
	if !SupportedMethod(method) || challenge == "" || verifier == "" {
		return false
	}
	got := Challenge(verifier)
	return subtle.ConstantTimeCompare([]byte(got), []byte(challenge)) == 1
}
