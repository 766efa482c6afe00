// Package tokens genera secretos opacos y sus hashes de almacenamiento.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Largos (en bytes de entropía) de los secretos opacos.
const (
	AuthCodeBytes     = 48
	RefreshTokenBytes = 64
)

// GenerateOpaqueToken genera nBytes aleatorios y los devuelve en base64url sin padding.
func GenerateOpaqueToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		return "", fmt.Errorf("tokens: invalid length %d", nBytes)
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("tokens: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewAuthCode devuelve un code nuevo y su hash.
func NewAuthCode() (plain, hash string, err error) {
	return newPair(AuthCodeBytes)
}

// NewRefreshToken devuelve un refresh token nuevo y su hash.
func NewRefreshToken() (plain, hash string, err error) {
	return newPair(RefreshTokenBytes)
}

func newPair(n int) (string, string, error) {
	plain, err := GenerateOpaqueToken(n)
	if err != nil {
		return "", "", err
	}
	return plain, SHA256Base64URL(plain), nil
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
// Es la única forma en que codes y refresh tokens se persisten.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
