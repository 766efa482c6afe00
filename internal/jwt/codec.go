// Package jwt firma y verifica access tokens y publica el JWKS de la clave del proceso.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken: firma inválida, token mal formado, alg o kid inesperados.
	ErrInvalidToken = errors.New("invalid_token")
	// ErrTokenExpired: exp <= now.
	ErrTokenExpired = errors.New("token_expired")
	// ErrClaimMismatch: iss o aud no coinciden con los configurados.
	ErrClaimMismatch = errors.New("claim_mismatch")
)

// AccessClaims son las claims del access token.
type AccessClaims struct {
	Roles    []string `json:"roles"`
	ClientID string   `json:"client_id"`
	jwtv5.RegisteredClaims
}

// CodecConfig configura el Codec.
type CodecConfig struct {
	Keys      *KeyMaterial
	Issuer    string
	Audience  string
	AccessTTL time.Duration
	// Now es inyectable para tests. Default time.Now.
	Now func() time.Time
}

// Codec firma y verifica access tokens con una única KeyMaterial.
// Es seguro para uso concurrente.
type Codec struct {
	keys      *KeyMaterial
	iss       string
	aud       string
	accessTTL time.Duration
	now       func() time.Time
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.Keys == nil {
		return nil, errors.New("jwt: key material required")
	}
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("jwt: issuer and audience required")
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("jwt: invalid access ttl %s", cfg.AccessTTL)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Codec{
		keys:      cfg.Keys,
		iss:       cfg.Issuer,
		aud:       cfg.Audience,
		accessTTL: cfg.AccessTTL,
		now:       now,
	}, nil
}

// Sign emite un access token con el TTL por defecto.
func (c *Codec) Sign(sub string, roles []string, clientID string) (string, time.Time, error) {
	return c.SignWithTTL(sub, roles, clientID, c.accessTTL)
}

// SignWithTTL emite un access token con un TTL explícito (ej: el del client).
// Devuelve el token y su exp.
func (c *Codec) SignWithTTL(sub string, roles []string, clientID string, ttl time.Duration) (string, time.Time, error) {
	if sub == "" {
		return "", time.Time{}, errors.New("jwt: empty subject")
	}
	if ttl <= 0 {
		ttl = c.accessTTL
	}
	// NumericDate trunca a segundos; truncamos antes para que exp devuelto == exp firmado.
	now := c.now().UTC().Truncate(time.Second)
	exp := now.Add(ttl)
	if roles == nil {
		roles = []string{}
	}

	claims := AccessClaims{
		Roles:    roles,
		ClientID: clientID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    c.iss,
			Subject:   sub,
			Audience:  jwtv5.ClaimStrings{c.aud},
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(c.keys.Method(), claims)
	tk.Header["kid"] = c.keys.KID()
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(c.keys.signer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Keyfunc valida que el kid del header (si viene) sea el nuestro y devuelve la pública.
func (c *Codec) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if kid, ok := t.Header["kid"]; ok {
			if s, _ := kid.(string); s != c.keys.KID() {
				return nil, errors.New("kid_mismatch")
			}
		}
		return c.keys.PublicKey(), nil
	}
}

// Verify valida firma, alg, iss, aud y exp (requerido). Solo devuelve
// ErrInvalidToken, ErrTokenExpired o ErrClaimMismatch.
func (c *Codec) Verify(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	tk, err := jwtv5.ParseWithClaims(token, claims, c.Keyfunc(),
		jwtv5.WithValidMethods([]string{c.keys.Algorithm()}),
		jwtv5.WithIssuer(c.iss),
		jwtv5.WithAudience(c.aud),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	)
	switch {
	case err == nil && tk.Valid:
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid), errors.Is(err, jwtv5.ErrTokenMalformed),
		errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return nil, ErrInvalidToken
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwtv5.ErrTokenInvalidIssuer), errors.Is(err, jwtv5.ErrTokenInvalidAudience):
		return nil, ErrClaimMismatch
	default:
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// KeyID es el kid de la clave activa.
func (c *Codec) KeyID() string { return c.keys.KID() }

// KeySet devuelve el JWKS (solo pública).
func (c *Codec) KeySet() jose.JSONWebKeySet { return c.keys.KeySet() }

// KeySetJSON devuelve el JWKS serializado, calculado en la construcción.
func (c *Codec) KeySetJSON() []byte { return c.keys.JWKSJSON() }

// AccessTTL es el TTL por defecto de los access tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }
