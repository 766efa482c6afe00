package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// KeyMaterial es el par de claves de firma del proceso junto con su kid y el
// JWKS ya serializado. Se construye una vez y no cambia: rotar = reiniciar.
type KeyMaterial struct {
	signer crypto.Signer
	pub    crypto.PublicKey
	kid    string
	alg    string
	method jwtv5.SigningMethod

	set  jose.JSONWebKeySet
	jwks []byte
}

var (
	ErrNoPEMBlock        = errors.New("jwt: no PEM block found")
	ErrUnsupportedKey    = errors.New("jwt: unsupported key type")
	ErrPublicKeyMismatch = errors.New("jwt: public key does not match private key")
)

// NewKeyMaterial deriva alg, kid (RFC 7638) y JWKS a partir de la clave privada.
func NewKeyMaterial(signer crypto.Signer) (*KeyMaterial, error) {
	if signer == nil {
		return nil, ErrUnsupportedKey
	}
	alg, method, err := deriveAlgorithm(signer)
	if err != nil {
		return nil, err
	}
	kid, err := DeriveKeyID(signer.Public())
	if err != nil {
		return nil, err
	}

	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       signer.Public(),
		KeyID:     kid,
		Algorithm: alg,
		Use:       "sig",
	}}}
	raw, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("jwt: marshal jwks: %w", err)
	}

	return &KeyMaterial{
		signer: signer,
		pub:    signer.Public(),
		kid:    kid,
		alg:    alg,
		method: method,
		set:    set,
		jwks:   raw,
	}, nil
}

// LoadKeyMaterial parsea la clave privada PEM y, si viene, la pública PEM.
// Si ambas vienen deben corresponder al mismo par.
func LoadKeyMaterial(privatePEM, publicPEM []byte) (*KeyMaterial, error) {
	signer, err := ParsePrivateKeyPEM(privatePEM)
	if err != nil {
		return nil, err
	}
	if len(publicPEM) > 0 {
		pub, err := ParsePublicKeyPEM(publicPEM)
		if err != nil {
			return nil, err
		}
		eq, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
		if !ok || !eq.Equal(pub) {
			return nil, ErrPublicKeyMismatch
		}
	}
	return NewKeyMaterial(signer)
}

func (k *KeyMaterial) KID() string                 { return k.kid }
func (k *KeyMaterial) Algorithm() string           { return k.alg }
func (k *KeyMaterial) PublicKey() crypto.PublicKey { return k.pub }
func (k *KeyMaterial) Method() jwtv5.SigningMethod { return k.method }
func (k *KeyMaterial) KeySet() jose.JSONWebKeySet  { return k.set }

// JWKSJSON devuelve una copia del JWKS serializado (solo pública).
func (k *KeyMaterial) JWKSJSON() []byte {
	out := make([]byte, len(k.jwks))
	copy(out, k.jwks)
	return out
}

// DeriveKeyID = base64url(SHA-256(JWK canónico)) según RFC 7638.
// Estable entre reinicios para la misma clave.
func DeriveKeyID(pub crypto.PublicKey) (string, error) {
	jwk := jose.JSONWebKey{Key: pub}
	tp, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("jwt: key thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(tp), nil
}

func deriveAlgorithm(signer crypto.Signer) (string, jwtv5.SigningMethod, error) {
	switch k := signer.(type) {
	case *rsa.PrivateKey:
		return "RS256", jwtv5.SigningMethodRS256, nil
	case ed25519.PrivateKey:
		return "EdDSA", jwtv5.SigningMethodEdDSA, nil
	case *ecdsa.PrivateKey:
		switch k.Curve {
		case elliptic.P256():
			return "ES256", jwtv5.SigningMethodES256, nil
		case elliptic.P384():
			return "ES384", jwtv5.SigningMethodES384, nil
		case elliptic.P521():
			return "ES512", jwtv5.SigningMethodES512, nil
		}
		return "", nil, fmt.Errorf("%w: curve %s", ErrUnsupportedKey, k.Curve.Params().Name)
	default:
		return "", nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, signer)
	}
}

// ParsePrivateKeyPEM acepta PKCS#1 (RSA), SEC 1 (EC) y PKCS#8.
func ParsePrivateKeyPEM(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEMBlock
	}
	if k, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	if k, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return k, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse private key: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, key)
	}
	return signer, nil
}

// ParsePublicKeyPEM acepta PKIX ("PUBLIC KEY") y PKCS#1 ("RSA PUBLIC KEY").
func ParsePublicKeyPEM(data []byte) (crypto.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrNoPEMBlock
	}
	if pub, err := x509.ParsePKIXPublicKey(block.Bytes); err == nil {
		return pub, nil
	}
	pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse public key: %w", err)
	}
	return pub, nil
}

// GenerateKey genera una clave nueva: "rsa" (2048 bits) o "ed25519".
func GenerateKey(kind string) (crypto.Signer, error) {
	switch kind {
	case "", "rsa", "RS256":
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, err
		}
		return k, nil
	case "ed25519", "EdDSA":
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, kind)
	}
}

// EncodePEM serializa la privada (PKCS#8) y la pública (PKIX) en PEM.
func EncodePEM(signer crypto.Signer) (privatePEM, publicPEM []byte, err error) {
	der, err := x509.MarshalPKCS8PrivateKey(signer)
	if err != nil {
		return nil, nil, fmt.Errorf("jwt: marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(signer.Public())
	if err != nil {
		return nil, nil, fmt.Errorf("jwt: marshal public key: %w", err)
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privatePEM, publicPEM, nil
}
