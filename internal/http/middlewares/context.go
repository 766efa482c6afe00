package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/authcore/internal/jwt"
)

type ctxKey string

const (
	ctxClaimsKey    ctxKey = "claims"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithClaims inyecta las claims verificadas del access token.
func WithClaims(ctx context.Context, c *jwtx.AccessClaims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, c)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetClaims retorna nil si RequireBearer no se aplicó.
func GetClaims(ctx context.Context) *jwtx.AccessClaims {
	c, _ := ctx.Value(ctxClaimsKey).(*jwtx.AccessClaims)
	return c
}

// GetUserID devuelve el sub del access token, o "".
func GetUserID(ctx context.Context) string {
	if c := GetClaims(ctx); c != nil {
		return c.Subject
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	s, _ := ctx.Value(ctxRequestIDKey).(string)
	return s
}
