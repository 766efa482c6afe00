// Package audit emite eventos de seguridad como logs estructurados bajo el
// logger "audit", separables del access log por nombre.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// Eventos emitidos por el motor de tokens.
const (
	UserRegistered    = "user_registered"
	LoginFailed       = "login_failed"
	CodeIssued        = "code_issued"
	CodeRedeemed      = "code_redeemed"
	RefreshRotated    = "refresh_rotated"
	RefreshReuse      = "refresh_reuse_detected"
	RefreshChainBurnt = "refresh_chain_revoked"
	LoggedOut         = "logged_out"
)

// Log escribe el evento con el logger del contexto. Nunca pasar secretos en
// fields: ids sí, codes y tokens no.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	l := logger.From(ctx).Named("audit")
	fields = append(fields, zap.String("event", event))
	switch event {
	case RefreshReuse, RefreshChainBurnt:
		l.Warn(event, fields...)
	default:
		l.Info(event, fields...)
	}
}
