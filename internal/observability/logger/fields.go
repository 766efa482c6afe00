package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field       { return zap.String("user_agent", v) }

// ─── Negocio ───

// UserID identifica al dueño del code/token.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// ClientID es el client OAuth que pidió la operación.
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// TokenID es el id interno del refresh token (nunca el valor en claro).
func TokenID(v string) zap.Field { return zap.String("token_id", v) }

// GrantType del pedido a /auth/token.
func GrantType(v string) zap.Field { return zap.String("grant_type", v) }

// KeyID es el kid de la clave de firma.
func KeyID(v string) zap.Field { return zap.String("kid", v) }

// Email (usar con cuidado en prod).
func Email(v string) zap.Field { return zap.String("email", v) }

// ─── Sistema ───

func Component(v string) zap.Field { return zap.String("component", v) }

// Op es la operación en curso, ej "auth.token.authcode".
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer: handler, service, repository.
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// ─── Genéricos ───

func Count(v int) zap.Field             { return zap.Int("count", v) }
func String(key, v string) zap.Field    { return zap.String(key, v) }
func Int(key string, v int) zap.Field   { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
