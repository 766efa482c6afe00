// Package logger expone el logger zap del proceso y helpers para scoping por contexto.
//
// El logger se inicializa una vez desde cmd/authcore:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "authcore"})
//	defer logger.Sync()
//
// Los middlewares HTTP inyectan un logger con request_id en el contexto; los
// services lo recuperan con logger.From(ctx) y agregan layer/op:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.token.refresh"))
//
// Nunca loguear secretos (codes, refresh tokens en claro, claves privadas). Solo ids.
package logger
