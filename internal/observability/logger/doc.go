// Package logger provee un logger estructurado (zap) como singleton del proceso.
//
// Uso típico:
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: "info", ServiceName: "gatehouse"})
//	defer logger.Sync()
//
//	log := logger.Named("auth")
//	log.Info("login ok", logger.UserID(u.ID))
//
// Los middlewares HTTP inyectan un logger "scoped" (request_id, method, path)
// en el contexto; los services lo recuperan con logger.From(ctx).
package logger
