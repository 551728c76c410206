package http

import (
	stdhttp "net/http"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/authz"
	"github.com/dropDatabas3/gatehouse/internal/http/handlers"
	"github.com/dropDatabas3/gatehouse/internal/rate"
)

// Limiters agrupa los rate limiters por endpoint. Cualquiera puede ser nil
// (sin límite).
type Limiters struct {
	Login    rate.Limiter
	Register rate.Limiter
	Refresh  rate.Limiter
}

// NewHandler arma el mux con todas las rutas y el stack de middlewares.
// Los roles requeridos se declaran acá, al registrar cada ruta.
func NewHandler(c *app.Container, lim Limiters, metricsHandler stdhttp.Handler) stdhttp.Handler {
	mux := stdhttp.NewServeMux()

	// Health
	mux.HandleFunc("/healthz", func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		w.WriteHeader(stdhttp.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/readyz", handlers.NewReadyzHandler(c))

	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	// Auth
	mux.Handle("/v1/auth/register", Chain(
		handlers.NewAuthRegisterHandler(c),
		WithRateLimit(lim.Register),
	))
	mux.Handle("/v1/auth/login", Chain(
		handlers.NewAuthLoginHandler(c),
		WithRateLimit(lim.Login),
	))
	mux.Handle("/v1/auth/refresh", Chain(
		handlers.NewAuthRefreshHandler(c),
		WithRateLimit(lim.Refresh),
	))
	mux.Handle("/v1/auth/logout", Chain(
		handlers.NewAuthLogoutHandler(c),
		RequireAuth(c),
	))
	mux.Handle("/v1/auth/logout-all", Chain(
		handlers.NewAuthLogoutAllHandler(c),
		RequireAuth(c),
	))

	// Perfil
	mux.Handle("/v1/me", Chain(
		handlers.NewMeHandler(c),
		RequireAuth(c),
	))

	// Admin
	mux.Handle("/v1/admin/sessions/purge", Chain(
		handlers.NewAdminSessionsPurgeHandler(c),
		RequireAuth(c),
		RequireRoles(authz.RoleAdmin),
	))

	// Stack global, de afuera hacia adentro.
	return Chain(mux,
		WithRequestID(),
		WithRecover(),
		WithSecurityHeaders(),
		WithMetrics(),
		WithLogging(),
	)
}
