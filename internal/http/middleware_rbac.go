package http

import (
	"net/http"

	"github.com/dropDatabas3/gatehouse/internal/authz"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

// RequireRoles corre el guard de roles sobre la identidad del contexto.
// Los roles requeridos se declaran por ruta al registrarla, no por reflexión
// ni metadata en runtime. Debe ir después de RequireAuth.
func RequireRoles(required ...authz.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := httpx.GetIdentity(r.Context())
			if err := authz.Authorize(id, required...); err != nil {
				// el detalle (roles requeridos vs reales) queda en el log,
				// nunca en la respuesta
				logger.From(r.Context()).Named("rbac").Warn("access denied", logger.Err(err))
				httpx.WriteAuthError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
