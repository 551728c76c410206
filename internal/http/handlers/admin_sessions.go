package handlers

import (
	"net/http"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

type purgeResponse struct {
	Purged int `json:"purged"`
}

// NewAdminSessionsPurgeHandler maneja POST /v1/admin/sessions/purge:
// borra físicamente sesiones vencidas o revocadas. Solo ADMIN (el RBAC se
// aplica al registrar la ruta).
func NewAdminSessionsPurgeHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		n, err := c.Sessions.PurgeExpired(r.Context())
		if err != nil {
			httpx.WriteAuthError(w, auth.Unavailable(err))
			return
		}

		logger.From(r.Context()).Named("admin").Info("sessions purged", logger.Count(n))
		httpx.WriteJSON(w, http.StatusOK, purgeResponse{Purged: n})
	}
}
