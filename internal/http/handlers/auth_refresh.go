package handlers

import (
	"net/http"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

// NewAuthRefreshHandler maneja POST /v1/auth/refresh. El refresh token se lee
// implícitamente de la cookie; no hay body.
func NewAuthRefreshHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		raw := httpx.ReadRefreshCookie(r, c.Cookie)

		res, err := c.Auth.Refresh(r.Context(), raw, requestMeta(r))
		if err != nil {
			logger.From(r.Context()).Named("handler").Debug("refresh failed", logger.Err(err))
			httpx.WriteAuthError(w, err)
			return
		}

		writeAuthResult(w, c, res, http.StatusOK)
	}
}
