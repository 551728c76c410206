package handlers

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

// NewAuthLogoutHandler maneja POST /v1/auth/logout. Requiere access token
// (RequireAuth corre antes). Invalida la sesión del refresh presentado y
// limpia la cookie; nunca falla porque la sesión no exista.
func NewAuthLogoutHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		ctx := r.Context()
		userID := httpx.GetUserID(ctx)

		c.Auth.Logout(ctx, userID, httpx.ReadRefreshCookie(r, c.Cookie))
		revokeAccessToken(r, c)

		http.SetCookie(w, httpx.BuildDeletionCookie(c.Cookie))
		httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "sesión cerrada"})
	}
}

// NewAuthLogoutAllHandler maneja POST /v1/auth/logout-all.
func NewAuthLogoutAllHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		ctx := r.Context()
		userID := httpx.GetUserID(ctx)

		c.Auth.LogoutAll(ctx, userID)
		revokeAccessToken(r, c)

		http.SetCookie(w, httpx.BuildDeletionCookie(c.Cookie))
		httpx.WriteJSON(w, http.StatusOK, MessageResponse{Message: "sesiones cerradas en todos los dispositivos"})
	}
}

// revokeAccessToken manda el jti del access actual al denylist por lo que le
// quede de vida. Best-effort y nil-safe: con denylist apagado es un no-op.
func revokeAccessToken(r *http.Request, c *app.Container) {
	claims := httpx.GetClaims(r.Context())
	if claims == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt)
	if err := c.Denylist.Revoke(r.Context(), claims.JTI, ttl); err != nil {
		logger.From(r.Context()).Named("handler").Warn("denylist revoke failed", logger.Err(err))
	}
}
