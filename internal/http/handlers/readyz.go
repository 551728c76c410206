package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
)

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

type readyzResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewReadyzHandler maneja GET /readyz: verifica base y cache con un timeout
// corto. Un backend caído responde 503 para que el balanceador saque la
// réplica de rotación.
func NewReadyzHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := contextWithTimeout(r, 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if err := c.Store.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			healthy = false
		} else {
			checks["postgres"] = "ok"
		}

		if err := c.Cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			healthy = false
		} else {
			checks["cache"] = "ok"
		}

		status := http.StatusOK
		resp := readyzResponse{Status: "ready", Checks: checks}
		if !healthy {
			status = http.StatusServiceUnavailable
			resp.Status = "degraded"
		}
		httpx.WriteJSON(w, status, resp)
	}
}
