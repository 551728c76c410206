package handlers

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
)

// NewMeHandler maneja GET /v1/me: la proyección pública del usuario
// autenticado.
func NewMeHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "método no permitido")
			return
		}

		userID := httpx.GetUserID(r.Context())
		u, err := c.Users.GetByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				httpx.WriteAuthError(w, auth.ErrUserNotFound)
				return
			}
			httpx.WriteAuthError(w, auth.Unavailable(err))
			return
		}

		httpx.WriteJSON(w, http.StatusOK, auth.Project(u))
	}
}
