package handlers

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewAuthLoginHandler maneja POST /v1/auth/login.
func NewAuthLoginHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		var req LoginRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "email y password son obligatorios")
			return
		}

		res, err := c.Auth.Login(r.Context(), auth.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		}, requestMeta(r))
		if err != nil {
			logger.From(r.Context()).Named("handler").Debug("login failed", logger.Err(err))
			httpx.WriteAuthError(w, err)
			return
		}

		writeAuthResult(w, c, res, http.StatusOK)
	}
}
