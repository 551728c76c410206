package handlers

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

// NewAuthRegisterHandler maneja POST /v1/auth/register.
func NewAuthRegisterHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}

		var req RegisterRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "email y password son obligatorios")
			return
		}

		res, err := c.Auth.Register(r.Context(), auth.RegisterInput{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Password:  req.Password,
		}, requestMeta(r))
		if err != nil {
			logger.From(r.Context()).Named("handler").Debug("register failed", logger.Err(err))
			httpx.WriteAuthError(w, err)
			return
		}

		writeAuthResult(w, c, res, http.StatusCreated)
	}
}
