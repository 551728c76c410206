// Package handlers implementa los endpoints HTTP como closures sobre el
// Container de la app.
package handlers

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
)

// TokenResponse es la salida común de register/login/refresh. El refresh
// token NO viaja en el body: va solo en la cookie httpOnly.
type TokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"` // "Bearer"
	ExpiresIn   int64           `json:"expires_in"` // segundos
	User        auth.PublicUser `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// writeAuthResult setea la cookie de refresh y responde el body con el
// access token. La cookie solo se escribe acá, después de que el service
// persistió la sesión: nunca hay cookie sin fila.
func writeAuthResult(w http.ResponseWriter, c *app.Container, res *auth.Result, status int) {
	http.SetCookie(w, httpx.BuildRefreshCookie(c.Cookie, res.RefreshToken, res.RefreshExpiresAt))

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	httpx.WriteJSON(w, status, TokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(c.Issuer.AccessTTL / time.Second),
		User:        res.User,
	})
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "método no permitido")
		return false
	}
	return true
}

func requestMeta(r *http.Request) auth.RequestMeta {
	return auth.RequestMeta{
		IP:        httpx.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
