package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
)

// parseSameSite convierte el string de config a http.SameSite.
// Acepta: "", "lax", "strict", "none" (case-insensitive). Default: Lax.
func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		// Nota: navegadores modernos exigen Secure=true con SameSite=None.
		// No lo forzamos para no romper http://localhost en dev.
		return http.SameSiteNoneMode
	default:
		logger.L().Named("cookie").Warn("SameSite desconocido, usando Lax", logger.String("samesite", s))
		return http.SameSiteLaxMode
	}
}

// BuildRefreshCookie arma la cookie httpOnly del refresh token, con Expires
// igual al vencimiento de la sesión persistida.
func BuildRefreshCookie(p app.CookieParams, value string, expiresAt time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     p.Name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   p.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(p.SameSite),
	}
	if p.Domain != "" {
		ck.Domain = p.Domain
	}
	return ck
}

// BuildDeletionCookie devuelve una cookie que borra el refresh del browser.
// Mismos atributos menos Expires para que el user-agent la sobreescriba.
func BuildDeletionCookie(p app.CookieParams) *http.Cookie {
	ck := &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		Secure:   p.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(p.SameSite),
	}
	if p.Domain != "" {
		ck.Domain = p.Domain
	}
	return ck
}

// ReadRefreshCookie devuelve el valor de la cookie de refresh, o "" si no
// está presente.
func ReadRefreshCookie(r *http.Request, p app.CookieParams) string {
	ck, err := r.Cookie(p.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}
