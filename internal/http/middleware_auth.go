package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/authz"
	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	"github.com/dropDatabas3/gatehouse/internal/http/httpx"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
	"golang.org/x/sync/singleflight"
)

// RequireAuth extrae la identidad del bearer token y la deja en el contexto.
//
// No confía solo en los claims: después de verificar la firma recarga el
// usuario por subject id, para atrapar desactivaciones posteriores a la
// emisión del token. Con denylist habilitado, un jti revocado corta acá.
func RequireAuth(c *app.Container) Middleware {
	// singleflight colapsa recargas concurrentes del mismo usuario (ráfagas
	// de requests con el mismo token) en un solo round-trip a la base.
	var sf singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httpx.WriteAuthError(w, auth.ErrTokenInvalid)
				return
			}
			raw := strings.TrimSpace(ah[len("Bearer "):])

			claims, err := c.Issuer.Verify(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
				httpx.WriteAuthError(w, auth.ErrTokenInvalid)
				return
			}

			revoked, err := c.Denylist.Revoked(r.Context(), claims.JTI)
			if err != nil {
				httpx.WriteAuthError(w, auth.Unavailable(err))
				return
			}
			if revoked {
				httpx.WriteAuthError(w, auth.ErrTokenInvalid)
				return
			}

			v, err, _ := sf.Do(claims.Subject, func() (any, error) {
				return c.Users.GetByID(r.Context(), claims.Subject)
			})
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					httpx.WriteAuthError(w, auth.ErrTokenInvalid)
					return
				}
				httpx.WriteAuthError(w, auth.Unavailable(err))
				return
			}
			u := v.(*repository.User)
			if !u.IsActive {
				httpx.WriteAuthError(w, auth.ErrAccountDeactivated)
				return
			}

			id := &authz.Identity{
				UserID: u.ID,
				Email:  u.Email,
				Roles:  authz.ParseRoles(u.Rights),
			}

			ctx := httpx.WithClaims(r.Context(), claims)
			ctx = httpx.WithIdentity(ctx, id)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(u.ID)))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
