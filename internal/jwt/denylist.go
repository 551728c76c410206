package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/cache"
	tokens "github.com/dropDatabas3/gatehouse/internal/security/token"
)

// Denylist es el punto de extensión para revocar access tokens antes de su
// expiración. Sin denylist el access token se acepta durante toda su vida;
// habilitarlo agrega un lookup de cache por request en la extracción de
// identidad.
//
// Las keys se derivan del jti con sha256 para no guardar el identificador
// en claro en el backend.
type Denylist struct {
	cache cache.Client
}

func NewDenylist(c cache.Client) *Denylist {
	return &Denylist{cache: c}
}

func (d *Denylist) key(jti string) string {
	return "deny:" + tokens.SHA256Base64URL(jti)
}

// Revoke marca un jti como revocado hasta ttl (la vida restante del token).
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if d == nil || d.cache == nil || jti == "" {
		return nil
	}
	if ttl <= 0 {
		return nil // ya expiró, nada que recordar
	}
	return d.cache.Set(ctx, d.key(jti), "1", ttl)
}

// Revoked dice si el jti fue revocado. Nil-safe: sin denylist, nada está
// revocado. Un error de backend se propaga para que el caller decida
// (la extracción de identidad lo trata como service_unavailable).
func (d *Denylist) Revoked(ctx context.Context, jti string) (bool, error) {
	if d == nil || d.cache == nil || jti == "" {
		return false, nil
	}
	_, err := d.cache.Get(ctx, d.key(jti))
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
