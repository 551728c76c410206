// Package app agrupa las dependencias compartidas que reciben los handlers.
package app

import (
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/cache"
	"github.com/dropDatabas3/gatehouse/internal/config"
	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	"github.com/dropDatabas3/gatehouse/internal/jwt"
	"github.com/dropDatabas3/gatehouse/internal/session"
	"github.com/dropDatabas3/gatehouse/internal/store/pg"
)

// CookieParams describe la cookie del refresh token. Se calcula una vez al
// arranque a partir del ambiente: prod-like usa Secure+Lax, dev usa
// insecure+None para permitir http://localhost.
type CookieParams struct {
	Name     string
	Domain   string
	SameSite string // "lax" | "none" | "strict"
	Secure   bool
}

// CookieParamsFor deriva los atributos de cookie según config.
func CookieParamsFor(cfg *config.Config) CookieParams {
	p := CookieParams{
		Name:   cfg.Auth.Cookie.Name,
		Domain: cfg.Auth.Cookie.Domain,
	}
	if cfg.IsProd() {
		p.Secure = true
		p.SameSite = "lax"
	} else {
		p.Secure = false
		p.SameSite = "none"
	}
	return p
}

type Container struct {
	Cfg      *config.Config
	Cookie   CookieParams
	Auth     *auth.Service
	Users    repository.UserRepository
	Sessions *session.Store
	Issuer   *jwt.Issuer
	Denylist *jwt.Denylist
	Cache    cache.Client
	Store    *pg.Store
}
