package httpx

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dropDatabas3/gatehouse/internal/app"
)

func TestBuildRefreshCookieProd(t *testing.T) {
	p := app.CookieParams{Name: "refresh_token", Domain: "example.com", SameSite: "lax", Secure: true}
	exp := time.Now().Add(7 * 24 * time.Hour)

	ck := BuildRefreshCookie(p, "tok", exp)

	assert.Equal(t, "refresh_token", ck.Name)
	assert.Equal(t, "tok", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, "example.com", ck.Domain)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.WithinDuration(t, exp, ck.Expires, time.Second)
	assert.Greater(t, ck.MaxAge, 0)
}

func TestBuildRefreshCookieDev(t *testing.T) {
	p := app.CookieParams{Name: "refresh_token", SameSite: "none", Secure: false}

	ck := BuildRefreshCookie(p, "tok", time.Now().Add(time.Hour))

	assert.False(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
	assert.Empty(t, ck.Domain, "sin domain configurado la cookie es host-only")
}

func TestBuildDeletionCookie(t *testing.T) {
	p := app.CookieParams{Name: "refresh_token", Domain: "example.com", SameSite: "lax", Secure: true}

	ck := BuildDeletionCookie(p)

	assert.Equal(t, "refresh_token", ck.Name)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
	assert.True(t, ck.Expires.Before(time.Now()))
	// mismos atributos que la cookie de set, para que el browser la pise
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, "example.com", ck.Domain)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestParseSameSiteFallback(t *testing.T) {
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite(""))
	assert.Equal(t, http.SameSiteStrictMode, parseSameSite("Strict"))
	assert.Equal(t, http.SameSiteLaxMode, parseSameSite("que-se-yo"))
}
