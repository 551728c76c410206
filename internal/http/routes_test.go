package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatehouse/internal/app"
	"github.com/dropDatabas3/gatehouse/internal/auth"
	"github.com/dropDatabas3/gatehouse/internal/cache"
	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	jwtx "github.com/dropDatabas3/gatehouse/internal/jwt"
	"github.com/dropDatabas3/gatehouse/internal/security/password"
	"github.com/dropDatabas3/gatehouse/internal/session"
)

// ─── fakes mínimos para el flujo HTTP completo ───

type memUserRepo struct {
	seq   int
	users map[string]*repository.User
}

func (f *memUserRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *memUserRepo) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	f.seq++
	u := &repository.User{
		ID:           fmt.Sprintf("u-%d", f.seq),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Rights:       in.Rights,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *memUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type memSessionRepo struct {
	seq      int
	sessions []repository.Session
}

func (f *memSessionRepo) Create(_ context.Context, in repository.CreateSessionInput) (*repository.Session, error) {
	f.seq++
	s := repository.Session{
		ID:        fmt.Sprintf("s-%d", f.seq),
		UserID:    in.UserID,
		TokenHash: in.TokenHash,
		ExpiresAt: in.ExpiresAt,
		Active:    true,
	}
	f.sessions = append(f.sessions, s)
	return &s, nil
}

func (f *memSessionRepo) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]repository.Session, error) {
	var out []repository.Session
	for _, s := range f.sessions {
		if s.UserID == userID && s.Active && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *memSessionRepo) Revoke(_ context.Context, sessionID string) error {
	for i := range f.sessions {
		if f.sessions[i].ID == sessionID {
			f.sessions[i].Active = false
		}
	}
	return nil
}

func (f *memSessionRepo) RevokeAllByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for i := range f.sessions {
		if f.sessions[i].UserID == userID && f.sessions[i].Active {
			f.sessions[i].Active = false
			n++
		}
	}
	return n, nil
}

func (f *memSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	return 0, nil
}

func newTestHandler(t *testing.T) (http.Handler, *memUserRepo) {
	t.Helper()
	hasher := password.New(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})
	issuer := jwtx.NewIssuer([]byte("secreto-http-test-con-largo-decente"), time.Hour, 7*24*time.Hour)

	users := &memUserRepo{users: map[string]*repository.User{}}
	sessions := session.NewStore(&memSessionRepo{}, hasher)

	c := &app.Container{
		Cookie:   app.CookieParams{Name: "refresh_token", SameSite: "none", Secure: false},
		Auth:     auth.NewService(users, sessions, issuer, hasher, nil),
		Users:    users,
		Sessions: sessions,
		Issuer:   issuer,
		Denylist: jwtx.NewDenylist(cache.NewMemory(time.Minute)),
	}
	return NewHandler(c, Limiters{}, nil), users
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if mod != nil {
		mod(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "refresh_token" {
			return ck
		}
	}
	t.Fatal("no vino la cookie refresh_token")
	return nil
}

type tokenBody struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        struct {
		ID     string   `json:"id"`
		Email  string   `json:"email"`
		Rights []string `json:"rights"`
	} `json:"user"`
}

type errorBody struct {
	Error     string `json:"error"`
	ErrorCode int    `json:"error_code"`
}

func TestAuthFlow(t *testing.T) {
	h, _ := newTestHandler(t)

	// register
	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"Ada@Example.com","first_name":"Ada","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "Bearer", reg.TokenType)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.Equal(t, []string{"USER"}, reg.User.Rights)
	assert.NotContains(t, rec.Body.String(), "refresh_token", "el refresh no viaja en el body")

	ck := refreshCookie(t, rec)
	assert.True(t, ck.HttpOnly)

	// refresh con la cookie
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(ck)
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ref tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ref))
	assert.NotEqual(t, reg.AccessToken, ref.AccessToken)

	// me con el bearer
	rec = doJSON(t, h, http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+ref.AccessToken)
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "ada@example.com")

	// logout presentando la cookie original
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/logout", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+ref.AccessToken)
		r.AddCookie(ck)
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	deletion := refreshCookie(t, rec)
	assert.Equal(t, -1, deletion.MaxAge, "el logout limpia la cookie")

	// el refresh presentado en el logout quedó inválido
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/refresh", "", func(r *http.Request) {
		r.AddCookie(ck)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	// el access sigue firmado y vigente después del logout, pero su jti queda
	// en el denylist y la extracción de identidad lo rechaza
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = doJSON(t, h, http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/auth/logout", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestLoginErrors(t *testing.T) {
	h, users := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// password incorrecto y email inexistente: mismo status, mismo code
	recBadPass := doJSON(t, h, http.MethodPost, "/v1/auth/login",
		`{"email":"a@b.com","password":"mala"}`, nil)
	recUnknown := doJSON(t, h, http.MethodPost, "/v1/auth/login",
		`{"email":"nadie@b.com","password":"secret1"}`, nil)

	assert.Equal(t, http.StatusNotFound, recBadPass.Code)
	assert.Equal(t, recBadPass.Code, recUnknown.Code)

	var e1, e2 errorBody
	require.NoError(t, json.Unmarshal(recBadPass.Body.Bytes(), &e1))
	require.NoError(t, json.Unmarshal(recUnknown.Body.Bytes(), &e2))
	assert.Equal(t, "invalid_credentials", e1.Error)
	assert.Equal(t, e1.Error, e2.Error)
	assert.Equal(t, e1.ErrorCode, e2.ErrorCode)

	// cuenta desactivada sí se distingue
	for _, u := range users.users {
		u.IsActive = false
	}
	rec = doJSON(t, h, http.MethodPost, "/v1/auth/login",
		`{"email":"a@b.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "account_deactivated")
}

func TestRegisterDuplicateByHTTP(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"A@B.COM","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email_taken")
}

func TestRefreshWithoutCookie(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "refresh_token_missing")
}

func TestMeRequiresToken(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer no-es-un-token")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestAdminRouteForbiddenForUser(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = doJSON(t, h, http.MethodPost, "/v1/admin/sessions/purge", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_role")
	// nunca filtramos los conjuntos de roles por el wire
	assert.NotContains(t, rec.Body.String(), "ADMIN")
}

func TestAdminRouteAllowsAdmin(t *testing.T) {
	h, users := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"root@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	users.users[reg.User.ID].Rights = []string{"ADMIN", "USER"}

	rec = doJSON(t, h, http.MethodPost, "/v1/admin/sessions/purge", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "purged")
}

func TestDeactivatedUserRejectedOnAuthedRoute(t *testing.T) {
	// el token sigue firmado y vigente, pero la recarga del usuario detecta
	// la baja posterior a la emisión
	h, users := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/register",
		`{"email":"a@b.com","password":"secret1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg tokenBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	users.users[reg.User.ID].IsActive = false

	rec = doJSON(t, h, http.MethodGet, "/v1/me", "", func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "account_deactivated")
}

func TestMissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/v1/auth/login", `{"email":"a@b.com"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_fields")
}
