package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	jwtx "github.com/dropDatabas3/gatehouse/internal/jwt"
	"github.com/dropDatabas3/gatehouse/internal/security/password"
	"github.com/dropDatabas3/gatehouse/internal/session"
)

// ─── fakes en memoria ───

type fakeUserRepo struct {
	seq   int
	users map[string]*repository.User // por id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*repository.User{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == in.Email {
			return nil, repository.ErrConflict
		}
	}
	f.seq++
	u := &repository.User{
		ID:           fmt.Sprintf("u-%d", f.seq),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Rights:       in.Rights,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := f.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

type fakeSessionRepo struct {
	seq      int
	sessions []repository.Session
}

func (f *fakeSessionRepo) Create(_ context.Context, in repository.CreateSessionInput) (*repository.Session, error) {
	f.seq++
	s := repository.Session{
		ID:        fmt.Sprintf("s-%d", f.seq),
		UserID:    in.UserID,
		TokenHash: in.TokenHash,
		ExpiresAt: in.ExpiresAt,
		Active:    true,
		IP:        in.IP,
		UserAgent: in.UserAgent,
		CreatedAt: time.Now(),
	}
	f.sessions = append(f.sessions, s)
	return &s, nil
}

func (f *fakeSessionRepo) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]repository.Session, error) {
	var out []repository.Session
	for _, s := range f.sessions {
		if s.UserID == userID && s.Active && s.ExpiresAt.After(now) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) Revoke(_ context.Context, sessionID string) error {
	for i := range f.sessions {
		if f.sessions[i].ID == sessionID {
			f.sessions[i].Active = false
		}
	}
	return nil
}

func (f *fakeSessionRepo) RevokeAllByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for i := range f.sessions {
		if f.sessions[i].UserID == userID && f.sessions[i].Active {
			f.sessions[i].Active = false
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	return 0, nil
}

// ─── armado común ───

var testHasher = password.New(password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32})

type fixture struct {
	svc      *Service
	users    *fakeUserRepo
	sessRepo *fakeSessionRepo
	sessions *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := newFakeUserRepo()
	sessRepo := &fakeSessionRepo{}
	sessions := session.NewStore(sessRepo, testHasher)
	issuer := jwtx.NewIssuer([]byte("secreto-de-test-con-largo-decente!!"), time.Hour, 7*24*time.Hour)
	return &fixture{
		svc:      NewService(users, sessions, issuer, testHasher, nil),
		users:    users,
		sessRepo: sessRepo,
		sessions: sessions,
	}
}

var meta = RequestMeta{IP: "1.2.3.4", UserAgent: "test-agent"}

func register(t *testing.T, fx *fixture, email, pass string) *Result {
	t.Helper()
	res, err := fx.svc.Register(context.Background(), RegisterInput{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  pass,
	}, meta)
	require.NoError(t, err)
	return res
}

// ─── tests ───

func TestRegisterThenLogin(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	res := register(t, fx, "Ada@Example.COM", "secret1")
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "ada@example.com", res.User.Email, "email normalizado a lowercase")
	assert.Equal(t, []string{"USER"}, res.User.Rights)
	assert.True(t, res.User.IsActive)

	login, err := fx.svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "secret1"}, meta)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, login.User.LastLoginAt)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	fx := newFixture(t)

	register(t, fx, "a@b.com", "secret1")

	// mismo email con otro casing: Conflict igual
	_, err := fx.svc.Register(context.Background(), RegisterInput{Email: "A@B.com", Password: "otra"}, meta)
	require.Error(t, err)
	assert.Equal(t, ErrUserExists, err)
}

func TestLoginWrongCredentialsIndistinguishable(t *testing.T) {
	// email inexistente y password incorrecto responden exactamente igual
	fx := newFixture(t)
	register(t, fx, "a@b.com", "secret1")
	ctx := context.Background()

	_, errUnknown := fx.svc.Login(ctx, LoginInput{Email: "nadie@b.com", Password: "secret1"}, meta)
	_, errBadPass := fx.svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "incorrecta"}, meta)

	require.Error(t, errUnknown)
	require.Error(t, errBadPass)
	assert.Equal(t, errUnknown, errBadPass)
	assert.Equal(t, ErrInvalidCredentials, errUnknown)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	fx := newFixture(t)
	res := register(t, fx, "a@b.com", "secret1")

	fx.users.users[res.User.ID].IsActive = false

	_, err := fx.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "secret1"}, meta)
	assert.Equal(t, ErrAccountDeactivated, err)
}

func TestRefresh(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res := register(t, fx, "a@b.com", "secret1")

	ref, err := fx.svc.Refresh(ctx, res.RefreshToken, meta)
	require.NoError(t, err)
	assert.NotEqual(t, res.AccessToken, ref.AccessToken, "el access nuevo es distinto")
	assert.False(t, ref.RefreshExpiresAt.Before(res.RefreshExpiresAt), "la sesión nueva vence después")

	// se creó una sesión nueva y la anterior sigue activa (multi-tab)
	assert.Len(t, fx.sessRepo.sessions, 2)
	ok, err := fx.sessions.Validate(ctx, res.User.ID, res.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshMissing(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Refresh(context.Background(), "  ", meta)
	assert.Equal(t, ErrRefreshMissing, err)
}

func TestRefreshGarbageToken(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Refresh(context.Background(), "no-es-un-jwt", meta)
	assert.Equal(t, ErrRefreshInvalid, err)
}

func TestRefreshCrossUserRejected(t *testing.T) {
	// el refresh de A con las sesiones de B no valida aunque la firma valga
	fx := newFixture(t)
	ctx := context.Background()

	resA := register(t, fx, "a@b.com", "secret1")
	register(t, fx, "c@d.com", "secret2")

	okCross, err := fx.sessions.Validate(ctx, "u-2", resA.RefreshToken)
	require.NoError(t, err)
	assert.False(t, okCross)

	// por el camino del service el subject viene firmado, así que el canje
	// de A sigue operando sobre las sesiones de A
	ref, err := fx.svc.Refresh(ctx, resA.RefreshToken, meta)
	require.NoError(t, err)
	assert.Equal(t, resA.User.ID, ref.User.ID)
}

func TestRefreshAfterSessionRevoked(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res := register(t, fx, "a@b.com", "secret1")

	fx.svc.LogoutAll(ctx, res.User.ID)

	_, err := fx.svc.Refresh(ctx, res.RefreshToken, meta)
	assert.Equal(t, ErrRefreshInvalid, err)
}

func TestRefreshDeletedUser(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res := register(t, fx, "a@b.com", "secret1")

	delete(fx.users.users, res.User.ID)

	_, err := fx.svc.Refresh(ctx, res.RefreshToken, meta)
	assert.Equal(t, ErrUserNotFound, err)
}

func TestLogoutInvalidatesPresentedSession(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	res := register(t, fx, "a@b.com", "secret1")
	other, err := fx.svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "secret1"}, meta)
	require.NoError(t, err)

	fx.svc.Logout(ctx, res.User.ID, res.RefreshToken)

	ok, _ := fx.sessions.Validate(ctx, res.User.ID, res.RefreshToken)
	assert.False(t, ok)
	ok, _ = fx.sessions.Validate(ctx, res.User.ID, other.RefreshToken)
	assert.True(t, ok, "las demás sesiones no se tocan")
}

func TestLogoutAllInvalidatesEverything(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	res := register(t, fx, "a@b.com", "secret1")
	second, err := fx.svc.Login(ctx, LoginInput{Email: "a@b.com", Password: "secret1"}, meta)
	require.NoError(t, err)

	fx.svc.LogoutAll(ctx, res.User.ID)

	for _, tok := range []string{res.RefreshToken, second.RefreshToken} {
		ok, err := fx.sessions.Validate(ctx, res.User.ID, tok)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestLogoutWithoutSessionNeverFails(t *testing.T) {
	fx := newFixture(t)
	// sin sesiones, sin refresh: no paniquea ni falla
	fx.svc.Logout(context.Background(), "u-999", "")
	fx.svc.Logout(context.Background(), "u-999", "token-inexistente")
}

func TestPublicProjectionExcludesHash(t *testing.T) {
	fx := newFixture(t)
	res := register(t, fx, "a@b.com", "secret1")

	u := fx.users.users[res.User.ID]
	require.NotEmpty(t, u.PasswordHash)

	assert.NotContains(t, fmt.Sprintf("%+v", res.User), u.PasswordHash)
}

func TestSessionRowStoresHashNotPlaintext(t *testing.T) {
	fx := newFixture(t)
	res := register(t, fx, "a@b.com", "secret1")

	require.Len(t, fx.sessRepo.sessions, 1)
	row := fx.sessRepo.sessions[0]
	assert.NotEqual(t, res.RefreshToken, row.TokenHash)
	assert.Contains(t, row.TokenHash, "$argon2id$")
	assert.Equal(t, meta.IP, row.IP)
	assert.Equal(t, meta.UserAgent, row.UserAgent)
}
