// Package auth orquesta el ciclo de vida de credenciales:
// register, login, refresh, logout y logout-all.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	"github.com/dropDatabas3/gatehouse/internal/email"
	jwtx "github.com/dropDatabas3/gatehouse/internal/jwt"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
	"github.com/dropDatabas3/gatehouse/internal/security/password"
	"github.com/dropDatabas3/gatehouse/internal/session"
)

// DefaultRight es el rol que recibe todo usuario nuevo.
const DefaultRight = "USER"

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type LoginInput struct {
	Email    string
	Password string
}

// RequestMeta son los datos del request que quedan en la sesión.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// PublicUser es la proyección del usuario que sale por el wire.
// Nunca incluye el password hash.
type PublicUser struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Rights      []string   `json:"rights"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Result es la salida de register/login/refresh. El refresh token viaja al
// transporte para setear la cookie; el access va en el body.
type Result struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             PublicUser
}

// Service compone hasher, issuer, session store y el directorio de usuarios.
// Todo el estado compartido (clave de firma, TTLs) vive en el issuer,
// inmutable desde el arranque.
type Service struct {
	users    repository.UserRepository
	sessions *session.Store
	issuer   *jwtx.Issuer
	hasher   password.Hasher
	alerts   email.AlertSender // nil = alertas apagadas

	// Now inyectable para tests.
	Now func() time.Time
}

func NewService(users repository.UserRepository, sessions *session.Store, issuer *jwtx.Issuer, hasher password.Hasher, alerts email.AlertSender) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		issuer:   issuer,
		hasher:   hasher,
		alerts:   alerts,
		Now:      time.Now,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register da de alta el usuario con rol USER y sigue directo a la emisión
// de tokens: el password se acaba de setear, no hay nada que verificar.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*Result, error) {
	emailAddr := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, Unavailable(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, Unavailable(err)
	}

	u, err := s.users.Create(ctx, repository.CreateUserInput{
		Email:        emailAddr,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Rights:       []string{DefaultRight},
	})
	if err != nil {
		// Carrera entre el GetByEmail y el INSERT: mismo resultado que
		// el chequeo previo.
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, Unavailable(err)
	}

	logger.From(ctx).Named("auth").Info("user registered", logger.UserID(u.ID))
	return s.issueAndPersist(ctx, u, meta)
}

// Login verifica credenciales. Email desconocido y password incorrecto
// responden exactamente igual; cuenta desactivada se distingue.
func (s *Service) Login(ctx context.Context, in LoginInput, meta RequestMeta) (*Result, error) {
	emailAddr := normalizeEmail(in.Email)

	u, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, Unavailable(err)
	}
	if !u.IsActive {
		return nil, ErrAccountDeactivated
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	now := s.Now().UTC()
	if err := s.users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, Unavailable(err)
	}
	u.LastLoginAt = &now

	s.maybeSendLoginAlert(ctx, u, meta, now)

	return s.issueAndPersist(ctx, u, meta)
}

// Refresh canjea un refresh válido por un par nuevo. Crea una sesión nueva y
// deja activa la anterior: dos tabs pueden refrescar en paralelo sin
// pisarse (decisión registrada en DESIGN.md).
func (s *Service) Refresh(ctx context.Context, rawRefresh string, meta RequestMeta) (*Result, error) {
	rawRefresh = strings.TrimSpace(rawRefresh)
	if rawRefresh == "" {
		return nil, ErrRefreshMissing
	}

	claims, err := s.issuer.Verify(rawRefresh)
	if err != nil {
		return nil, ErrRefreshInvalid
	}

	ok, err := s.sessions.Validate(ctx, claims.Subject, rawRefresh)
	if err != nil {
		return nil, Unavailable(err)
	}
	if !ok {
		return nil, ErrRefreshInvalid
	}

	u, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, Unavailable(err)
	}

	return s.issueAndPersist(ctx, u, meta)
}

// Logout invalida la sesión del refresh presentado (si hay) y nunca falla:
// que no exista sesión no es un error para el usuario.
func (s *Service) Logout(ctx context.Context, userID, rawRefresh string) {
	if rawRefresh != "" {
		s.sessions.Invalidate(ctx, userID, rawRefresh)
	}
	logger.From(ctx).Named("auth").Info("logout", logger.UserID(userID))
}

// LogoutAll invalida todas las sesiones del usuario.
func (s *Service) LogoutAll(ctx context.Context, userID string) {
	s.sessions.InvalidateAll(ctx, userID)
	logger.From(ctx).Named("auth").Info("logout all devices", logger.UserID(userID))
}

// issueAndPersist es el paso compartido: emite access+refresh, persiste la
// sesión con el hash del refresh y arma la respuesta. La cookie se setea en
// el transporte solo si esto terminó bien: nunca hay cookie sin fila.
func (s *Service) issueAndPersist(ctx context.Context, u *repository.User, meta RequestMeta) (*Result, error) {
	access, _, err := s.issuer.IssueAccess(u.ID, u.Rights)
	if err != nil {
		return nil, Unavailable(err)
	}
	refresh, refreshExp, err := s.issuer.IssueRefresh(u.ID, u.Rights)
	if err != nil {
		return nil, Unavailable(err)
	}

	if err := s.sessions.Create(ctx, u.ID, refresh, refreshExp, meta.IP, meta.UserAgent); err != nil {
		if errors.Is(err, session.ErrMissingUserID) {
			return nil, ErrMissingIdentity
		}
		return nil, Unavailable(err)
	}

	return &Result{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             Project(u),
	}, nil
}

// maybeSendLoginAlert dispara el aviso de "login desde IP nueva" en
// background. Best-effort: cualquier falla solo se loguea.
func (s *Service) maybeSendLoginAlert(ctx context.Context, u *repository.User, meta RequestMeta, at time.Time) {
	if s.alerts == nil {
		return
	}
	known, err := s.sessions.HasActiveFromIP(ctx, u.ID, meta.IP)
	if err != nil || known {
		return
	}
	log := logger.From(ctx).Named("auth")
	to, ip, ua := u.Email, meta.IP, meta.UserAgent
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.alerts.SendLoginAlert(ctx, to, ip, ua, at); err != nil {
			log.Warn("login alert failed", logger.Email(to), logger.Err(err))
		}
	}()
}

// Project arma la proyección pública de un usuario (sin password hash).
func Project(u *repository.User) PublicUser {
	rights := u.Rights
	if rights == nil {
		rights = []string{}
	}
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Rights:      rights,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
