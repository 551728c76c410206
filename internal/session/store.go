// Package session implementa el SessionStore: una fila persistida por cada
// refresh token emitido, con el secreto hasheado (argon2id) en reposo.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
	"github.com/dropDatabas3/gatehouse/internal/observability/logger"
	"github.com/dropDatabas3/gatehouse/internal/security/password"
)

// ErrMissingUserID: Create exige un userID conocido; el service de auth lo
// traduce a su falla tipada.
var ErrMissingUserID = errors.New("session: missing user id")

// Store compone el repositorio con el hasher. No guarda estado propio.
type Store struct {
	repo   repository.SessionRepository
	hasher password.Hasher

	// Now inyectable para tests.
	Now func() time.Time
}

func NewStore(repo repository.SessionRepository, hasher password.Hasher) *Store {
	return &Store{repo: repo, hasher: hasher, Now: time.Now}
}

// Create hashea el refresh en claro y persiste la sesión. El valor crudo no
// se retiene. Requiere userID conocido.
func (s *Store) Create(ctx context.Context, userID, refreshPlain string, expiresAt time.Time, ip, userAgent string) error {
	if userID == "" {
		return ErrMissingUserID
	}
	hash, err := s.hasher.Hash(refreshPlain)
	if err != nil {
		return fmt.Errorf("hash refresh: %w", err)
	}
	_, err = s.repo.Create(ctx, repository.CreateSessionInput{
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		IP:        ip,
		UserAgent: userAgent,
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Validate busca entre las sesiones activas y no vencidas de userID alguna
// cuyo hash verifique contra el refresh en claro. El scope por usuario es
// estricto: un token de A jamás matchea sesiones de B aunque la firma valga.
// Sin match, match vencido o hash que no verifica dan false; un error del
// store se propaga (el caller lo mapea a service_unavailable).
func (s *Store) Validate(ctx context.Context, userID, refreshPlain string) (bool, error) {
	if userID == "" || refreshPlain == "" {
		return false, nil
	}
	sess, err := s.repo.ListActiveByUser(ctx, userID, s.Now())
	if err != nil {
		return false, err
	}
	// Verificamos contra todas las candidatas; el costo de distinguir
	// "sin sesión" de "secreto incorrecto" queda acotado por el verify
	// del hasher, que es constante por diseño.
	found := false
	for _, it := range sess {
		if s.hasher.Verify(it.TokenHash, refreshPlain) {
			found = true
		}
	}
	return found, nil
}

// Invalidate marca como inactivas las sesiones activas del usuario que
// matcheen el refresh. Best-effort: los errores se loguean y no se
// propagan, un logout no debe fallar por bookkeeping.
func (s *Store) Invalidate(ctx context.Context, userID, refreshPlain string) {
	log := logger.From(ctx).Named("session")
	if userID == "" || refreshPlain == "" {
		return
	}
	sess, err := s.repo.ListActiveByUser(ctx, userID, s.Now())
	if err != nil {
		log.Warn("invalidate: list failed", logger.UserID(userID), logger.Err(err))
		return
	}
	for _, it := range sess {
		if !s.hasher.Verify(it.TokenHash, refreshPlain) {
			continue
		}
		if err := s.repo.Revoke(ctx, it.ID); err != nil {
			log.Warn("invalidate: revoke failed", logger.SessionID(it.ID), logger.Err(err))
		}
	}
}

// InvalidateAll marca inactivas todas las sesiones del usuario
// (logout de todos los dispositivos). Best-effort, igual que Invalidate.
func (s *Store) InvalidateAll(ctx context.Context, userID string) {
	log := logger.From(ctx).Named("session")
	if userID == "" {
		return
	}
	n, err := s.repo.RevokeAllByUser(ctx, userID)
	if err != nil {
		log.Warn("invalidate all failed", logger.UserID(userID), logger.Err(err))
		return
	}
	log.Info("sessions revoked", logger.UserID(userID), logger.Count(n))
}

// HasActiveFromIP dice si el usuario ya tiene una sesión activa originada
// en esa IP. Lo usa el alert de login desde dispositivo nuevo.
func (s *Store) HasActiveFromIP(ctx context.Context, userID, ip string) (bool, error) {
	if ip == "" {
		return true, nil // sin IP no hay señal, no alertamos
	}
	sess, err := s.repo.ListActiveByUser(ctx, userID, s.Now())
	if err != nil {
		return false, err
	}
	for _, it := range sess {
		if it.IP == ip {
			return true, nil
		}
	}
	return false, nil
}

// PurgeExpired borra físicamente sesiones vencidas o revocadas.
// Pensado para el job de retención / CLI admin, no para el request path.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	return s.repo.DeleteExpired(ctx, s.Now())
}
