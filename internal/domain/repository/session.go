package repository

import (
	"context"
	"time"
)

// Session representa un refresh token emitido: una fila por credencial.
// El valor crudo del refresh nunca se guarda; TokenHash es su argon2id.
// Una sesión con Active=false queda inerte para siempre (baja lógica,
// las filas se retienen para auditoría).
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Active    bool
	IP        string
	UserAgent string
	CreatedAt time.Time
}

// CreateSessionInput contiene los datos para crear una sesión.
type CreateSessionInput struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	IP        string
	UserAgent string
}

// SessionRepository define la persistencia de sesiones.
type SessionRepository interface {
	// Create inserta una nueva sesión.
	Create(ctx context.Context, input CreateSessionInput) (*Session, error)

	// ListActiveByUser retorna las sesiones de un usuario con active=true y
	// expires_at > now. El scope por usuario es obligatorio: jamás se valida
	// un refresh contra sesiones de otro sujeto.
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]Session, error)

	// Revoke marca una sesión como inactiva (idempotente).
	Revoke(ctx context.Context, sessionID string) error

	// RevokeAllByUser marca todas las sesiones activas del usuario como
	// inactivas. Retorna cuántas tocó.
	RevokeAllByUser(ctx context.Context, userID string) (int, error)

	// DeleteExpired borra físicamente sesiones vencidas o revocadas.
	// Lo usa el job de retención externo, no el request path.
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}
