package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/gatehouse/internal/domain/repository"
)

// sessionRepo implementa repository.SessionRepository.
type sessionRepo struct {
	pool queryer
}

// NewSessionRepo crea el repositorio de sesiones sobre el pool del Store.
func NewSessionRepo(s *Store) repository.SessionRepository {
	return &sessionRepo{pool: s.pool}
}

const sessionColumns = `id, user_id, token_hash, expires_at, active, ip, user_agent, created_at`

func (r *sessionRepo) Create(ctx context.Context, input repository.CreateSessionInput) (*repository.Session, error) {
	const query = `
		INSERT INTO sessions (user_id, token_hash, expires_at, active, ip, user_agent, created_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, NOW())
		RETURNING ` + sessionColumns

	var s repository.Session
	err := r.pool.QueryRow(ctx, query,
		input.UserID, input.TokenHash, input.ExpiresAt, input.IP, input.UserAgent,
	).Scan(
		&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.Active, &s.IP, &s.UserAgent, &s.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &s, nil
}

func (r *sessionRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]repository.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND active AND expires_at > $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	defer rows.Close()

	var out []repository.Session
	for rows.Next() {
		var s repository.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.Active, &s.IP, &s.UserAgent, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *sessionRepo) Revoke(ctx context.Context, sessionID string) error {
	const query = `UPDATE sessions SET active = FALSE WHERE id = $1 AND active`
	if _, err := r.pool.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *sessionRepo) RevokeAllByUser(ctx context.Context, userID string) (int, error) {
	const query = `UPDATE sessions SET active = FALSE WHERE user_id = $1 AND active`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke all by user: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *sessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	const query = `DELETE FROM sessions WHERE expires_at < $1 OR NOT active`
	tag, err := r.pool.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
