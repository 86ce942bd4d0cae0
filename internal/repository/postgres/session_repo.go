// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"yadawity-service/internal/domain/auth"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository owns the session ledger. All mutations are single-row or
// single-user-scoped statements; idempotency at the SQL level is what makes
// concurrent invalidation races harmless.
type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession inserts a new ledger row.
func (r *SessionRepository) CreateSession(ctx context.Context, session *auth.Session) error {
	query := `
		INSERT INTO user_sessions (session_id, user_id, login_time, expires_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`

	_, err := r.db.Exec(ctx, query,
		session.SessionID, session.UserID, session.LoginTime, session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// FindUsableByUser returns every session the validator should consider:
// active, unexpired, newest login first.
func (r *SessionRepository) FindUsableByUser(ctx context.Context, userID int64, now time.Time) ([]*auth.Session, error) {
	query := `
		SELECT session_id, user_id, login_time, expires_at, is_active, logout_time
		FROM user_sessions
		WHERE user_id = $1 AND is_active = TRUE AND expires_at > $2
		ORDER BY login_time DESC
	`

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		var s auth.Session
		if err := rows.Scan(
			&s.SessionID, &s.UserID, &s.LoginTime, &s.ExpiresAt, &s.IsActive, &s.LogoutTime,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	return sessions, nil
}

// Invalidate marks one session inactive. Re-invalidating is a no-op.
func (r *SessionRepository) Invalidate(ctx context.Context, sessionID string, now time.Time) error {
	query := `
		UPDATE user_sessions
		SET is_active = FALSE, logout_time = $1
		WHERE session_id = $2 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query, now, sessionID)
	if err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	return nil
}

// InvalidateOthers marks every active session for the user inactive except
// the one to keep. Used after password and email changes so the current
// device stays logged in.
func (r *SessionRepository) InvalidateOthers(ctx context.Context, userID int64, keepSessionID string, now time.Time) error {
	query := `
		UPDATE user_sessions
		SET is_active = FALSE, logout_time = $1
		WHERE user_id = $2 AND session_id <> $3 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query, now, userID, keepSessionID)
	if err != nil {
		return fmt.Errorf("failed to invalidate other sessions: %w", err)
	}
	return nil
}

// InvalidateAll marks every active session for the user inactive. Used after
// a password reset, where there is no current session to preserve.
func (r *SessionRepository) InvalidateAll(ctx context.Context, userID int64, now time.Time) error {
	query := `
		UPDATE user_sessions
		SET is_active = FALSE, logout_time = $1
		WHERE user_id = $2 AND is_active = TRUE
	`
	_, err := r.db.Exec(ctx, query, now, userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}
	return nil
}

// DeleteUnusable removes rows the validator would never accept again:
// expired or already inactive. Its predicate is deliberately the complement
// of FindUsableByUser's, so reaping can never affect validation.
func (r *SessionRepository) DeleteUnusable(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM user_sessions WHERE expires_at < $1 OR is_active = FALSE`

	tag, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
