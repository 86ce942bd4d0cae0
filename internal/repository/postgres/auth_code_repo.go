// internal/repository/postgres/auth_code_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuthCodeRepository stores the one-time codes behind the password-reset and
// email-change flows.
type AuthCodeRepository struct {
	db *pgxpool.Pool
}

func NewAuthCodeRepository(db *pgxpool.Pool) *AuthCodeRepository {
	return &AuthCodeRepository{db: db}
}

// CreateCode inserts a new verification code.
func (r *AuthCodeRepository) CreateCode(ctx context.Context, code *auth.AuthCode) error {
	query := `
		INSERT INTO auth_codes (id, user_id, purpose, code, new_email, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		code.ID, code.UserID, code.Purpose, code.Code, code.NewEmail, code.ExpiresAt,
	).Scan(&code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create auth code: %w", err)
	}

	return nil
}

// FindValidCode finds an unused, unexpired code for the given purpose.
func (r *AuthCodeRepository) FindValidCode(ctx context.Context, purpose, code string, now time.Time) (*auth.AuthCode, error) {
	query := `
		SELECT id, user_id, purpose, code, new_email, expires_at, used_at, created_at
		FROM auth_codes
		WHERE purpose = $1 AND code = $2 AND expires_at > $3 AND used_at IS NULL
	`

	var c auth.AuthCode
	err := r.db.QueryRow(ctx, query, purpose, code, now).Scan(
		&c.ID, &c.UserID, &c.Purpose, &c.Code, &c.NewEmail, &c.ExpiresAt, &c.UsedAt, &c.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find auth code: %w", err)
	}

	return &c, nil
}

// MarkCodeUsed consumes a code so it cannot be redeemed twice.
func (r *AuthCodeRepository) MarkCodeUsed(ctx context.Context, id string, now time.Time) error {
	query := `UPDATE auth_codes SET used_at = $1 WHERE id = $2 AND used_at IS NULL`
	_, err := r.db.Exec(ctx, query, now, id)
	if err != nil {
		return fmt.Errorf("failed to mark code used: %w", err)
	}
	return nil
}
