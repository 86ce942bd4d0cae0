// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository is the credential store. The auth core reads it on every
// validation and only writes it through the credential-change flows.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindActiveUserByID retrieves an active user by ID. Disabled and deleted
// users are not distinguishable from missing ones.
func (r *UserRepository) FindActiveUserByID(ctx context.Context, id int64) (*auth.User, error) {
	query := `
		SELECT user_id, email, password_hash, user_type, is_active
		FROM users
		WHERE user_id = $1 AND is_active = TRUE
	`

	var user auth.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.UserType, &user.IsActive,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// FindActiveUserByEmail retrieves an active user by email.
func (r *UserRepository) FindActiveUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	query := `
		SELECT user_id, email, password_hash, user_type, is_active
		FROM users
		WHERE LOWER(email) = LOWER($1) AND is_active = TRUE
	`

	var user auth.User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.UserType, &user.IsActive,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	query := `UPDATE users SET password_hash = $1 WHERE user_id = $2`
	_, err := r.db.Exec(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	return nil
}

// UpdateEmail replaces the user's email. Every outstanding cookie for the
// user is cryptographically dead the moment this commits, because the email
// is part of each session's signing key.
func (r *UserRepository) UpdateEmail(ctx context.Context, id int64, email string) error {
	query := `UPDATE users SET email = $1 WHERE user_id = $2`
	_, err := r.db.Exec(ctx, query, email, id)
	if err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}
	return nil
}
