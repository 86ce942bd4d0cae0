// internal/service/auth/stores.go
package auth

import (
	"context"
	"time"

	"yadawity-service/internal/domain/auth"
)

// UserStore is the credential store consumed by the auth core.
type UserStore interface {
	FindActiveUserByID(ctx context.Context, id int64) (*auth.User, error)
	FindActiveUserByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	UpdateEmail(ctx context.Context, id int64, email string) error
}

// SessionStore is the session ledger.
type SessionStore interface {
	CreateSession(ctx context.Context, session *auth.Session) error
	FindUsableByUser(ctx context.Context, userID int64, now time.Time) ([]*auth.Session, error)
	Invalidate(ctx context.Context, sessionID string, now time.Time) error
	InvalidateOthers(ctx context.Context, userID int64, keepSessionID string, now time.Time) error
	InvalidateAll(ctx context.Context, userID int64, now time.Time) error
	DeleteUnusable(ctx context.Context, now time.Time) (int64, error)
}

// CodeStore persists one-time verification codes.
type CodeStore interface {
	CreateCode(ctx context.Context, code *auth.AuthCode) error
	FindValidCode(ctx context.Context, purpose, code string, now time.Time) (*auth.AuthCode, error)
	MarkCodeUsed(ctx context.Context, id string, now time.Time) error
}

// Mailer hands messages to the storefront's notification system. Delivery is
// not this subsystem's concern.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, code string)
	SendEmailChangeCode(ctx context.Context, email, code string)
}
