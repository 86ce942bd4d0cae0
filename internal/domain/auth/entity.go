// internal/domain/auth/entity.go
package auth

import (
	"database/sql"
	"time"
)

// LoginTimeLayout is the exact textual form in which login_time is stored.
// The stored string is part of the signed cookie message, so the layout must
// never change for rows that already exist.
const LoginTimeLayout = "2006-01-02 15:04:05"

// User is the storefront's user row as seen by the auth core. The core only
// reads it, except for the credential-change flows that update email or
// password_hash and then cascade session invalidation.
type User struct {
	ID           int64  `json:"user_id" db:"user_id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	UserType     string `json:"user_type" db:"user_type"` // buyer, artist, admin
	IsActive     bool   `json:"is_active" db:"is_active"`
}

// Session mirrors a user_sessions ledger row.
type Session struct {
	SessionID  string       `json:"session_id" db:"session_id"`
	UserID     int64        `json:"user_id" db:"user_id"`
	LoginTime  string       `json:"login_time" db:"login_time"` // verbatim stored string, signed
	ExpiresAt  time.Time    `json:"expires_at" db:"expires_at"`
	IsActive   bool         `json:"is_active" db:"is_active"`
	LogoutTime sql.NullTime `json:"logout_time" db:"logout_time"`
}

// Persistent reports whether the session was issued under the long-lived
// remember-me policy. It is derived from the gap between issuance and ledger
// expiry, since the ledger does not record the flag itself.
func (s *Session) Persistent() bool {
	loginAt, err := time.Parse(LoginTimeLayout, s.LoginTime)
	if err != nil {
		return false
	}
	return s.ExpiresAt.Sub(loginAt) > 24*time.Hour
}

// AuthCode is a one-time verification code row (password reset, email change).
type AuthCode struct {
	ID        string         `json:"id" db:"id"`
	UserID    int64          `json:"user_id" db:"user_id"`
	Purpose   string         `json:"purpose" db:"purpose"` // password_reset, email_change
	Code      string         `json:"-" db:"code"`
	NewEmail  sql.NullString `json:"-" db:"new_email"`
	ExpiresAt time.Time      `json:"expires_at" db:"expires_at"`
	UsedAt    sql.NullTime   `json:"used_at" db:"used_at"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Code purposes.
const (
	PurposePasswordReset = "password_reset"
	PurposeEmailChange   = "email_change"
)
