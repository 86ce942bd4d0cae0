// internal/domain/auth/dto.go
package auth

import "time"

// AuthResult is what the validator hands to every other handler. A request is
// either authenticated or it is not; the reason a cookie failed is never part
// of the result.
type AuthResult struct {
	Authenticated  bool   `json:"authenticated"`
	UserID         int64  `json:"user_id,omitempty"`
	UserType       string `json:"user_type,omitempty"`
	IsActive       bool   `json:"is_active"`
	SessionID      string `json:"-"` // ledger row that matched, for logout
	DisplayMessage string `json:"display_message,omitempty"`
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`

	// Filled by the handler, not the client.
	IPAddress string `json:"-"`
}

// LoginResult carries the freshly issued session and the cookie the handler
// must set. CookieMaxAge is zero for a browser-session cookie.
type LoginResult struct {
	CookieValue  string    `json:"-"`
	CookieMaxAge int       `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserInfo  `json:"user"`
	Session      *Session  `json:"-"`
}

// UserInfo is the minimal user payload returned on login.
type UserInfo struct {
	UserID   int64  `json:"user_id"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

// SessionInfo is a single row of the account-settings devices view.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	LoginTime string    `json:"login_time"`
	ExpiresAt time.Time `json:"expires_at"`
	Current   bool      `json:"current"`
}

// ChangePasswordRequest changes the password of a logged-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ForgotPasswordRequest asks for a password-reset code.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest redeems a password-reset code.
type ResetPasswordRequest struct {
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// RequestEmailChangeRequest asks for an email-change verification code.
type RequestEmailChangeRequest struct {
	Password string `json:"password" binding:"required"`
	NewEmail string `json:"new_email" binding:"required,email"`
}

// ConfirmEmailChangeRequest redeems an email-change verification code.
type ConfirmEmailChangeRequest struct {
	Code string `json:"code" binding:"required"`
}
