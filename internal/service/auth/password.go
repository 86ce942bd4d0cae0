// internal/service/auth/password.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ChangePassword changes the password of a logged-in user and logs out every
// other device. Unlike an email change, a password change does not rotate the
// cookie signing key, so the ledger update here is the only thing that
// revokes the other devices' cookies.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, keepSessionID string, req *auth.ChangePasswordRequest) error {
	user, err := s.users.FindActiveUserByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrInvalidCredentials
		}
		return storeFailure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return xerrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return storeFailure(err)
	}

	if err := s.sessions.InvalidateOthers(ctx, userID, keepSessionID, s.now()); err != nil {
		return storeFailure(err)
	}

	s.logger.Info("password changed", zap.Int64("user_id", userID))
	return nil
}

// ForgotPassword issues a password-reset code. The response never reveals
// whether the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, ip, email string) error {
	if !s.limiter.AllowPasswordReset(ip, email) {
		return xerrors.ErrRateLimited
	}

	user, err := s.users.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return storeFailure(err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}
	authCode := &auth.AuthCode{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		Purpose:   auth.PurposePasswordReset,
		Code:      code,
		ExpiresAt: s.now().Add(codeTTL),
	}

	if err := s.codes.CreateCode(ctx, authCode); err != nil {
		return storeFailure(err)
	}

	s.mailer.SendPasswordReset(ctx, user.Email, code)
	return nil
}

// ResetPassword redeems a reset code and logs out every session; there is no
// current session to preserve in the forgot-password flow.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	authCode, err := s.codes.FindValidCode(ctx, auth.PurposePasswordReset, code, s.now())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrInvalidCode
		}
		return storeFailure(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, authCode.UserID, string(hash)); err != nil {
		return storeFailure(err)
	}

	if err := s.codes.MarkCodeUsed(ctx, authCode.ID, s.now()); err != nil {
		s.logger.Error("failed to mark reset code used", zap.Error(err))
	}

	if err := s.sessions.InvalidateAll(ctx, authCode.UserID, s.now()); err != nil {
		return storeFailure(err)
	}

	s.logger.Info("password reset", zap.Int64("user_id", authCode.UserID))
	return nil
}

// generateCode returns a 32-byte random code, URL-safe base64 encoded.
func generateCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
