// internal/service/auth/email_change.go
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"
	"yadawity-service/internal/pkg/sessioncookie"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RequestEmailChange sends a verification code to the address the user wants
// to switch to. Rate limited per client IP and user.
func (s *AuthService) RequestEmailChange(ctx context.Context, userID int64, ip string, req *auth.RequestEmailChangeRequest) error {
	if !s.limiter.AllowEmailChange(ip, userID) {
		return xerrors.ErrRateLimited
	}

	user, err := s.users.FindActiveUserByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return xerrors.ErrInvalidCredentials
		}
		return storeFailure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return xerrors.ErrInvalidCredentials
	}

	if _, err := s.users.FindActiveUserByEmail(ctx, req.NewEmail); err == nil {
		return xerrors.ErrDuplicateEntry
	} else if !xerrors.Is(err, xerrors.ErrNotFound) {
		return storeFailure(err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	authCode := &auth.AuthCode{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Purpose:   auth.PurposeEmailChange,
		Code:      code,
		NewEmail:  sql.NullString{String: req.NewEmail, Valid: true},
		ExpiresAt: s.now().Add(codeTTL),
	}

	if err := s.codes.CreateCode(ctx, authCode); err != nil {
		return storeFailure(err)
	}

	s.mailer.SendEmailChangeCode(ctx, req.NewEmail, code)
	return nil
}

// ConfirmEmailChange redeems the code and rotates the user's email.
//
// The email is part of every session's signing key, so the moment the update
// commits, all outstanding cookies for this user stop matching — the ledger
// invalidation below is defense-in-depth cleanup, not the mechanism. The
// current session's ledger row is kept and its cookie is re-signed under the
// new email so the device performing the change stays logged in.
func (s *AuthService) ConfirmEmailChange(ctx context.Context, userID int64, keepSessionID, code string) (*auth.LoginResult, error) {
	authCode, err := s.codes.FindValidCode(ctx, auth.PurposeEmailChange, code, s.now())
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCode
		}
		return nil, storeFailure(err)
	}
	if authCode.UserID != userID || !authCode.NewEmail.Valid {
		return nil, xerrors.ErrInvalidCode
	}

	user, err := s.users.FindActiveUserByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, storeFailure(err)
	}

	newEmail := authCode.NewEmail.String
	if err := s.users.UpdateEmail(ctx, userID, newEmail); err != nil {
		return nil, storeFailure(err)
	}

	if err := s.codes.MarkCodeUsed(ctx, authCode.ID, s.now()); err != nil {
		s.logger.Error("failed to mark email-change code used", zap.Error(err))
	}

	if err := s.sessions.InvalidateOthers(ctx, userID, keepSessionID, s.now()); err != nil {
		return nil, storeFailure(err)
	}

	current, err := s.findSession(ctx, userID, keepSessionID)
	if err != nil {
		return nil, err
	}

	digest := sessioncookie.Digest(current.SessionID, newEmail, userID, current.LoginTime)

	cookieMaxAge := 0
	if current.Persistent() {
		cookieMaxAge = int(current.ExpiresAt.Sub(s.now()) / time.Second)
	}

	s.logger.Info("email changed", zap.Int64("user_id", userID))

	return &auth.LoginResult{
		CookieValue:  sessioncookie.Encode(userID, digest),
		CookieMaxAge: cookieMaxAge,
		ExpiresAt:    current.ExpiresAt,
		User: auth.UserInfo{
			UserID:   userID,
			Email:    newEmail,
			UserType: user.UserType,
		},
		Session: current,
	}, nil
}

// findSession locates one usable ledger row for the user.
func (s *AuthService) findSession(ctx context.Context, userID int64, sessionID string) (*auth.Session, error) {
	sessions, err := s.sessions.FindUsableByUser(ctx, userID, s.now())
	if err != nil {
		return nil, storeFailure(err)
	}
	for _, sess := range sessions {
		if sess.SessionID == sessionID {
			return sess, nil
		}
	}
	return nil, xerrors.ErrNoMatchingSession
}
