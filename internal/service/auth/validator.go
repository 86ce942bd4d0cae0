// internal/service/auth/validator.go
package auth

import (
	"context"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"
	"yadawity-service/internal/pkg/sessioncookie"

	"go.uber.org/zap"
)

// notAuthenticatedMessage is shown for every validation failure. Malformed
// cookies, unknown users and dead sessions must stay indistinguishable to the
// client.
const notAuthenticatedMessage = "Please log in to continue."

// Validate decides whether a cookie value identifies a live session.
//
// The cookie carries only the user id and a digest, no session identifier,
// so every usable session of the user is a candidate. The expected digest is
// recomputed per candidate and compared in constant time; the first match in
// newest-first order wins. Active session counts are single digits in
// practice, so the scan is cheap.
//
// Pure read path. The only error it can return is a store failure; every
// other failure collapses into an unauthenticated result.
func (s *AuthService) Validate(ctx context.Context, cookieValue string) (*auth.AuthResult, error) {
	userID, digest, err := sessioncookie.Decode(cookieValue)
	if err != nil {
		return s.unauthenticated(xerrors.ErrMalformedCookie), nil
	}

	user, err := s.users.FindActiveUserByID(ctx, userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return s.unauthenticated(xerrors.ErrUnknownUser), nil
		}
		return nil, storeFailure(err)
	}

	candidates, err := s.sessions.FindUsableByUser(ctx, userID, s.now())
	if err != nil {
		return nil, storeFailure(err)
	}

	for _, session := range candidates {
		if sessioncookie.Matches(session.SessionID, user.Email, user.ID, session.LoginTime, digest) {
			return &auth.AuthResult{
				Authenticated: true,
				UserID:        user.ID,
				UserType:      user.UserType,
				IsActive:      true,
				SessionID:     session.SessionID,
			}, nil
		}
	}

	return s.unauthenticated(xerrors.ErrNoMatchingSession), nil
}

// unauthenticated logs the internal cause and returns the uniform result.
func (s *AuthService) unauthenticated(cause error) *auth.AuthResult {
	s.logger.Debug("cookie validation failed", zap.Error(cause))
	return &auth.AuthResult{
		Authenticated:  false,
		DisplayMessage: notAuthenticatedMessage,
	}
}
