// internal/service/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"
	"yadawity-service/internal/pkg/ratelimit"
	"yadawity-service/internal/pkg/sessioncookie"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Duration policy for issued sessions and one-time codes.
const (
	sessionTTL    = 24 * time.Hour
	rememberMeTTL = 30 * 24 * time.Hour
	codeTTL       = 1 * time.Hour
)

type AuthService struct {
	users    UserStore
	sessions SessionStore
	codes    CodeStore
	limiter  *ratelimit.AttemptLimiter
	mailer   Mailer
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	users UserStore,
	sessions SessionStore,
	codes CodeStore,
	limiter *ratelimit.AttemptLimiter,
	mailer Mailer,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		codes:    codes,
		limiter:  limiter,
		mailer:   mailer,
		logger:   logger,
		now:      time.Now,
	}
}

// ========== Login ==========

// Login authenticates a user with email/password and issues a session.
func (s *AuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResult, error) {
	if !s.limiter.AllowLogin(req.IPAddress, req.Email) {
		return nil, xerrors.ErrRateLimited
	}

	user, err := s.users.FindActiveUserByEmail(ctx, req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, storeFailure(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrInvalidCredentials
	}

	return s.issueSession(ctx, user, req.RememberMe)
}

// issueSession creates the ledger row and the cookie for a successful login.
//
// The login_time string is captured once and used verbatim for both the DB
// row and the digest; recomputing it later from another source would break
// validation. remember_me=false keeps two independent expiry mechanisms: the
// ledger row lasts a day, but the cookie itself is a browser-session cookie,
// and whichever ends first terminates access.
func (s *AuthService) issueSession(ctx context.Context, user *auth.User, rememberMe bool) (*auth.LoginResult, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	// login_time is stored at second precision, so the expiry must be
	// anchored to the same truncated instant; otherwise a one-day session
	// issued at a fractional second measures just over 24h and gets
	// misclassified as remember-me.
	now := s.now().UTC().Truncate(time.Second)
	loginTime := now.Format(auth.LoginTimeLayout)

	ttl := sessionTTL
	cookieMaxAge := 0
	if rememberMe {
		ttl = rememberMeTTL
		cookieMaxAge = int(rememberMeTTL / time.Second)
	}

	session := &auth.Session{
		SessionID: sessionID,
		UserID:    user.ID,
		LoginTime: loginTime,
		ExpiresAt: now.Add(ttl),
		IsActive:  true,
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		s.logger.Error("session insert failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return nil, storeFailure(err)
	}

	digest := sessioncookie.Digest(sessionID, user.Email, user.ID, loginTime)

	return &auth.LoginResult{
		CookieValue:  sessioncookie.Encode(user.ID, digest),
		CookieMaxAge: cookieMaxAge,
		ExpiresAt:    session.ExpiresAt,
		User: auth.UserInfo{
			UserID:   user.ID,
			Email:    user.Email,
			UserType: user.UserType,
		},
		Session: session,
	}, nil
}

// ========== Logout ==========

// Logout invalidates the current session. The cookie bytes in the browser do
// not change, but no ledger row will match them anymore.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Invalidate(ctx, sessionID, s.now()); err != nil {
		return storeFailure(err)
	}
	return nil
}

// LogoutOthers invalidates every session for the user except the current one.
func (s *AuthService) LogoutOthers(ctx context.Context, userID int64, keepSessionID string) error {
	if err := s.sessions.InvalidateOthers(ctx, userID, keepSessionID, s.now()); err != nil {
		return storeFailure(err)
	}
	return nil
}

// LogoutAll invalidates every session for the user.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.sessions.InvalidateAll(ctx, userID, s.now()); err != nil {
		return storeFailure(err)
	}
	return nil
}

// ========== Session self-service ==========

// ActiveSessions lists the user's usable sessions for the devices view.
func (s *AuthService) ActiveSessions(ctx context.Context, userID int64, currentSessionID string) ([]*auth.SessionInfo, error) {
	sessions, err := s.sessions.FindUsableByUser(ctx, userID, s.now())
	if err != nil {
		return nil, storeFailure(err)
	}

	infos := make([]*auth.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, &auth.SessionInfo{
			SessionID: sess.SessionID,
			LoginTime: sess.LoginTime,
			ExpiresAt: sess.ExpiresAt,
			Current:   sess.SessionID == currentSessionID,
		})
	}

	return infos, nil
}

// ========== Reaper ==========

// Sweep deletes expired and inactive ledger rows. It reclaims storage only;
// validation already filters on the same predicate.
func (s *AuthService) Sweep(ctx context.Context) (int64, error) {
	deleted, err := s.sessions.DeleteUnusable(ctx, s.now())
	if err != nil {
		return 0, storeFailure(err)
	}
	if deleted > 0 {
		s.logger.Info("swept session ledger", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

// ========== Helpers ==========

// newSessionID returns 32 bytes from a CSPRNG, hex-encoded.
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", xerrors.ErrStoreUnavailable, err)
}
