package auth

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"yadawity-service/internal/domain/auth"
	xerrors "yadawity-service/internal/pkg/errors"
	"yadawity-service/internal/pkg/ratelimit"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ---- fake credential store ----

type fakeUserStore struct {
	users map[int64]*auth.User
	fail  error
}

func (f *fakeUserStore) FindActiveUserByID(_ context.Context, id int64) (*auth.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	u, ok := f.users[id]
	if !ok || !u.IsActive {
		return nil, xerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindActiveUserByEmail(_ context.Context, email string) (*auth.User, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) && u.IsActive {
			cp := *u
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeUserStore) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = hash
	}
	return nil
}

func (f *fakeUserStore) UpdateEmail(_ context.Context, id int64, email string) error {
	if u, ok := f.users[id]; ok {
		u.Email = email
	}
	return nil
}

// ---- fake session ledger ----

type fakeSessionStore struct {
	sessions map[string]*auth.Session
	fail     error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*auth.Session)}
}

func (f *fakeSessionStore) CreateSession(_ context.Context, s *auth.Session) error {
	if f.fail != nil {
		return f.fail
	}
	cp := *s
	f.sessions[s.SessionID] = &cp
	return nil
}

func (f *fakeSessionStore) FindUsableByUser(_ context.Context, userID int64, now time.Time) ([]*auth.Session, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	var out []*auth.Session
	for _, s := range f.sessions {
		if s.UserID == userID && s.IsActive && s.ExpiresAt.After(now) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoginTime > out[j].LoginTime })
	return out, nil
}

func (f *fakeSessionStore) Invalidate(_ context.Context, sessionID string, now time.Time) error {
	if s, ok := f.sessions[sessionID]; ok && s.IsActive {
		s.IsActive = false
		s.LogoutTime.Time, s.LogoutTime.Valid = now, true
	}
	return nil
}

func (f *fakeSessionStore) InvalidateOthers(_ context.Context, userID int64, keep string, now time.Time) error {
	for _, s := range f.sessions {
		if s.UserID == userID && s.SessionID != keep && s.IsActive {
			s.IsActive = false
			s.LogoutTime.Time, s.LogoutTime.Valid = now, true
		}
	}
	return nil
}

func (f *fakeSessionStore) InvalidateAll(_ context.Context, userID int64, now time.Time) error {
	for _, s := range f.sessions {
		if s.UserID == userID && s.IsActive {
			s.IsActive = false
			s.LogoutTime.Time, s.LogoutTime.Valid = now, true
		}
	}
	return nil
}

func (f *fakeSessionStore) DeleteUnusable(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Before(now) || !s.IsActive {
			delete(f.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// ---- fake code store ----

type fakeCodeStore struct {
	codes map[string]*auth.AuthCode
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[string]*auth.AuthCode)}
}

func (f *fakeCodeStore) CreateCode(_ context.Context, c *auth.AuthCode) error {
	cp := *c
	f.codes[c.ID] = &cp
	return nil
}

func (f *fakeCodeStore) FindValidCode(_ context.Context, purpose, code string, now time.Time) (*auth.AuthCode, error) {
	for _, c := range f.codes {
		if c.Purpose == purpose && c.Code == code && c.ExpiresAt.After(now) && !c.UsedAt.Valid {
			cp := *c
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCodeStore) MarkCodeUsed(_ context.Context, id string, now time.Time) error {
	if c, ok := f.codes[id]; ok {
		c.UsedAt.Time, c.UsedAt.Valid = now, true
	}
	return nil
}

// ---- fake mailer ----

type fakeMailer struct {
	lastResetEmail  string
	lastResetCode   string
	lastChangeEmail string
	lastChangeCode  string
	sent            int
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, email, code string) {
	f.lastResetEmail, f.lastResetCode = email, code
	f.sent++
}

func (f *fakeMailer) SendEmailChangeCode(_ context.Context, email, code string) {
	f.lastChangeEmail, f.lastChangeCode = email, code
	f.sent++
}

// ---- test harness ----

type testEnv struct {
	svc      *AuthService
	users    *fakeUserStore
	sessions *fakeSessionStore
	codes    *fakeCodeStore
	mailer   *fakeMailer
	now      time.Time
}

func (e *testEnv) advance(d time.Duration) {
	e.now = e.now.Add(d)
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users: &fakeUserStore{users: map[int64]*auth.User{
			7: {ID: 7, Email: "collector@yadawity.com", PasswordHash: hashPassword(t, "gallery-pass"), UserType: "buyer", IsActive: true},
			8: {ID: 8, Email: "painter@yadawity.com", PasswordHash: hashPassword(t, "studio-pass"), UserType: "artist", IsActive: true},
			9: {ID: 9, Email: "banned@yadawity.com", PasswordHash: hashPassword(t, "whatever"), UserType: "buyer", IsActive: false},
		}},
		sessions: newFakeSessionStore(),
		codes:    newFakeCodeStore(),
		mailer:   &fakeMailer{},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	env.svc = NewAuthService(
		env.users,
		env.sessions,
		env.codes,
		ratelimit.NewAttemptLimiter(ratelimit.Window),
		env.mailer,
		zap.NewNop(),
	)
	env.svc.now = func() time.Time { return env.now }

	return env
}

func (e *testEnv) login(t *testing.T, email, password string, rememberMe bool) *auth.LoginResult {
	t.Helper()
	result, err := e.svc.Login(context.Background(), &auth.LoginRequest{
		Email:      email,
		Password:   password,
		RememberMe: rememberMe,
		IPAddress:  "203.0.113.10",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return result
}
