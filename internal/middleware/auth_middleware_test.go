package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"yadawity-service/internal/domain/auth"
	"yadawity-service/internal/pkg/sessioncookie"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubValidator struct {
	result     *auth.AuthResult
	err        error
	lastCookie string
	sweeps     int
}

func (s *stubValidator) Validate(_ context.Context, cookieValue string) (*auth.AuthResult, error) {
	s.lastCookie = cookieValue
	return s.result, s.err
}

func (s *stubValidator) Sweep(context.Context) (int64, error) {
	s.sweeps++
	return 0, nil
}

func doRequest(t *testing.T, v SessionValidator, cookie string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	m := NewAuthMiddleware(v, zap.NewNop())
	var seen *gin.Context
	r.GET("/private", m.Auth(), func(c *gin.Context) {
		seen = c.Copy()
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessioncookie.CookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestAuthNoCookie(t *testing.T) {
	v := &stubValidator{}
	w, seen := doRequest(t, v, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, seen, "handler must not run")
	assert.Empty(t, v.lastCookie, "validator is not consulted without a cookie")
	assert.JSONEq(t, `{"success":false,"message":"not authenticated"}`, w.Body.String())
}

func TestAuthUnauthenticatedCookie(t *testing.T) {
	v := &stubValidator{result: &auth.AuthResult{Authenticated: false, DisplayMessage: "Please log in to continue."}}
	w, seen := doRequest(t, v, "7_deadbeef")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, seen)
	assert.Equal(t, "7_deadbeef", v.lastCookie)
	// The client sees the same body whatever the internal reason was.
	assert.JSONEq(t, `{"success":false,"message":"not authenticated"}`, w.Body.String())
}

func TestAuthStoreFailure(t *testing.T) {
	v := &stubValidator{err: errors.New("connection refused")}
	w, seen := doRequest(t, v, "7_deadbeef")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Nil(t, seen)
	assert.NotContains(t, w.Body.String(), "connection refused", "internal error must not leak")
}

func TestAuthSuccessSetsIdentity(t *testing.T) {
	v := &stubValidator{result: &auth.AuthResult{
		Authenticated: true,
		UserID:        7,
		UserType:      "artist",
		IsActive:      true,
		SessionID:     "abc123",
	}}
	w, seen := doRequest(t, v, "7_c0ffee")

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, seen)

	userID, ok := GetUserID(seen)
	require.True(t, ok)
	assert.Equal(t, int64(7), userID)

	sessionID, ok := GetSessionID(seen)
	require.True(t, ok)
	assert.Equal(t, "abc123", sessionID)

	userType, ok := GetUserType(seen)
	require.True(t, ok)
	assert.Equal(t, "artist", userType)
	assert.True(t, IsAuthenticated(seen))
	assert.True(t, IsArtist(seen))
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(v SessionValidator, cookie string) (*httptest.ResponseRecorder, *gin.Context) {
		r := gin.New()
		m := NewAuthMiddleware(v, zap.NewNop())
		var seen *gin.Context
		r.GET("/page", m.OptionalAuth(), func(c *gin.Context) {
			seen = c.Copy()
			c.Status(http.StatusOK)
		})
		req := httptest.NewRequest(http.MethodGet, "/page", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: sessioncookie.CookieName, Value: cookie})
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w, seen
	}

	// Guest: page renders, no identity.
	w, seen := run(&stubValidator{}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, seen)
	assert.False(t, IsAuthenticated(seen))

	// Dead cookie: still renders as guest.
	w, seen = run(&stubValidator{result: &auth.AuthResult{Authenticated: false}}, "7_deadbeef")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, IsAuthenticated(seen))

	// Live cookie: identity attached.
	w, seen = run(&stubValidator{result: &auth.AuthResult{Authenticated: true, UserID: 7, UserType: "buyer"}}, "7_c0ffee")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, IsAuthenticated(seen))
}

func TestRequireUserType(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(result *auth.AuthResult, allowed ...string) *httptest.ResponseRecorder {
		r := gin.New()
		m := NewAuthMiddleware(&stubValidator{result: result}, zap.NewNop())
		r.GET("/admin", m.Auth(), m.RequireUserType(allowed...), func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: sessioncookie.CookieName, Value: "7_c0ffee"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := run(&auth.AuthResult{Authenticated: true, UserID: 7, UserType: "admin"}, "admin")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = run(&auth.AuthResult{Authenticated: true, UserID: 7, UserType: "buyer"}, "admin", "artist")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
