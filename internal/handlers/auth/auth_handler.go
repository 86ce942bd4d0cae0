// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"yadawity-service/internal/domain/auth"
	"yadawity-service/internal/middleware"
	xerrors "yadawity-service/internal/pkg/errors"
	"yadawity-service/internal/pkg/response"
	"yadawity-service/internal/pkg/sessioncookie"
	authUsecase "yadawity-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Login / Logout ==========

// Login handles the login form (public endpoint).
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}
	req.IPAddress = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		switch {
		case xerrors.Is(err, xerrors.ErrRateLimited):
			response.RateLimited(c)
		case xerrors.Is(err, xerrors.ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "invalid email or password")
		default:
			response.ServerError(c)
		}
		return
	}

	h.setSessionCookie(c, result)
	response.Success(c, http.StatusOK, "login successful", result)
}

// Logout invalidates the current session (requires auth).
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := middleware.MustGetSessionID(c)

	if err := h.authService.Logout(c.Request.Context(), sessionID); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.ServerError(c)
		return
	}

	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// LogoutOthers logs out every other device (requires auth).
func (h *AuthHandler) LogoutOthers(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	sessionID := middleware.MustGetSessionID(c)

	if err := h.authService.LogoutOthers(c.Request.Context(), userID, sessionID); err != nil {
		h.logger.Error("logout others failed", zap.Int64("user_id", userID), zap.Error(err))
		response.ServerError(c)
		return
	}

	response.Success(c, http.StatusOK, "other sessions logged out", nil)
}

// LogoutAll logs out every device including this one (requires auth).
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	if err := h.authService.LogoutAll(c.Request.Context(), userID); err != nil {
		h.logger.Error("logout all failed", zap.Int64("user_id", userID), zap.Error(err))
		response.ServerError(c)
		return
	}

	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, "all sessions logged out", nil)
}

// ========== Session self-service ==========

// Sessions lists the user's active sessions (requires auth).
func (h *AuthHandler) Sessions(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	sessionID := middleware.MustGetSessionID(c)

	sessions, err := h.authService.ActiveSessions(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.ServerError(c)
		return
	}

	response.Success(c, http.StatusOK, "active sessions", sessions)
}

// Me returns the authenticated identity (requires auth).
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	userType, _ := middleware.GetUserType(c)

	response.Success(c, http.StatusOK, "authenticated", gin.H{
		"user_id":   userID,
		"user_type": userType,
	})
}

// ========== Password management ==========

// ChangePassword changes the password and logs out other devices (requires auth).
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	sessionID := middleware.MustGetSessionID(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, sessionID, &req); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrInvalidCredentials):
			response.Error(c, http.StatusBadRequest, "current password is incorrect")
		default:
			response.ServerError(c)
		}
		return
	}

	response.Success(c, http.StatusOK, "password changed, other devices logged out", nil)
}

// ForgotPassword requests a password-reset code (public endpoint).
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req auth.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), c.ClientIP(), req.Email); err != nil {
		if xerrors.Is(err, xerrors.ErrRateLimited) {
			response.RateLimited(c)
			return
		}
		h.logger.Error("forgot password failed", zap.Error(err))
		// fall through: never reveal whether the email exists
	}

	response.Success(c, http.StatusOK, "if the email exists, a reset code has been sent", nil)
}

// ResetPassword redeems a reset code (public endpoint).
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req auth.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Code, req.NewPassword); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrInvalidCode):
			response.Error(c, http.StatusBadRequest, "invalid or expired code")
		default:
			response.ServerError(c)
		}
		return
	}

	response.Success(c, http.StatusOK, "password reset, please log in again", nil)
}

// ========== Email change ==========

// RequestEmailChange sends a verification code to the new address (requires auth).
func (h *AuthHandler) RequestEmailChange(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req auth.RequestEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.authService.RequestEmailChange(c.Request.Context(), userID, c.ClientIP(), &req); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrRateLimited):
			response.RateLimited(c)
		case xerrors.Is(err, xerrors.ErrInvalidCredentials):
			response.Error(c, http.StatusBadRequest, "password is incorrect")
		case xerrors.Is(err, xerrors.ErrDuplicateEntry):
			response.Error(c, http.StatusBadRequest, "email is already in use")
		default:
			response.ServerError(c)
		}
		return
	}

	response.Success(c, http.StatusOK, "verification code sent", nil)
}

// ConfirmEmailChange redeems the code, rotates the email, and re-issues the
// current session's cookie under the new address (requires auth).
func (h *AuthHandler) ConfirmEmailChange(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	sessionID := middleware.MustGetSessionID(c)

	var req auth.ConfirmEmailChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.authService.ConfirmEmailChange(c.Request.Context(), userID, sessionID, req.Code)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrInvalidCode):
			response.Error(c, http.StatusBadRequest, "invalid or expired code")
		default:
			response.ServerError(c)
		}
		return
	}

	h.setSessionCookie(c, result)
	response.Success(c, http.StatusOK, "email changed, other devices logged out", result)
}

// ========== Cookie helpers ==========

// setSessionCookie writes the login cookie. MaxAge zero makes it a
// browser-session cookie; the Secure flag follows the connection.
func (h *AuthHandler) setSessionCookie(c *gin.Context, result *auth.LoginResult) {
	secure := c.Request.TLS != nil
	c.SetCookie(sessioncookie.CookieName, result.CookieValue, result.CookieMaxAge, "/", "", secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	secure := c.Request.TLS != nil
	c.SetCookie(sessioncookie.CookieName, "", -1, "/", "", secure, true)
}
