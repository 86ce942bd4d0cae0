// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetUserID gets the authenticated user ID from context.
func GetUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetUserID gets the user ID from context or panics. Only valid behind
// Auth().
func MustGetUserID(c *gin.Context) int64 {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id not found in context")
	}
	return id
}

// GetSessionID gets the matched session ID from context.
func GetSessionID(c *gin.Context) (string, bool) {
	v, exists := c.Get("session_id")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// MustGetSessionID gets the session ID from context or panics.
func MustGetSessionID(c *gin.Context) string {
	id, ok := GetSessionID(c)
	if !ok {
		panic("session_id not found in context")
	}
	return id
}

// GetUserType gets the account type from context.
func GetUserType(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_type")
	if !exists {
		return "", false
	}
	t, ok := v.(string)
	return t, ok
}

// IsAuthenticated checks if the request carries a validated session.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_id")
	return exists
}

// IsArtist checks if the user is an artist account.
func IsArtist(c *gin.Context) bool {
	t, _ := GetUserType(c)
	return t == "artist"
}

// IsAdmin checks if the user is an admin account.
func IsAdmin(c *gin.Context) bool {
	t, _ := GetUserType(c)
	return t == "admin"
}
