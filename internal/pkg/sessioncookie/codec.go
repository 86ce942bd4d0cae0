// internal/pkg/sessioncookie/codec.go
//
// Package sessioncookie implements the wire format of the login cookie and
// the per-session HMAC that proves possession of a ledger row. The cookie
// value is "{user_id}_{hex_hmac}"; it deliberately carries no session
// identifier, so a ledger dump alone is not enough to forge a cookie.
package sessioncookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	xerrors "yadawity-service/internal/pkg/errors"
)

// CookieName is the login cookie issued to browsers.
const CookieName = "user_login"

// Encode builds the cookie value from a user ID and a lowercase-hex digest.
func Encode(userID int64, digest string) string {
	return fmt.Sprintf("%d_%s", userID, digest)
}

// Decode splits a cookie value into user ID and digest.
//
// The split is anchored to the first underscore: the digest itself is hex and
// never contains one, but the email that feeds the signing key can, so
// splitting from the right would be wrong.
func Decode(value string) (int64, string, error) {
	prefix, digest, found := strings.Cut(value, "_")
	if !found {
		return 0, "", xerrors.ErrMalformedCookie
	}
	userID, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || userID < 0 {
		return 0, "", xerrors.ErrMalformedCookie
	}
	return userID, digest, nil
}

// Digest computes the signed proof for one session.
//
// The key is derived only from the session's own random ID and the owner's
// current email, never from a process-wide secret. Changing the email
// therefore invalidates every cookie signed under the old one, with no
// ledger write required.
func Digest(sessionID, email string, userID int64, loginTime string) string {
	key := sessionID + "_" + email
	message := sessionID + "|" + email + "|" + strconv.FormatInt(userID, 10) + "|" + loginTime
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// Matches recomputes the expected digest for a session and compares it to the
// cookie's digest in constant time.
func Matches(sessionID, email string, userID int64, loginTime, digest string) bool {
	expected := Digest(sessionID, email, userID, loginTime)
	return hmac.Equal([]byte(expected), []byte(digest))
}
