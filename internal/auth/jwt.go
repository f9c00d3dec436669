// Package auth inspects access tokens and validates credentials on the client side.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// parser only decodes claims. The client never holds the signing key, so
// signatures are left to the service.
var parser = jwt.NewParser(jwt.WithoutClaimsValidation())

// ExpiresAt reads the exp claim of an access token. ok is false for opaque
// (non-JWT) tokens and for JWTs without an exp claim.
func ExpiresAt(token string) (exp time.Time, ok bool) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether token is a JWT whose exp claim is at or before
// now+leeway. Tokens without a readable expiry are never considered expired;
// the service has the final say through a 401.
func Expired(token string, now time.Time, leeway time.Duration) bool {
	exp, ok := ExpiresAt(token)
	if !ok {
		return false
	}
	return !now.Add(leeway).Before(exp)
}

// Subject returns the sub claim of token, or "" when it has none.
func Subject(token string) string {
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return ""
	}
	return claims.Subject
}
