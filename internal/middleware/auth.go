package middleware

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// AccessTokenKey is the context key for the bearer token of one request.
const AccessTokenKey contextKey = "access_token"

// WithAccessToken returns a context that makes Bearer attach token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, AccessTokenKey, token)
}

// GetAccessToken extracts the bearer token from the context.
// Returns empty string if not found.
func GetAccessToken(ctx context.Context) string {
	token, _ := ctx.Value(AccessTokenKey).(string)
	return token
}

// Bearer returns a RoundTripper that sets the Authorization header from the
// request context. Requests without a token pass through untouched.
func Bearer() func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			token := GetAccessToken(req.Context())
			if token == "" {
				return next.RoundTrip(req)
			}
			// RoundTrippers must not modify the caller's request.
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(req)
		})
	}
}

// BearerToken parses an Authorization header value.
// Returns empty string if it is not a bearer credential.
func BearerToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
