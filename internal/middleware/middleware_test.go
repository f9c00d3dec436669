package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestChainOrder(t *testing.T) {
	var order []string
	tag := func(name string) func(http.RoundTripper) http.RoundTripper {
		return func(next http.RoundTripper) http.RoundTripper {
			return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}
	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}, nil
	})

	rt := Chain(base, tag("first"), tag("second"))
	req := httptest.NewRequest(http.MethodGet, "http://example.test/groups", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "base"}, order)
}

func TestBearer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Chain(http.DefaultTransport, Bearer())}

	t.Run("token in context", func(t *testing.T) {
		req, err := http.NewRequestWithContext(WithAccessToken(context.Background(), "abc"), http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "Bearer abc", got)
		assert.Empty(t, req.Header.Get("Authorization"), "caller's request must not be mutated")
	})

	t.Run("no token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Empty(t, got)
	})
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "tok", BearerToken("Bearer tok"))
	assert.Empty(t, BearerToken("Basic tok"))
	assert.Empty(t, BearerToken("Bearer"))
}

func TestLoggingOmitsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: Chain(http.DefaultTransport, Bearer(), Logging(logger))}

	req, err := http.NewRequestWithContext(WithAccessToken(context.Background(), "secret-token"), http.MethodGet, srv.URL+"/users/me", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	out := buf.String()
	assert.Contains(t, out, "path=/users/me")
	assert.Contains(t, out, "status=200")
	assert.False(t, strings.Contains(out, "secret-token"))
}

func TestRateLimit(t *testing.T) {
	calls := 0
	base := RoundTripperFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})

	t.Run("nil limiter passes through", func(t *testing.T) {
		rt := RateLimit(nil)(base)
		_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
		require.NoError(t, err)
	})

	t.Run("cancelled wait returns error", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		rt := RateLimit(limiter)(base)

		_, err := rt.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.test/", nil))
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		req := httptest.NewRequest(http.MethodGet, "http://example.test/", nil).WithContext(ctx)
		_, err = rt.RoundTrip(req)
		assert.Error(t, err)
	})

	assert.Equal(t, 2, calls)
}
