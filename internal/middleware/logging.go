package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logging returns a RoundTripper that logs every outgoing request.
// It logs the method, path, status and duration. Headers are never logged
// since they carry bearer tokens.
func Logging(logger *slog.Logger) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(req)

			duration := time.Since(start).Milliseconds()
			if err != nil {
				logger.Warn("HTTP request failed",
					"method", req.Method,
					"path", req.URL.Path,
					"error", err,
					"duration_ms", duration,
				)
				return nil, err
			}

			level := slog.LevelDebug
			if resp.StatusCode >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(req.Context(), level, "HTTP request completed",
				"method", req.Method,
				"path", req.URL.Path,
				"status", resp.StatusCode,
				"duration_ms", duration,
			)
			return resp, nil
		})
	}
}
