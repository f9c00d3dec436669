package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/session"
)

// AuthService manages the session's token pair.
type AuthService struct {
	deps
}

// SignupInput is the body of POST /users/.
type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login exchanges credentials for a token pair and stores it.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.LoginResult, error) {
	email = strings.TrimSpace(email)
	s.logger.Info("Login request", "email", email)

	if err := auth.ValidateLogin(email, password); err != nil {
		return models.LoginResult{}, invalidInput(err)
	}

	result, err := apiclient.Call[models.LoginResult](ctx, s.api, apiclient.Request{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Body:    map[string]string{"email": email, "password": password},
		NoRetry: true,
	})
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		return models.LoginResult{}, err
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return models.LoginResult{}, &apiclient.Error{
			Kind:    apiclient.KindProtocol,
			Message: "Login response is missing tokens.",
		}
	}

	if err := s.store.SetTokens(ctx, session.Tokens{Access: result.AccessToken, Refresh: result.RefreshToken}); err != nil {
		return models.LoginResult{}, fmt.Errorf("failed to save session: %w", err)
	}
	s.caches.Invalidate(OpLogin, "")

	s.logger.Info("Login successful", "email", email, "user_id", auth.Subject(result.AccessToken))
	return result, nil
}

// Signup creates an account and then signs in with it.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (models.LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	s.logger.Info("Signup request", "email", in.Email)

	if err := validate.Struct(in); err != nil {
		return models.LoginResult{}, invalidInput(err)
	}
	if err := auth.ValidateCredential(in.Password); err != nil {
		return models.LoginResult{}, invalidInput(err)
	}

	if _, err := s.api.Do(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    "/users/",
		Body:    in,
		NoRetry: true,
	}); err != nil {
		s.logger.Warn("Signup failed", "email", in.Email, "error", err)
		return models.LoginResult{}, err
	}

	return s.Login(ctx, in.Email, in.Password)
}

// Logout revokes the refresh token. The local session is cleared even when
// the service call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	tokens, err := s.store.Tokens(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	defer s.clearSession(ctx)

	if tokens.Refresh == "" {
		return nil
	}
	_, err = s.api.Do(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    "/auth/logout",
		Body:    map[string]string{"refresh_token": tokens.Refresh},
		Auth:    true,
		NoRetry: true,
	})
	return err
}

// LogoutAll revokes every session of the user. The local session is
// cleared even when the service call fails.
func (s *AuthService) LogoutAll(ctx context.Context) error {
	defer s.clearSession(ctx)

	_, err := s.api.Do(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    "/auth/logout-all",
		Auth:    true,
		NoRetry: true,
	})
	return err
}

// SignedIn reports whether a refresh token is stored.
func (s *AuthService) SignedIn(ctx context.Context) (bool, error) {
	tokens, err := s.store.Tokens(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	return tokens.Refresh != "" || tokens.Access != "", nil
}

func (s *AuthService) clearSession(ctx context.Context) {
	if err := s.store.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("Failed to clear session", "error", err)
	}
	s.caches.Invalidate(OpLogout, "")
	s.logger.Info("Signed out")
}
