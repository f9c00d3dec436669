package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/models"
)

// ThemeService reads and writes theme settings. Nothing here is cached.
type ThemeService struct {
	deps
}

// LegacyTheme carries a theme chosen before preferences were stored
// server-side, so the service can migrate it.
type LegacyTheme struct {
	Theme string
	Mode  string
}

// Preferences returns the user's theme preferences.
func (s *ThemeService) Preferences(ctx context.Context, legacy LegacyTheme) (models.ThemePreferences, error) {
	q := url.Values{}
	if legacy.Theme != "" {
		q.Set("legacy_theme", legacy.Theme)
	}
	if legacy.Mode != "" {
		q.Set("legacy_mode", legacy.Mode)
	}
	return apiclient.Call[models.ThemePreferences](ctx, s.api, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/users/me/theme/preferences",
		Query:  q,
		Auth:   true,
	})
}

// UpdatePreferences stores the user's theme preferences.
func (s *ThemeService) UpdatePreferences(ctx context.Context, prefs models.ThemePreferences) (models.ThemePreferences, error) {
	if err := validate.Struct(prefs); err != nil {
		return models.ThemePreferences{}, invalidInput(err)
	}
	return apiclient.Call[models.ThemePreferences](ctx, s.api, apiclient.Request{
		Method: http.MethodPut,
		Path:   "/users/me/theme/preferences",
		Body:   prefs,
		Auth:   true,
	})
}

// Presets returns the built-in themes.
func (s *ThemeService) Presets(ctx context.Context) ([]models.PresetTheme, error) {
	return apiclient.Call[[]models.PresetTheme](ctx, s.api, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/themes/presets",
		Auth:   true,
	})
}

// UserThemes returns the user's saved themes.
func (s *ThemeService) UserThemes(ctx context.Context) ([]models.UserTheme, error) {
	return apiclient.Call[[]models.UserTheme](ctx, s.api, apiclient.Request{
		Method: http.MethodGet,
		Path:   "/users/me/themes",
		Auth:   true,
	})
}

// CreateUserTheme saves a new theme.
func (s *ThemeService) CreateUserTheme(ctx context.Context, in models.UserThemeInput) (models.UserTheme, error) {
	if err := validate.Struct(in); err != nil {
		return models.UserTheme{}, invalidInput(err)
	}
	return apiclient.Call[models.UserTheme](ctx, s.api, apiclient.Request{
		Method: http.MethodPost,
		Path:   "/users/me/themes",
		Body:   in,
		Auth:   true,
	})
}

// UserTheme returns one saved theme.
func (s *ThemeService) UserTheme(ctx context.Context, themeID models.ID) (models.UserTheme, error) {
	if err := requireID("theme id", themeID); err != nil {
		return models.UserTheme{}, err
	}
	return apiclient.Call[models.UserTheme](ctx, s.api, apiclient.Request{
		Method: http.MethodGet,
		Path:   path("users", "me", "themes", string(themeID)),
		Auth:   true,
	})
}

// UpdateUserTheme replaces a saved theme.
func (s *ThemeService) UpdateUserTheme(ctx context.Context, themeID models.ID, in models.UserThemeInput) (models.UserTheme, error) {
	if err := requireID("theme id", themeID); err != nil {
		return models.UserTheme{}, err
	}
	if err := validate.Struct(in); err != nil {
		return models.UserTheme{}, invalidInput(err)
	}
	return apiclient.Call[models.UserTheme](ctx, s.api, apiclient.Request{
		Method: http.MethodPatch,
		Path:   path("users", "me", "themes", string(themeID)),
		Body:   in,
		Auth:   true,
	})
}

// DeleteUserTheme removes a saved theme.
func (s *ThemeService) DeleteUserTheme(ctx context.Context, themeID models.ID) error {
	if err := requireID("theme id", themeID); err != nil {
		return err
	}
	_, err := s.api.Do(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   path("users", "me", "themes", string(themeID)),
		Auth:   true,
	})
	return err
}
