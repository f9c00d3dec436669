package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsync/internal/models"
)

func TestThemeService(t *testing.T) {
	l := newLedger(t)
	l.handle("GET /users/me/theme/preferences", true, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		writeData(w, http.StatusOK, models.ThemePreferences{
			Mode:             q.Get("legacy_mode"),
			ActiveType:       "preset",
			ActivePresetSlug: q.Get("legacy_theme"),
		})
	})
	l.handle("PUT /users/me/theme/preferences", true, func(w http.ResponseWriter, r *http.Request) {
		var prefs models.ThemePreferences
		decodeBody(t, r, &prefs)
		writeData(w, http.StatusOK, prefs)
	})
	l.handle("GET /themes/presets", true, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []models.PresetTheme{{Slug: "default"}, {Slug: "ocean"}})
	})
	l.handle("POST /users/me/themes", true, func(w http.ResponseWriter, r *http.Request) {
		var in models.UserThemeInput
		decodeBody(t, r, &in)
		writeData(w, http.StatusCreated, models.UserTheme{ID: "t1", Name: in.Name})
	})
	l.handle("GET /users/me/themes", true, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []models.UserTheme{{ID: "t1", Name: "Mine"}})
	})
	l.handle("GET /users/me/themes/{id}", true, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, models.UserTheme{ID: models.ID(r.PathValue("id")), Name: "Mine"})
	})
	l.handle("PATCH /users/me/themes/{id}", true, func(w http.ResponseWriter, r *http.Request) {
		var in models.UserThemeInput
		decodeBody(t, r, &in)
		writeData(w, http.StatusOK, models.UserTheme{ID: models.ID(r.PathValue("id")), Name: in.Name})
	})
	l.handle("DELETE /users/me/themes/{id}", true, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "t1", r.PathValue("id"))
		writeData(w, http.StatusOK, models.Message{Message: "deleted"})
	})
	c, _ := newTestClient(t, l)
	ctx := context.Background()

	prefs, err := c.Themes.Preferences(ctx, LegacyTheme{Theme: "ocean", Mode: "dark"})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Mode)
	assert.Equal(t, "ocean", prefs.ActivePresetSlug)

	_, err = c.Themes.UpdatePreferences(ctx, models.ThemePreferences{Mode: "dark", ActiveType: "custom"})
	assert.ErrorIs(t, err, ErrInvalidInput, "custom theme needs an id")

	updated, err := c.Themes.UpdatePreferences(ctx, models.ThemePreferences{Mode: "light", ActiveType: "custom", ActiveUserThemeID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("t1"), updated.ActiveUserThemeID)

	presets, err := c.Themes.Presets(ctx)
	require.NoError(t, err)
	assert.Len(t, presets, 2)

	theme, err := c.Themes.CreateUserTheme(ctx, models.UserThemeInput{
		Name:           "Mine",
		BasePresetSlug: "ocean",
		FontFamilyKey:  "system",
		LightTokens:    models.ThemeTokens{"bg": "#fff"},
		DarkTokens:     models.ThemeTokens{"bg": "#000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mine", theme.Name)

	saved, err := c.Themes.UserThemes(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 1)

	one, err := c.Themes.UserTheme(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Mine", one.Name)

	renamed, err := c.Themes.UpdateUserTheme(ctx, "t1", models.UserThemeInput{
		Name:           "Renamed",
		BasePresetSlug: "ocean",
		FontFamilyKey:  "system",
		LightTokens:    models.ThemeTokens{"bg": "#fff"},
		DarkTokens:     models.ThemeTokens{"bg": "#000"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Name)

	_, err = c.Themes.CreateUserTheme(ctx, models.UserThemeInput{Name: "Incomplete"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, c.Themes.DeleteUserTheme(ctx, "t1"))
	assert.ErrorIs(t, c.Themes.DeleteUserTheme(ctx, ""), ErrInvalidInput)

	assert.Equal(t, 1, l.count("GET /themes/presets"))
}
