package models

// ThemePreferences is the user's stored theme choice.
type ThemePreferences struct {
	Mode              string `json:"mode" validate:"required,oneof=light dark system"`
	ActiveType        string `json:"active_type" validate:"required,oneof=preset custom"`
	ActivePresetSlug  string `json:"active_preset_slug,omitempty" validate:"required_if=ActiveType preset"`
	ActiveUserThemeID ID     `json:"active_user_theme_id,omitempty" validate:"required_if=ActiveType custom"`
}

// ThemeTokens maps design token names to values. The client does not
// interpret them.
type ThemeTokens map[string]string

// PresetTheme is a built-in theme (GET /themes/presets).
type PresetTheme struct {
	Slug          string      `json:"slug"`
	Name          string      `json:"name"`
	FontFamilyKey string      `json:"font_family_key"`
	LightTokens   ThemeTokens `json:"light_tokens"`
	DarkTokens    ThemeTokens `json:"dark_tokens"`
}

// UserTheme is a theme saved by the user.
type UserTheme struct {
	ID             ID          `json:"id"`
	Name           string      `json:"name"`
	BasePresetSlug string      `json:"base_preset_slug"`
	FontFamilyKey  string      `json:"font_family_key"`
	LightTokens    ThemeTokens `json:"light_tokens"`
	DarkTokens     ThemeTokens `json:"dark_tokens"`
	CreatedAt      string      `json:"created_at,omitempty"`
	UpdatedAt      string      `json:"updated_at,omitempty"`
}

// UserThemeInput is the body of POST and PATCH /users/me/themes.
type UserThemeInput struct {
	Name           string      `json:"name" validate:"required,max=64"`
	BasePresetSlug string      `json:"base_preset_slug" validate:"required"`
	FontFamilyKey  string      `json:"font_family_key" validate:"required"`
	LightTokens    ThemeTokens `json:"light_tokens" validate:"required"`
	DarkTokens     ThemeTokens `json:"dark_tokens" validate:"required"`
}
