package config

import "github.com/caarlos0/env/v11"

// Settings captures environment-derived runtime settings. They are read
// once at startup and passed explicitly so behavior driven by them stays
// testable without process-level mutation.
type Settings struct {
	// APIKeyOverride bypasses the session file for authentication. The
	// sign-out flow cannot unset it; it warns the user instead.
	APIKeyOverride string `env:"ECONOMIST_API_KEY"`
	// DarkMode forces the dark theme regardless of terminal detection.
	DarkMode bool `env:"ECONOMIST_DARK_MODE"`
}

// LoadSettings parses runtime settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// OverrideActive reports whether the API key override is set (non-empty).
func (s Settings) OverrideActive() bool {
	return s.APIKeyOverride != ""
}
