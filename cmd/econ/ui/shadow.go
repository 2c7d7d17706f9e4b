package ui

import (
	"fmt"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// DefaultShadowColor is used when no shadow color option is given.
var DefaultShadowColor = lipgloss.Color("#5c5c5c")

// ShadowOption configures ShadowText rendering.
type ShadowOption func(*shadowConfig)

type shadowConfig struct {
	shadowColor lipgloss.Color
	face        lipgloss.Style
}

// WithShadowColor overrides the shadow color.
func WithShadowColor(c lipgloss.Color) ShadowOption {
	return func(cfg *shadowConfig) {
		cfg.shadowColor = c
	}
}

// WithFaceStyle sets the style applied to the text itself. Pass-through
// presentation attributes (bold, foreground, padding) go here.
func WithFaceStyle(s lipgloss.Style) ShadowOption {
	return func(cfg *shadowConfig) {
		cfg.face = s
	}
}

// ShadowText renders content with a layered drop-shadow effect: the text
// line followed by an offset duplicate in the shadow color. It is a pure
// function of its inputs and recomputed on every render.
//
// Content must be plain single-line text; anything else is rejected with
// an error rather than rendered degraded.
func ShadowText(content string, opts ...ShadowOption) (string, error) {
	if err := validatePlainText(content); err != nil {
		return "", err
	}

	cfg := resolveShadowConfig(opts)

	face := cfg.face.Render(content)
	shadow := lipgloss.NewStyle().
		Foreground(cfg.shadowColor).
		Faint(true).
		Render(content)

	// Offset the shadow one column right so it reads as a layer behind
	// the text.
	return lipgloss.JoinVertical(lipgloss.Left, face, " "+shadow), nil
}

func resolveShadowConfig(opts []ShadowOption) shadowConfig {
	cfg := shadowConfig{
		shadowColor: DefaultShadowColor,
		face:        lipgloss.NewStyle().Bold(true),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func validatePlainText(content string) error {
	if content == "" {
		return fmt.Errorf("shadow text content must not be empty")
	}
	for _, r := range content {
		if r == '\n' || r == '\r' {
			return fmt.Errorf("shadow text content must be a single line")
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("shadow text content contains control character %q", r)
		}
	}
	return nil
}
