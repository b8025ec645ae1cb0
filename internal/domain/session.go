package domain

import (
	"fmt"

	"cv-creator/internal/apperr"
)

// CurrentVersion is the reserved autosave slot. It is always a valid save
// target and can never be deleted.
const CurrentVersion = "current"

// Theme is the UI color preference, stored apart from versions.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("%w: unknown theme %q", apperr.ErrMalformedInput, s)
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SessionContext carries the presentation state of one editing session.
// It is passed explicitly to render, export and persistence calls.
type SessionContext struct {
	Template TemplateID `json:"template"`
	Color    ColorID    `json:"colorScheme"`
	Locale   string     `json:"locale"`
	// Version is the name of the version the form was last loaded from or
	// saved to.
	Version string `json:"version"`
}

// NewSessionContext starts on the autosave slot.
func NewSessionContext(t TemplateID, c ColorID, locale string) SessionContext {
	return SessionContext{Template: t, Color: c, Locale: locale, Version: CurrentVersion}
}
