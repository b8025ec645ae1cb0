package domain

import (
	"fmt"
	"strings"
	"time"

	"cv-creator/internal/apperr"
	"cv-creator/internal/model"
)

// TemplateID selects the page layout variant.
type TemplateID string

const (
	TemplateClassic TemplateID = "classic"
	TemplateModern  TemplateID = "modern"
	TemplateMinimal TemplateID = "minimal"
)

var Templates = []TemplateID{TemplateClassic, TemplateModern, TemplateMinimal}

// ColorID selects the accent palette.
type ColorID string

const (
	ColorBlue   ColorID = "blue"
	ColorGreen  ColorID = "green"
	ColorPurple ColorID = "purple"
	ColorRed    ColorID = "red"
	ColorOrange ColorID = "orange"
	ColorTeal   ColorID = "teal"
)

var Colors = []ColorID{ColorBlue, ColorGreen, ColorPurple, ColorRed, ColorOrange, ColorTeal}

func ParseTemplate(s string) (TemplateID, error) {
	t := TemplateID(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Templates {
		if t == v {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown template %q", apperr.ErrMalformedInput, s)
}

func ParseColor(s string) (ColorID, error) {
	c := ColorID(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Colors {
		if c == v {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown color scheme %q", apperr.ErrMalformedInput, s)
}

// Snapshot is one saved version: the collected profile plus the
// presentation choices active when it was saved.
type Snapshot struct {
	Data        model.Profile `json:"data"`
	Template    TemplateID    `json:"template"`
	ColorScheme ColorID       `json:"colorScheme"`
	SavedAt     time.Time     `json:"savedAt"`
}
