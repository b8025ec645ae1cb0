package i18n

import (
	"fmt"
	"strconv"
	"time"
)

// Labels is one locale's message table.
type Labels struct {
	Locale   string
	messages map[string]string
	fallback *Labels
}

// T returns the message for key, the base locale's message when this locale
// lacks it, or the key itself.
func (l *Labels) T(key string) string {
	for c := l; c != nil; c = c.fallback {
		if v, ok := c.messages[key]; ok && v != "" {
			return v
		}
	}
	return key
}

// Tf formats the message for key with args.
func (l *Labels) Tf(key string, args ...any) string {
	return fmt.Sprintf(l.T(key), args...)
}

// Present is the end-date marker of an ongoing position.
func (l *Labels) Present() string { return l.T("label.present") }

// Level is the display label of a proficiency level. Unknown levels are
// shown as they are.
func (l *Labels) Level(level string) string {
	key := "level." + level
	if v := l.T(key); v != key {
		return v
	}
	return level
}

// FormatDate turns "YYYY-MM" into "<Month> <Year>". Empty input yields "",
// anything that is not a year-month is returned unchanged.
func (l *Labels) FormatDate(ym string) string {
	if ym == "" {
		return ""
	}
	// the day is pinned to the 1st so every month parses
	t, err := time.Parse("2006-01-02", ym+"-01")
	if err != nil {
		return ym
	}
	month := l.T(fmt.Sprintf("month.%02d", int(t.Month())))
	return month + " " + strconv.Itoa(t.Year())
}

// Messages returns a copy of the merged table, base entries included.
func (l *Labels) Messages() map[string]string {
	out := map[string]string{}
	if l.fallback != nil {
		for k, v := range l.fallback.messages {
			out[k] = v
		}
	}
	for k, v := range l.messages {
		if v != "" {
			out[k] = v
		}
	}
	return out
}
