package render

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// withScheme makes bare hosts like "github.com/ana" clickable.
func withScheme(raw string) string {
	if raw == "" || strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") || strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") {
		return raw
	}
	return "https://" + raw
}

// linkLabel is a short human label for a URL: the registrable domain when
// one can be derived, otherwise the host or the raw value.
func linkLabel(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(withScheme(raw))
	if err != nil {
		return raw
	}
	host := parsed.Hostname()
	if host == "" {
		return raw
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}
