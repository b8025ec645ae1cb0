// Package i18n holds the localized labels used by every printer: section
// titles, month names, the "Present" marker, proficiency levels and user
// notices. Catalogs are embedded YAML files, one per locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the catalog every other locale falls back to.
const BaseLocale = "en-US"

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

//go:embed locales/*.yaml
var embeddedFS embed.FS

// Bundle is the set of known locales.
type Bundle struct {
	mu      sync.RWMutex
	locales map[string]*Labels
	matcher language.Matcher
	tags    []language.Tag
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the process-wide bundle built from the embedded catalogs.
func Default() *Bundle {
	defaultOnce.Do(func() {
		b, err := LoadFromFS(embeddedFS)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalogs: %v", err))
		}
		defaultBundle = b
	})
	return defaultBundle
}

// LoadFromFS reads every locales/*.yaml file of fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]*Labels{}}
	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		locale := strings.TrimSpace(file.Locale)
		if locale == "" {
			return nil, fmt.Errorf("catalog %s: locale is required", path)
		}
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", path, err)
		}
		if len(file.Messages) == 0 {
			return nil, fmt.Errorf("catalog %s: messages map is required", path)
		}
		if _, dup := b.locales[locale]; dup {
			return nil, fmt.Errorf("catalog %s: locale %q already defined", path, locale)
		}
		b.locales[locale] = &Labels{Locale: locale, messages: file.Messages}
	}

	base, ok := b.locales[BaseLocale]
	if !ok {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	for _, l := range b.locales {
		if l != base {
			l.fallback = base
		}
	}
	b.rebuildMatcher()
	return b, nil
}

// rebuildMatcher must run with mu held for writing (or before b is shared).
func (b *Bundle) rebuildMatcher() {
	names := make([]string, 0, len(b.locales))
	for name := range b.locales {
		if name != BaseLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	// the first tag is the matcher's default
	tags := []language.Tag{language.MustParse(BaseLocale)}
	for _, n := range names {
		tags = append(tags, language.MustParse(n))
	}
	b.tags = tags
	b.matcher = language.NewMatcher(tags)
}

// Locales lists the locale names the bundle can serve.
func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.tags))
	for _, t := range b.tags {
		out = append(out, t.String())
	}
	return out
}

// Match resolves a requested locale (a tag or an Accept-Language value) to a
// known one. exact is false when the result is only the fallback.
func (b *Bundle) Match(requested string) (locale string, exact bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	prefs, _, err := language.ParseAcceptLanguage(requested)
	if err != nil || len(prefs) == 0 {
		return BaseLocale, false
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return BaseLocale, false
	}
	return b.tags[idx].String(), conf >= language.High
}

// Labels returns the catalog best matching requested.
func (b *Bundle) Labels(requested string) *Labels {
	locale, _ := b.Match(requested)
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.locales[locale]
}

// Add registers messages for a locale not shipped with the binary. Missing
// keys fall back to the base catalog.
func (b *Bundle) Add(locale string, messages map[string]string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("i18n: add %q: %w", locale, err)
	}
	name := tag.String()
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == BaseLocale {
		return fmt.Errorf("i18n: base locale cannot be replaced")
	}
	b.locales[name] = &Labels{Locale: name, messages: messages, fallback: b.locales[BaseLocale]}
	b.rebuildMatcher()
	return nil
}
