package i18n

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
)

func TestFormatDate(t *testing.T) {
	en := Default().Labels("en-US")
	ru := Default().Labels("ru-RU")

	cases := []struct {
		labels *Labels
		in     string
		want   string
	}{
		{en, "2020-01", "January 2020"},
		{en, "1999-12", "December 1999"},
		{en, "", ""},
		{en, "2020-13", "2020-13"},
		{en, "soon", "soon"},
		{ru, "2021-03", "Март 2021"},
	}
	for _, c := range cases {
		if got := c.labels.FormatDate(c.in); got != c.want {
			t.Errorf("%s FormatDate(%q) = %q, want %q", c.labels.Locale, c.in, got, c.want)
		}
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	b := Default()
	base := b.Labels(BaseLocale).messages
	for _, locale := range b.Locales() {
		l := b.Labels(locale)
		for key := range base {
			if _, ok := l.messages[key]; !ok {
				t.Errorf("%s is missing %q", locale, key)
			}
		}
	}
}

func TestMatch(t *testing.T) {
	b := Default()
	cases := []struct {
		in        string
		want      string
		wantExact bool
	}{
		{"en-US", "en-US", true},
		{"ru", "ru-RU", true},
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru-RU", true},
		{"", "en-US", false},
		{"%%%", "en-US", false},
	}
	for _, c := range cases {
		got, exact := b.Match(c.in)
		if got != c.want || exact != c.wantExact {
			t.Errorf("Match(%q) = %q,%v want %q,%v", c.in, got, exact, c.want, c.wantExact)
		}
	}
}

func TestLabelsHelpers(t *testing.T) {
	ru := Default().Labels("ru")
	if got := ru.Present(); got != "По настоящее время" {
		t.Errorf("Present = %q", got)
	}
	if got := ru.Level("native"); got != "Родной" {
		t.Errorf("Level(native) = %q", got)
	}
	if got := ru.Level("X9"); got != "X9" {
		t.Errorf("Level(X9) = %q", got)
	}
	if got := ru.T("no.such.key"); got != "no.such.key" {
		t.Errorf("T(missing) = %q", got)
	}
	if got := Default().Labels("en").Tf("notice.saved", "Draft1"); got != `Version "Draft1" saved` {
		t.Errorf("Tf = %q", got)
	}
}

func TestLoadFromFSRequiresBase(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/ru-RU.yaml": {Data: []byte("locale: ru-RU\nmessages:\n  a: b\n")},
	}
	if _, err := LoadFromFS(fsys); err == nil {
		t.Fatal("expected error without base locale")
	}
}

func TestAddFallsBackToBase(t *testing.T) {
	b, err := LoadFromFS(embeddedFS)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Add("de-DE", map[string]string{"label.present": "Heute"}); err != nil {
		t.Fatal(err)
	}
	de := b.Labels("de")
	if de.Locale != "de-DE" || de.Present() != "Heute" {
		t.Fatalf("de = %q %q", de.Locale, de.Present())
	}
	if got := de.FormatDate("2020-05"); got != "May 2020" {
		t.Fatalf("FormatDate = %q", got)
	}
	if err := b.Add("en-US", nil); err == nil {
		t.Fatal("replacing the base locale must fail")
	}
}

type fakeSource struct {
	calls int
	out   map[string]string
	err   error
}

func (f *fakeSource) Translate(context.Context, string, map[string]string) (map[string]string, error) {
	f.calls++
	return f.out, f.err
}

func TestResolveCachesRemoteLocale(t *testing.T) {
	b, err := LoadFromFS(embeddedFS)
	if err != nil {
		t.Fatal(err)
	}
	src := &fakeSource{out: map[string]string{"section.skills": "Fähigkeiten"}}

	l := b.Resolve(context.Background(), "de", src)
	if l.T("section.skills") != "Fähigkeiten" {
		t.Fatalf("got %q", l.T("section.skills"))
	}
	b.Resolve(context.Background(), "de", src)
	if src.calls != 1 {
		t.Fatalf("calls = %d, want cached", src.calls)
	}

	failing := &fakeSource{err: errors.New("down")}
	if l := b.Resolve(context.Background(), "fr", failing); l.Locale != BaseLocale {
		t.Fatalf("locale = %q, want fallback", l.Locale)
	}
	if l := b.Resolve(context.Background(), "ru", failing); l.Locale != "ru-RU" || failing.calls != 1 {
		t.Fatalf("embedded locale should not hit the source: %q calls=%d", l.Locale, failing.calls)
	}
}

func TestRemoteSourceParsesWrappedOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["agent"] != "auto" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"agent":  "auto",
			"output": "```json\n{\"label.present\": \"Aktuell\"}\n```",
		})
	}))
	defer srv.Close()

	rs := NewRemoteSource(srv.Client(), srv.URL+"/")
	out, err := rs.Translate(context.Background(), "de-DE", map[string]string{"label.present": "Present"})
	if err != nil {
		t.Fatal(err)
	}
	if out["label.present"] != "Aktuell" {
		t.Fatalf("out = %v", out)
	}
}

func TestExtractJSONObjectRejectsProse(t *testing.T) {
	if _, err := extractJSONObject("sorry, cannot help"); err == nil {
		t.Fatal("expected error")
	}
}
