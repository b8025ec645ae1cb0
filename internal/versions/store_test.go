package versions_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"cv-creator/internal/adapter/repository"
	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
	"cv-creator/internal/model"
	"cv-creator/internal/versions"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newStore(t *testing.T) (*versions.Store, *repository.MemoryBlobs, *clock) {
	t.Helper()
	b := repository.NewMemoryBlobs()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return versions.New(b, "user1", versions.WithClock(c.now)), b, c
}

func profile(first string) model.Profile {
	return model.Profile{FirstName: first, LastName: "Popescu", Email: "a@x.com", Phone: "1"}.Normalize()
}

func TestSaveLoad(t *testing.T) {
	s, _, c := newStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, "Draft1", profile("Ana"), domain.TemplateModern, domain.ColorRed)
	if err != nil {
		t.Fatal(err)
	}
	if !saved.SavedAt.Equal(c.t) {
		t.Fatalf("SavedAt = %v", saved.SavedAt)
	}
	got, err := s.Load(ctx, "Draft1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Data, profile("Ana")) || got.Template != domain.TemplateModern || got.ColorScheme != domain.ColorRed {
		t.Fatalf("loaded = %#v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	s, _, _ := newStore(t)
	if _, err := s.Load(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSaveRejectsEmptyName(t *testing.T) {
	s, _, _ := newStore(t)
	if _, err := s.Save(context.Background(), "  ", profile("Ana"), "", ""); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestCurrentIsReserved(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()
	if _, err := s.Save(ctx, domain.CurrentVersion, profile("Ana"), "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, "A", profile("Ana"), "", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, domain.CurrentVersion); !errors.Is(err, apperr.ErrRefused) {
		t.Fatalf("err = %v", err)
	}
	names, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"A"}) {
		t.Fatalf("names = %v", names)
	}
	if _, err := s.Load(ctx, domain.CurrentVersion); err != nil {
		t.Fatalf("current was removed: %v", err)
	}
}

func TestListKeepsInsertionOrder(t *testing.T) {
	s, _, c := newStore(t)
	ctx := context.Background()
	for _, n := range []string{"zeta", "alpha", "current", "mid"} {
		c.advance(time.Second)
		if _, err := s.Save(ctx, n, profile(n), "", ""); err != nil {
			t.Fatal(err)
		}
	}
	// overwriting keeps the original position
	if _, err := s.Save(ctx, "zeta", profile("again"), "", ""); err != nil {
		t.Fatal(err)
	}
	names, _ := s.List(ctx)
	if !reflect.DeepEqual(names, []string{"zeta", "alpha", "mid"}) {
		t.Fatalf("names = %v", names)
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "alpha"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	names, _ = s.List(ctx)
	if !reflect.DeepEqual(names, []string{"zeta", "mid"}) {
		t.Fatalf("after delete = %v", names)
	}
}

func TestBlobLayout(t *testing.T) {
	s, b, _ := newStore(t)
	ctx := context.Background()
	if _, err := s.Save(ctx, "B", profile("Ana"), domain.TemplateClassic, domain.ColorBlue); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, "A", profile("Ana"), domain.TemplateClassic, domain.ColorBlue); err != nil {
		t.Fatal(err)
	}
	blob, err := b.Get(ctx, "user1:"+versions.VersionsKey)
	if err != nil {
		t.Fatal(err)
	}
	js := string(blob)
	for _, want := range []string{`"data":`, `"template":"classic"`, `"colorScheme":"blue"`, `"savedAt":"2024-05-01T12:00:00Z"`} {
		if !strings.Contains(js, want) {
			t.Errorf("blob lacks %s: %s", want, js)
		}
	}
	if strings.Index(js, `"B"`) > strings.Index(js, `"A"`) {
		t.Errorf("blob is not in insertion order: %s", js)
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	b := repository.NewMemoryBlobs()
	ctx := context.Background()
	one := versions.New(b, "one")
	two := versions.New(b, "two")
	if _, err := one.Save(ctx, "X", profile("Ana"), "", ""); err != nil {
		t.Fatal(err)
	}
	names, _ := two.List(ctx)
	if len(names) != 0 {
		t.Fatalf("names = %v", names)
	}
}

func TestCorruptBlob(t *testing.T) {
	s, b, _ := newStore(t)
	ctx := context.Background()
	_ = b.Put(ctx, "user1:"+versions.VersionsKey, []byte("{not json"))
	if _, err := s.List(ctx); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestTheme(t *testing.T) {
	s, _, _ := newStore(t)
	ctx := context.Background()
	th, err := s.Theme(ctx)
	if err != nil || th != domain.ThemeLight {
		t.Fatalf("default theme = %q, %v", th, err)
	}
	if err := s.SetTheme(ctx, domain.ThemeDark); err != nil {
		t.Fatal(err)
	}
	if th, _ := s.Theme(ctx); th != domain.ThemeDark {
		t.Fatalf("theme = %q", th)
	}
	if err := s.SetTheme(ctx, "neon"); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("err = %v", err)
	}
}
