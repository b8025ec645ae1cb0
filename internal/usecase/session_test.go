package usecase

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unsafe"

	"cv-creator/internal/adapter/repository"
	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
	"cv-creator/internal/model"
	"cv-creator/internal/versions"
)

func TestEditKeepsFormOnError(t *testing.T) {
	s, notices, _ := newTestSession(t, nil)
	ctx := context.Background()
	if err := s.Edit(ctx, fillAna); err != nil {
		t.Fatal(err)
	}
	before := s.State().Form

	err := s.Edit(ctx, func(f *model.FormState) error {
		f.FirstName = "Changed"
		return f.Remove(model.SectionExperience, 0)
	})
	if !errors.Is(err, apperr.ErrRefused) {
		t.Fatalf("err = %v", err)
	}
	if !reflect.DeepEqual(s.State().Form, before) {
		t.Fatal("failed edit changed the form")
	}
	if n := lastNotice(t, notices); n.Severity != SeverityWarning || !strings.Contains(n.Message, "At least one entry") {
		t.Fatalf("notice = %+v", n)
	}
}

func TestCollectedSkills(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	_ = s.Edit(context.Background(), fillAna)
	if got := s.Profile().Skills; !reflect.DeepEqual(got, []string{"Go", "Rust"}) {
		t.Fatalf("skills = %q", got)
	}
}

func TestExportNotices(t *testing.T) {
	s, notices, _ := newTestSession(t, &fakeRenderer{})
	ctx := context.Background()

	if _, err := s.Export(ctx, FormatMarkdown); !errors.Is(err, apperr.ErrPrecondition) {
		t.Fatalf("err = %v", err)
	}
	if n := lastNotice(t, notices); n.Message != "Fill in the form first to create a resume" {
		t.Fatalf("notice = %+v", n)
	}

	_ = s.Edit(ctx, fillAna)
	a, err := s.Export(ctx, FormatPDF)
	if err != nil {
		t.Fatal(err)
	}
	if n := lastNotice(t, notices); n.Severity != SeveritySuccess || !strings.Contains(n.Message, a.Name) {
		t.Fatalf("notice = %+v", n)
	}
}

func TestSaveLoadDeleteVersion(t *testing.T) {
	s, _, store := newTestSession(t, nil)
	ctx := context.Background()
	_ = s.Edit(ctx, fillAna)
	s.SetTemplate(ctx, domain.TemplateMinimal)

	if _, err := s.SaveVersion(ctx, " Draft1 "); err != nil {
		t.Fatal(err)
	}
	if v := s.State().Context.Version; v != "Draft1" {
		t.Fatalf("version = %q", v)
	}

	s.Reset(ctx)
	s.SetTemplate(ctx, domain.TemplateClassic)
	loaded, err := s.LoadVersion(ctx, "Draft1", Always)
	if err != nil || !loaded {
		t.Fatalf("load = %v, %v", loaded, err)
	}
	st := s.State()
	if st.Form.FirstName != "Ana" || st.Context.Template != domain.TemplateMinimal || st.Dirty {
		t.Fatalf("state = %+v", st)
	}

	names, _ := s.ListVersions(ctx)
	if !reflect.DeepEqual(names, []string{"Draft1"}) {
		t.Fatalf("names = %v", names)
	}

	if err := s.DeleteVersion(ctx, "Draft1"); err != nil {
		t.Fatal(err)
	}
	if v := s.State().Context.Version; v != domain.CurrentVersion {
		t.Fatalf("pointer after delete = %q", v)
	}
	if _, err := store.Load(ctx, "Draft1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("load deleted = %v", err)
	}
}

func TestDeclinedLoadLeavesStateUnchanged(t *testing.T) {
	s, _, store := newTestSession(t, nil)
	ctx := context.Background()
	if _, err := store.Save(ctx, "Other", model.Profile{FirstName: "Bob"}, domain.TemplateModern, domain.ColorRed); err != nil {
		t.Fatal(err)
	}
	_ = s.Edit(ctx, fillAna)
	before := s.State()

	var prompt string
	loaded, err := s.LoadVersion(ctx, "Other", func(p string) bool { prompt = p; return false })
	if err != nil || loaded {
		t.Fatalf("load = %v, %v", loaded, err)
	}
	if !strings.Contains(prompt, `"Other"`) {
		t.Fatalf("prompt = %q", prompt)
	}
	if !reflect.DeepEqual(s.State(), before) {
		t.Fatal("declined load changed the session")
	}

	if loaded, _ := s.LoadVersion(ctx, "Other", nil); loaded {
		t.Fatal("nil confirm must decline")
	}
}

func TestLoadMissingVersion(t *testing.T) {
	s, notices, _ := newTestSession(t, nil)
	ctx := context.Background()
	_ = s.Edit(ctx, fillAna)
	before := s.State()

	if _, err := s.LoadVersion(ctx, "Ghost", Always); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if !reflect.DeepEqual(s.State(), before) {
		t.Fatal("failed load changed the session")
	}
	if n := lastNotice(t, notices); n.Message != `Version "Ghost" not found` {
		t.Fatalf("notice = %+v", n)
	}
}

func TestDeleteCurrentRefused(t *testing.T) {
	s, notices, _ := newTestSession(t, nil)
	ctx := context.Background()
	_ = s.AutosaveNow(ctx)
	if err := s.DeleteVersion(ctx, domain.CurrentVersion); !errors.Is(err, apperr.ErrRefused) {
		t.Fatalf("err = %v", err)
	}
	if n := lastNotice(t, notices); n.Severity != SeverityWarning {
		t.Fatalf("notice = %+v", n)
	}
}

func TestImportSavesCurrent(t *testing.T) {
	s, _, store := newTestSession(t, nil)
	ctx := context.Background()

	prof, err := s.Import(ctx, []byte(`{"firstName":"Ana","lastName":"Popescu","email":"a@x.com","phone":"1","skills":"Go, Rust"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(prof.Skills, []string{"Go", "Rust"}) {
		t.Fatalf("skills = %v", prof.Skills)
	}
	snap, err := store.Load(ctx, domain.CurrentVersion)
	if err != nil || snap.Data.FirstName != "Ana" {
		t.Fatalf("current = %+v, %v", snap, err)
	}
}

func TestImportMalformedKeepsForm(t *testing.T) {
	s, notices, _ := newTestSession(t, nil)
	ctx := context.Background()
	_ = s.Edit(ctx, fillAna)
	before := s.State()

	if _, err := s.Import(ctx, []byte(`{"firstName": 3`)); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("err = %v", err)
	}
	if !reflect.DeepEqual(s.State(), before) {
		t.Fatal("malformed import changed the form")
	}
	if n := lastNotice(t, notices); n.Severity != SeverityError {
		t.Fatalf("notice = %+v", n)
	}
}

func TestPhotoUpload(t *testing.T) {
	s, notices, _ := newTestSession(t, nil)
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	if err := s.SetPhoto(ctx, "image/png", png); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s.State().Form.Photo, "data:image/png;base64,") {
		t.Fatalf("photo = %q", s.State().Form.Photo)
	}
	if err := s.SetPhoto(ctx, "text/plain", []byte("hello")); !errors.Is(err, apperr.ErrMalformedInput) {
		t.Fatalf("err = %v", err)
	}
	if n := lastNotice(t, notices); n.Message != "Please choose an image file" {
		t.Fatalf("notice = %+v", n)
	}
	_ = s.ClearPhoto(ctx)
	if s.State().Form.Photo != "" {
		t.Fatal("photo not cleared")
	}
}

func TestAutosaveDoesNotMovePointer(t *testing.T) {
	s, _, store := newTestSession(t, nil)
	ctx := context.Background()
	_ = s.Edit(ctx, fillAna)
	_, _ = s.SaveVersion(ctx, "Draft1")
	_ = s.Edit(ctx, func(f *model.FormState) error { return f.SetField("summary", "Hi") })

	if err := s.AutosaveNow(ctx); err != nil {
		t.Fatal(err)
	}
	if v := s.State().Context.Version; v != "Draft1" {
		t.Fatalf("version = %q", v)
	}
	snap, _ := store.Load(ctx, domain.CurrentVersion)
	if snap.Data.Summary != "Hi" {
		t.Fatalf("current summary = %q", snap.Data.Summary)
	}
}

func TestToggleTheme(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	ctx := context.Background()
	if th, _ := s.Theme(ctx); th != domain.ThemeLight {
		t.Fatalf("theme = %q", th)
	}
	if th, _ := s.ToggleTheme(ctx); th != domain.ThemeDark {
		t.Fatalf("toggled = %q", th)
	}
	if th, _ := s.Theme(ctx); th != domain.ThemeDark {
		t.Fatalf("stored = %q", th)
	}
}

func TestLocalizedNotices(t *testing.T) {
	s, notices, _ := newTestSession(t, nil)
	ctx := context.Background()
	s.SetLocale(ctx, "ru-RU")
	s.Reset(ctx)
	if n := lastNotice(t, notices); n.Message == "Form cleared" {
		t.Fatal("notice was not localized")
	}
}

// failingPuts accepts reads and refuses every write.
type failingPuts struct {
	*repository.MemoryBlobs
}

func (failingPuts) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestImportSaveFailureKeepsForm(t *testing.T) {
	notices := NewNoticeBuffer(nil)
	store := versions.New(failingPuts{repository.NewMemoryBlobs()}, "test")
	sc := domain.NewSessionContext(domain.TemplateClassic, domain.ColorBlue, "en-US")
	s := NewSession("test", NewProcessor(nil), store, notices, sc)
	ctx := context.Background()
	_ = s.Edit(ctx, fillAna)
	before := s.State()

	if _, err := s.Import(ctx, []byte(`{"firstName":"Ion","lastName":"Ionescu"}`)); err == nil {
		t.Fatal("import succeeded with a failing backend")
	}
	if !reflect.DeepEqual(s.State(), before) {
		t.Fatalf("form changed: %+v", s.State().Form)
	}
	if n := lastNotice(t, notices); n.Severity != SeverityError {
		t.Fatalf("notice = %+v", n)
	}
}

func TestLoadVersionKeepsOwnName(t *testing.T) {
	s, _, _ := newTestSession(t, nil)
	ctx := context.Background()
	_ = s.Edit(ctx, fillAna)

	if _, err := s.SaveVersion(ctx, "Draft1"); err != nil {
		t.Fatal(err)
	}
	// a string sharing memory with a buffer that is reused afterwards
	buf := []byte("Draft1")
	if _, err := s.LoadVersion(ctx, unsafe.String(&buf[0], len(buf)), Always); err != nil {
		t.Fatal(err)
	}
	copy(buf, "ZZZZZZ")
	if got := s.State().Context.Version; got != "Draft1" {
		t.Fatalf("version = %q", got)
	}
}
