package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
	"cv-creator/internal/i18n"
	"cv-creator/internal/model"
	"cv-creator/internal/versions"
)

// Confirm asks the user a yes/no question. A nil Confirm declines.
type Confirm func(prompt string) bool

// Always accepts every confirmation.
func Always(string) bool { return true }

// Session is one editing session: a working form, its presentation
// context and the version store of its namespace. Every operation holds
// the session lock for its full run, so collect, render and save never
// interleave.
type Session struct {
	ID string

	mu     sync.Mutex
	form   *model.FormState
	sc     domain.SessionContext
	dirty  bool
	proc   *Processor
	store  *versions.Store
	notify Notifier
	onEdit func()
}

// State is a copy of the session state for display.
type State struct {
	Form    *model.FormState      `json:"form"`
	Context domain.SessionContext `json:"context"`
	Dirty   bool                  `json:"dirty"`
}

func NewSession(id string, proc *Processor, store *versions.Store, notify Notifier, sc domain.SessionContext) *Session {
	if notify == nil {
		notify = NewNoticeBuffer(nil)
	}
	if sc.Version == "" {
		sc.Version = domain.CurrentVersion
	}
	return &Session{
		ID:     id,
		form:   model.NewFormState(),
		sc:     sc,
		proc:   proc,
		store:  store,
		notify: notify,
	}
}

// OnEdit registers the hook run after every successful edit, typically
// the autosave debounce.
func (s *Session) OnEdit(f func()) {
	s.mu.Lock()
	s.onEdit = f
	s.mu.Unlock()
}

func (s *Session) labels(ctx context.Context) *i18n.Labels {
	return s.proc.Labels(ctx, s.sc.Locale)
}

func (s *Session) notice(ctx context.Context, sev Severity, key string, args ...any) {
	s.notify.Notify(ctx, Notice{Severity: sev, Message: s.labels(ctx).Tf(key, args...)})
}

func (s *Session) edited() {
	s.dirty = true
	if s.onEdit != nil {
		s.onEdit()
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Form: s.form.Clone(), Context: s.sc, Dirty: s.dirty}
}

// Profile collects the current form.
func (s *Session) Profile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.Collect(s.form)
}

// Edit applies fn to a copy of the form and keeps the copy only when fn
// succeeds.
func (s *Session) Edit(ctx context.Context, fn func(f *model.FormState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.form.Clone()
	if err := fn(c); err != nil {
		switch {
		case errors.Is(err, apperr.ErrRefused):
			s.notice(ctx, SeverityWarning, "notice.refused_last_entry")
		default:
			s.notify.Notify(ctx, Notice{Severity: SeverityError, Message: err.Error()})
		}
		return err
	}
	s.form = c
	s.edited()
	return nil
}

// Reset clears the form. Saved versions are untouched.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Reset()
	s.edited()
	s.notice(ctx, SeverityInfo, "notice.reset")
}

// SetPhoto validates an uploaded image and stores it as a data URI.
func (s *Session) SetPhoto(ctx context.Context, contentType string, data []byte) error {
	uri, err := model.PhotoFromUpload(contentType, data)
	if err != nil {
		if errors.Is(err, apperr.ErrRefused) {
			s.notice(ctx, SeverityError, "notice.photo_too_large")
		} else {
			s.notice(ctx, SeverityError, "notice.photo_invalid")
		}
		return err
	}
	return s.Edit(ctx, func(f *model.FormState) error {
		f.SetPhoto(uri)
		return nil
	})
}

func (s *Session) ClearPhoto(ctx context.Context) error {
	return s.Edit(ctx, func(f *model.FormState) error {
		f.ClearPhoto()
		return nil
	})
}

// SetTemplate, SetColor and SetLocale change presentation only.
func (s *Session) SetTemplate(ctx context.Context, t domain.TemplateID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sc.Template = t
	s.edited()
}

func (s *Session) SetColor(ctx context.Context, c domain.ColorID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sc.Color = c
	s.edited()
}

func (s *Session) SetLocale(ctx context.Context, locale string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sc.Locale = locale
}

// Preview renders the current form. An incomplete form renders the
// placeholder.
func (s *Session) Preview(ctx context.Context) (Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc.Preview(model.Collect(s.form), s.sc, s.labels(ctx))
}

// Export collects the form and produces one artifact.
func (s *Session) Export(ctx context.Context, f Format) (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.proc.Export(ctx, model.Collect(s.form), s.sc, s.labels(ctx), f)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrPrecondition):
			s.notice(ctx, SeverityWarning, "notice.precondition")
		case errors.Is(err, apperr.ErrEnvironment):
			s.notice(ctx, SeverityError, "notice.environment")
		default:
			s.notify.Notify(ctx, Notice{Severity: SeverityError, Message: err.Error()})
		}
		return Artifact{}, err
	}
	s.notice(ctx, SeveritySuccess, "notice.exported", a.Name)
	return a, nil
}

// SaveVersion stores the collected form under name and points the
// session at it.
func (s *Session) SaveVersion(ctx context.Context, name string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Save(ctx, name, model.Collect(s.form), s.sc.Template, s.sc.Color)
	if err != nil {
		s.notify.Notify(ctx, Notice{Severity: SeverityError, Message: err.Error()})
		return domain.Snapshot{}, err
	}
	s.sc.Version = versionName(name)
	s.dirty = false
	s.notice(ctx, SeveritySuccess, "notice.saved", s.sc.Version)
	return snap, nil
}

// LoadVersion replaces the form with a saved version. Loading a named
// version is destructive and asks confirm first; when it declines, or the
// version does not exist, nothing changes. The returned bool reports
// whether the form was replaced.
func (s *Session) LoadVersion(ctx context.Context, name string, confirm Confirm) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = versionName(name)
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.notice(ctx, SeverityError, "notice.not_found", name)
		} else {
			s.notify.Notify(ctx, Notice{Severity: SeverityError, Message: err.Error()})
		}
		return false, err
	}
	if name != domain.CurrentVersion {
		prompt := s.labels(ctx).Tf("notice.confirm_load", name)
		if confirm == nil || !confirm(prompt) {
			return false, nil
		}
	}
	s.apply(snap, name)
	s.notice(ctx, SeveritySuccess, "notice.loaded", name)
	return true, nil
}

func (s *Session) apply(snap domain.Snapshot, name string) {
	s.form.Populate(snap.Data)
	if t, err := domain.ParseTemplate(string(snap.Template)); err == nil {
		s.sc.Template = t
	}
	if c, err := domain.ParseColor(string(snap.ColorScheme)); err == nil {
		s.sc.Color = c
	}
	s.sc.Version = name
	s.dirty = false
}

// Restore loads the autosave slot without asking. A namespace without one
// keeps the empty form.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load(ctx, domain.CurrentVersion)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.apply(snap, domain.CurrentVersion)
	return nil
}

// DeleteVersion removes a saved version. Deleting the selected version
// moves the session back to the autosave slot.
func (s *Session) DeleteVersion(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = versionName(name)
	if err := s.store.Delete(ctx, name); err != nil {
		switch {
		case errors.Is(err, apperr.ErrRefused):
			s.notice(ctx, SeverityWarning, "notice.refused_current")
		case errors.Is(err, apperr.ErrNotFound):
			s.notice(ctx, SeverityError, "notice.not_found", name)
		default:
			s.notify.Notify(ctx, Notice{Severity: SeverityError, Message: err.Error()})
		}
		return err
	}
	if s.sc.Version == name {
		s.sc.Version = domain.CurrentVersion
	}
	s.notice(ctx, SeveritySuccess, "notice.deleted", name)
	return nil
}

func (s *Session) ListVersions(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Import replaces the form with a structured-data file and saves it to
// the autosave slot. Malformed input or a failed save leaves the form
// untouched.
func (s *Session) Import(ctx context.Context, data []byte) (model.Profile, error) {
	prof, err := s.proc.Import(data)
	if err != nil {
		s.notice(ctx, SeverityError, "notice.import_failed")
		return model.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.form.Clone()
	next.Populate(prof)
	collected := model.Collect(next)
	if _, err := s.store.Save(ctx, domain.CurrentVersion, collected, s.sc.Template, s.sc.Color); err != nil {
		slog.Error("session: import save failed", "session", s.ID, "error", err)
		s.notice(ctx, SeverityError, "notice.import_failed")
		return model.Profile{}, err
	}
	s.form = next
	s.dirty = false
	s.notice(ctx, SeveritySuccess, "notice.import_ok")
	return collected, nil
}

// Theme returns the stored UI theme of the namespace.
func (s *Session) Theme(ctx context.Context) (domain.Theme, error) {
	return s.store.Theme(ctx)
}

// ToggleTheme flips and stores the theme.
func (s *Session) ToggleTheme(ctx context.Context) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.store.Theme(ctx)
	if err != nil {
		return "", err
	}
	t = t.Toggle()
	if err := s.store.SetTheme(ctx, t); err != nil {
		return "", err
	}
	return t, nil
}

// AutosaveNow writes the collected form to the autosave slot. It does not
// move the version pointer.
func (s *Session) AutosaveNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.autosaveLocked(ctx)
}

func (s *Session) autosaveLocked(ctx context.Context) error {
	if _, err := s.store.Save(ctx, domain.CurrentVersion, model.Collect(s.form), s.sc.Template, s.sc.Color); err != nil {
		slog.Error("session: autosave failed", "session", s.ID, "error", err)
		return err
	}
	s.dirty = false
	return nil
}

// versionName owns its result; callers may pass strings backed by a
// reused request buffer.
func versionName(name string) string {
	return strings.Clone(strings.TrimSpace(name))
}
