// Package versions persists named snapshots of a CV. All snapshots of one
// namespace live in a single blob, an ordered JSON object from version name
// to snapshot, so insertion order survives a reload.
package versions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
	"cv-creator/internal/model"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Logical keys of the two blobs a namespace owns.
const (
	VersionsKey = "cv_creator_versions"
	ThemeKey    = "cv_creator_theme"
)

// Backend is a blob store. Get returns apperr.ErrNotFound for a key that
// was never written.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Mapping is the decoded version blob.
type Mapping = orderedmap.OrderedMap[string, domain.Snapshot]

// Store is the version store of one namespace. Every operation reads,
// modifies and writes the blob under one lock.
type Store struct {
	mu      sync.Mutex
	backend Backend
	ns      string
	now     func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns the store of namespace ns. An empty namespace uses the bare
// logical keys.
func New(b Backend, ns string, opts ...Option) *Store {
	s := &Store{backend: b, ns: ns, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) key(k string) string {
	if s.ns == "" {
		return k
	}
	return s.ns + ":" + k
}

func (s *Store) read(ctx context.Context) (*Mapping, error) {
	m := orderedmap.New[string, domain.Snapshot]()
	blob, err := s.backend.Get(ctx, s.key(VersionsKey))
	if errors.Is(err, apperr.ErrNotFound) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("versions: read: %w", err)
	}
	if len(blob) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(blob, m); err != nil {
		return nil, fmt.Errorf("%w: versions blob: %v", apperr.ErrMalformedInput, err)
	}
	return m, nil
}

func (s *Store) write(ctx context.Context, m *Mapping) error {
	blob, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("versions: encode: %w", err)
	}
	if err := s.backend.Put(ctx, s.key(VersionsKey), blob); err != nil {
		return fmt.Errorf("versions: write: %w", err)
	}
	return nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: version name is empty", apperr.ErrMalformedInput)
	}
	return name, nil
}

// Save upserts the snapshot under name and stamps it with the current
// time. An existing version keeps its place in the listing order.
func (s *Store) Save(ctx context.Context, name string, p model.Profile, t domain.TemplateID, c domain.ColorID) (domain.Snapshot, error) {
	name, err := normalizeName(name)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap := domain.Snapshot{
		Data:        p.Normalize(),
		Template:    t,
		ColorScheme: c,
		SavedAt:     s.now().UTC(),
	}
	m.Set(name, snap)
	if err := s.write(ctx, m); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// Load returns the snapshot saved under name.
func (s *Store) Load(ctx context.Context, name string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap, ok := m.Get(strings.TrimSpace(name))
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%w: version %q", apperr.ErrNotFound, name)
	}
	snap.Data = snap.Data.Normalize()
	return snap, nil
}

// Delete removes a version. The autosave slot cannot be deleted.
func (s *Store) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == domain.CurrentVersion {
		return fmt.Errorf("%w: the %q version cannot be deleted", apperr.ErrRefused, domain.CurrentVersion)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read(ctx)
	if err != nil {
		return err
	}
	if _, ok := m.Delete(name); !ok {
		return fmt.Errorf("%w: version %q", apperr.ErrNotFound, name)
	}
	return s.write(ctx, m)
}

// List returns the saved version names in insertion order, without the
// autosave slot.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, m.Len())
	for pair := m.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key != domain.CurrentVersion {
			names = append(names, pair.Key)
		}
	}
	return names, nil
}

// Theme returns the stored theme, light when none was stored.
func (s *Store) Theme(ctx context.Context) (domain.Theme, error) {
	b, err := s.backend.Get(ctx, s.key(ThemeKey))
	if errors.Is(err, apperr.ErrNotFound) {
		return domain.ThemeLight, nil
	}
	if err != nil {
		return "", fmt.Errorf("versions: read theme: %w", err)
	}
	t, err := domain.ParseTheme(string(b))
	if err != nil {
		return domain.ThemeLight, nil
	}
	return t, nil
}

func (s *Store) SetTheme(ctx context.Context, t domain.Theme) error {
	if _, err := domain.ParseTheme(string(t)); err != nil {
		return err
	}
	if err := s.backend.Put(ctx, s.key(ThemeKey), []byte(t)); err != nil {
		return fmt.Errorf("versions: write theme: %w", err)
	}
	return nil
}
