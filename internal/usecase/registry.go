package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cv-creator/internal/apperr"
	"cv-creator/internal/autosave"
	"cv-creator/internal/domain"
	"cv-creator/internal/versions"

	"github.com/google/uuid"
)

// RegistryConfig holds the defaults every new session starts with.
type RegistryConfig struct {
	Defaults domain.SessionContext
	Debounce time.Duration
	Interval time.Duration
}

type entry struct {
	session *Session
	notices *NoticeBuffer
	sched   *autosave.Scheduler
}

// Registry owns the live sessions. Each session gets its own version store
// namespace, keyed by the session ID, and its own autosave scheduler.
type Registry struct {
	proc    *Processor
	backend versions.Backend
	cfg     RegistryConfig

	mu       sync.Mutex
	base     context.Context
	sessions map[string]*entry
}

func NewRegistry(proc *Processor, backend versions.Backend, cfg RegistryConfig) *Registry {
	return &Registry{
		proc:     proc,
		backend:  backend,
		cfg:      cfg,
		base:     context.Background(),
		sessions: make(map[string]*entry),
	}
}

// Open returns the session id, creating it when it is not live. An empty
// id creates a new session with a random ID. A created session restores
// the autosave slot of its namespace.
func (r *Registry) Open(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		return e.session, nil
	}
	if id == "" {
		id = uuid.NewString()
	}

	notices := NewNoticeBuffer(slog.Default().With("session", id))
	s := NewSession(id, r.proc, versions.New(r.backend, id), notices, r.cfg.Defaults)
	if err := s.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	sched := autosave.New(r.cfg.Debounce, r.cfg.Interval, r.autosave(s), r.autosave(s))
	s.OnEdit(sched.Edit)
	sched.Start(r.base)

	r.sessions[id] = &entry{session: s, notices: notices, sched: sched}
	slog.Info("registry: session opened", "session", id)
	return s, nil
}

func (r *Registry) autosave(s *Session) autosave.Func {
	return func(ctx context.Context) {
		if err := s.AutosaveNow(ctx); err != nil {
			slog.Warn("registry: autosave failed", "session", s.ID, "error", err)
		}
	}
}

// Get returns a live session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %q", apperr.ErrNotFound, id)
	}
	return e.session, nil
}

// Notices drains the notices a session produced since the last call.
func (r *Registry) Notices(id string) []Notice {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return e.notices.Drain()
}

// Close stops the session's autosave, writes a final autosave and drops
// the session.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: session %q", apperr.ErrNotFound, id)
	}
	e.sched.Stop()
	if err := e.session.AutosaveNow(ctx); err != nil {
		return err
	}
	slog.Info("registry: session closed", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run ties the autosave tasks of sessions opened afterwards to ctx and
// closes every session when ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	r.mu.Lock()
	r.base = ctx
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, id := range ids {
		if err := r.Close(shutdown, id); err != nil {
			slog.Warn("registry: close failed", "session", id, "error", err)
		}
	}
	return nil
}
