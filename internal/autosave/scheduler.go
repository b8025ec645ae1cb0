// Package autosave runs the two autosave triggers of a session: a
// debounced save after the last edit and an unconditional interval save.
package autosave

import (
	"context"
	"sync"
	"time"
)

// Defaults used when a zero duration is passed to New.
const (
	DefaultDebounce = time.Second
	DefaultInterval = 30 * time.Second
)

// Func is a save callback.
type Func func(ctx context.Context)

// Scheduler owns the debounce timer and the interval loop. Every Edit
// invalidates the pending debounce task, so only the last edit of a burst
// triggers onQuiet.
type Scheduler struct {
	debounce time.Duration
	interval time.Duration
	onQuiet  Func
	onTick   Func

	mu     sync.Mutex
	token  uint64
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(debounce, interval time.Duration, onQuiet, onTick Func) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		debounce: debounce,
		interval: interval,
		onQuiet:  onQuiet,
		onTick:   onTick,
		ctx:      context.Background(),
	}
}

// Edit records an edit and (re)arms the debounce task.
func (s *Scheduler) Edit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token++
	tok := s.token
	if s.timer != nil {
		s.timer.Stop()
	}
	ctx := s.ctx
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		stale := tok != s.token
		s.mu.Unlock()
		if stale || ctx.Err() != nil || s.onQuiet == nil {
			return
		}
		s.onQuiet(ctx)
	})
}

// Start begins the interval loop. It stops when ctx is cancelled or Stop
// is called. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(s.ctx, s.done)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s.onTick != nil {
				s.onTick(ctx)
			}
		}
	}
}

// Stop cancels the pending debounce task and the interval loop, and waits
// for the loop to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
