package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"cv-creator/internal/adapter/repository"
	"cv-creator/internal/domain"
	"cv-creator/internal/model"
	"cv-creator/internal/versions"
)

// fakeRenderer returns the queued results in order, then a minimal PDF.
type fakeRenderer struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
	lastDoc string
}

type fakeResult struct {
	out []byte
	err error
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastDoc = html
	if len(f.results) > 0 {
		r := f.results[0]
		f.results = f.results[1:]
		return r.out, r.err
	}
	return []byte("%PDF-1.4\n%%EOF\n"), nil
}

func noBackoff(int) time.Duration { return 0 }

func ana() model.Profile {
	return model.Profile{
		FirstName: "Ana",
		LastName:  "Popescu",
		Email:     "a@x.com",
		Phone:     "0712345678",
		Experience: []model.Experience{
			{Position: "Engineer", Company: "Acme", Start: "2020-01", Current: true},
		},
		Skills: []string{"Go", "Rust"},
	}.Normalize()
}

func fillAna(f *model.FormState) error {
	f.FirstName = "Ana"
	f.LastName = "Popescu"
	f.Email = "a@x.com"
	f.Phone = "0712345678"
	f.Skills = "Go, , Rust ,"
	return f.PutExperience(0, model.Experience{Position: "Engineer", Company: "Acme", Start: "2020-01", Current: true})
}

func newTestSession(t *testing.T, r Renderer) (*Session, *NoticeBuffer, *versions.Store) {
	t.Helper()
	store := versions.New(repository.NewMemoryBlobs(), "test")
	notices := NewNoticeBuffer(nil)
	proc := NewProcessor(r, WithBackoff(noBackoff))
	sc := domain.NewSessionContext(domain.TemplateClassic, domain.ColorBlue, "en-US")
	return NewSession("test", proc, store, notices, sc), notices, store
}

func lastNotice(t *testing.T, b *NoticeBuffer) Notice {
	t.Helper()
	ns := b.Drain()
	if len(ns) == 0 {
		t.Fatal("no notice emitted")
	}
	return ns[len(ns)-1]
}

// eventually polls fn until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
