package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cv-creator/internal/apperr"
)

// Format is an export target.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

var Formats = []Format{FormatPDF, FormatMarkdown, FormatHTML, FormatJSON}

// ParseFormat accepts a format name or its file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", apperr.ErrMalformedInput, s)
}

// Artifact is one exported file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
	// Pages is set for PDF exports.
	Pages int
}

// Severity of a user notice.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Notifier is the sink user notices are sent to.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// NoticeBuffer logs notices and keeps them until drained, so a request
// handler can return the notices its operation produced.
type NoticeBuffer struct {
	mu      sync.Mutex
	pending []Notice
	logger  *slog.Logger
}

func NewNoticeBuffer(logger *slog.Logger) *NoticeBuffer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoticeBuffer{logger: logger}
}

func (b *NoticeBuffer) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	switch n.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	b.logger.Log(ctx, level, "notice: "+n.Message, "severity", string(n.Severity))

	b.mu.Lock()
	b.pending = append(b.pending, n)
	b.mu.Unlock()
}

// Drain returns and forgets the pending notices.
func (b *NoticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}

// Renderer prints a standalone HTML page to PDF.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// PDFVerifier checks printed bytes against the expected page count.
type PDFVerifier func(pdf []byte, wantPages int) error
