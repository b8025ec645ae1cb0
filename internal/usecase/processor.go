package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
	"cv-creator/internal/i18n"
	"cv-creator/internal/model"
	"cv-creator/internal/render"
)

// Processor is the document pipeline: collected profile in, preview or
// export artifact out. It holds no per-session state.
type Processor struct {
	renderer Renderer
	verify   PDFVerifier
	bundle   *i18n.Bundle
	labels   i18n.Source
	attempts int
	backoff  func(attempt int) time.Duration
}

type ProcessorOption func(*Processor)

// WithPDFVerifier checks every printed PDF, typically page count via pdfcpu.
func WithPDFVerifier(v PDFVerifier) ProcessorOption {
	return func(p *Processor) { p.verify = v }
}

// WithLabelSource translates labels for locales without an embedded
// catalog.
func WithLabelSource(src i18n.Source) ProcessorOption {
	return func(p *Processor) { p.labels = src }
}

// WithBackoff replaces the delay between PDF print attempts.
func WithBackoff(f func(attempt int) time.Duration) ProcessorOption {
	return func(p *Processor) { p.backoff = f }
}

// NewProcessor returns a pipeline printing PDFs through r. A nil r makes
// PDF export report an environment error.
func NewProcessor(r Renderer, opts ...ProcessorOption) *Processor {
	p := &Processor{
		renderer: r,
		bundle:   i18n.Default(),
		attempts: 3,
		backoff:  func(i int) time.Duration { return time.Duration(1<<i) * time.Second },
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Labels resolves the label catalog for a session locale.
func (p *Processor) Labels(ctx context.Context, locale string) *i18n.Labels {
	return p.bundle.Resolve(ctx, locale, p.labels)
}

// Preview is the rendered preview of a profile.
type Preview struct {
	Document render.Document
	HTML     []byte
	Progress Progress
}

func (p *Processor) options(sc domain.SessionContext, l *i18n.Labels) render.Options {
	return render.Options{Template: sc.Template, Color: sc.Color, Labels: l}
}

// Preview renders prof. An incomplete profile yields the placeholder
// document, not an error.
func (p *Processor) Preview(prof model.Profile, sc domain.SessionContext, l *i18n.Labels) (Preview, error) {
	doc := render.Render(prof, p.options(sc, l))
	html, err := render.HTMLFragment(doc)
	if err != nil {
		return Preview{}, err
	}
	return Preview{Document: doc, HTML: html, Progress: ComputeProgress(prof)}, nil
}

// Export produces one artifact. Every format requires the preview
// precondition; an incomplete profile fails with apperr.ErrPrecondition.
func (p *Processor) Export(ctx context.Context, prof model.Profile, sc domain.SessionContext, l *i18n.Labels, f Format) (Artifact, error) {
	doc := render.Render(prof, p.options(sc, l))
	if doc.Placeholder {
		return Artifact{}, fmt.Errorf("%w: %s export needs first name, last name, email and phone", apperr.ErrPrecondition, f)
	}
	base := FileBase(prof)

	switch f {
	case FormatJSON:
		b, err := model.MarshalProfile(prof)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: base + ".json", ContentType: "application/json", Data: b}, nil
	case FormatMarkdown:
		b, err := render.Markdown(doc)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: base + ".md", ContentType: "text/markdown; charset=utf-8", Data: b}, nil
	case FormatHTML:
		b, err := render.HTMLPage(doc)
		if err != nil {
			return Artifact{}, err
		}
		return Artifact{Name: base + ".html", ContentType: "text/html; charset=utf-8", Data: b}, nil
	case FormatPDF:
		return p.exportPDF(ctx, doc, base)
	}
	return Artifact{}, fmt.Errorf("%w: unknown export format %q", apperr.ErrMalformedInput, f)
}

func (p *Processor) exportPDF(ctx context.Context, doc render.Document, base string) (Artifact, error) {
	layout, err := render.Paginate(doc)
	if err != nil {
		return Artifact{}, err
	}
	html, err := render.LayoutHTML(layout)
	if err != nil {
		return Artifact{}, err
	}
	if p.renderer == nil {
		return Artifact{}, fmt.Errorf("%w: no PDF renderer configured", apperr.ErrEnvironment)
	}

	// produce PDF with retry and validation
	var pdfBytes []byte
	var renderErr error
	for i := 0; i < p.attempts; i++ {
		pdfBytes, renderErr = p.renderer.RenderHTMLToPDF(ctx, string(html))
		if renderErr == nil {
			renderErr = p.check(pdfBytes, len(layout.Pages))
			if renderErr == nil {
				break
			}
		}
		if errors.Is(renderErr, apperr.ErrEnvironment) {
			break
		}
		slog.Warn("processor: render attempt failed", "attempt", i+1, "error", renderErr)
		if i < p.attempts-1 {
			select {
			case <-time.After(p.backoff(i)):
			case <-ctx.Done():
				return Artifact{}, ctx.Err()
			}
		}
	}
	if renderErr != nil {
		slog.Error("processor: pdf rendering failed", "error", renderErr)
		if errors.Is(renderErr, apperr.ErrEnvironment) {
			return Artifact{}, renderErr
		}
		return Artifact{}, fmt.Errorf("%w: pdf rendering failed: %v", apperr.ErrEnvironment, renderErr)
	}
	return Artifact{
		Name:        base + "_CV.pdf",
		ContentType: "application/pdf",
		Data:        pdfBytes,
		Pages:       len(layout.Pages),
	}, nil
}

func (p *Processor) check(b []byte, pages int) error {
	if len(b) == 0 || !strings.HasPrefix(string(b), "%PDF") {
		return fmt.Errorf("invalid PDF output (len=%d)", len(b))
	}
	if p.verify != nil {
		return p.verify(b, pages)
	}
	return nil
}

// Import parses structured-data input and drops entries the form would
// not keep. On failure nothing is returned and the error wraps
// apperr.ErrMalformedInput.
func (p *Processor) Import(data []byte) (model.Profile, error) {
	prof, err := model.UnmarshalProfile(data)
	if err != nil {
		return model.Profile{}, err
	}
	return model.Filter(prof), nil
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// FileBase is "firstName_lastName", made safe for file systems, with
// "cv" and "resume" standing in for missing parts.
func FileBase(p model.Profile) string {
	part := func(s, fallback string) string {
		s = strings.Trim(unsafeFileChars.ReplaceAllString(s, "-"), "-.")
		if s == "" {
			return fallback
		}
		return s
	}
	return part(p.FirstName, "cv") + "_" + part(p.LastName, "resume")
}
