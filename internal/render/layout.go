package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"cv-creator/internal/apperr"
	"cv-creator/internal/domain"
)

// A4 geometry and cursor advances, in millimetres.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	MarginMM     = 20.0
	// TopMM is where the cursor starts on every page.
	TopMM = 20.0
	// BreakMM is the cursor position past which a new section or entry
	// starts on a fresh page.
	BreakMM = 250.0
	// BottomMM is the lowest baseline a wrapped body line may use before
	// it continues on the next page.
	BottomMM = PageHeightMM - MarginMM

	WrapRunes = 95

	nameAdvance     = 10.0
	contactsAdvance = 8.0
	ruleAdvance     = 10.0
	headingAdvance  = 8.0
	titleAdvance    = 6.0
	metaAdvance     = 6.0
	lineAdvance     = 5.0
	entryGap        = 5.0
	educationGap    = 8.0
)

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Style selects font size and weight of a laid out line.
type Style string

const (
	StyleName    Style = "name"
	StyleContact Style = "contact"
	StyleHeading Style = "heading"
	StyleTitle   Style = "title"
	StyleText    Style = "text"
	StyleLink    Style = "link"
)

// FontSizePt is the point size used for each style.
var FontSizePt = map[Style]float64{
	StyleName:    20,
	StyleContact: 10,
	StyleHeading: 14,
	StyleTitle:   10,
	StyleText:    10,
	StyleLink:    10,
}

// Line is one run of text whose baseline sits at Y.
type Line struct {
	Y     float64
	Align Align
	Style Style
	Text  string
	Href  string
}

// Rule is a horizontal separator at Y spanning the content width.
type Rule struct {
	Y float64
}

type Page struct {
	Lines []Line
	Rules []Rule
}

// Layout is the paginated form of a Document.
type Layout struct {
	Template domain.TemplateID
	Color    domain.ColorID
	Locale   string
	Title    string
	Pages    []Page
}

type cursor struct {
	pages []Page
	y     float64
}

func (c *cursor) page() *Page { return &c.pages[len(c.pages)-1] }

func (c *cursor) newPage() {
	c.pages = append(c.pages, Page{})
	c.y = TopMM
}

// breakIfLow starts a new page when the cursor passed BreakMM. It runs
// before every section and entry; a heading placed just above BreakMM can
// still be followed by a break before its first entry.
func (c *cursor) breakIfLow() {
	if c.y > BreakMM {
		c.newPage()
	}
}

func (c *cursor) put(l Line, advance float64) {
	l.Y = c.y
	c.page().Lines = append(c.page().Lines, l)
	c.y += advance
}

// body writes wrapped text, continuing on a new page when a line would
// fall below the bottom margin.
func (c *cursor) body(text string, style Style, href string) {
	for _, ln := range Wrap(text, WrapRunes) {
		if c.y > BottomMM {
			c.newPage()
		}
		c.put(Line{Align: AlignLeft, Style: style, Text: ln, Href: href}, lineAdvance)
	}
}

// Paginate lays doc out on A4 pages.
func Paginate(doc Document) (Layout, error) {
	if doc.Placeholder {
		return Layout{}, fmt.Errorf("%w: pdf export needs a complete profile", apperr.ErrPrecondition)
	}
	c := &cursor{}
	c.newPage()

	c.put(Line{Align: AlignCenter, Style: StyleName, Text: doc.Header.Name}, nameAdvance)

	var contact []string
	for _, ct := range doc.Header.Contacts {
		switch ct.Kind {
		case ContactEmail, ContactPhone, ContactAddress:
			contact = append(contact, ct.Value)
		}
	}
	if len(contact) > 0 {
		c.put(Line{Align: AlignCenter, Style: StyleContact, Text: strings.Join(contact, " | ")}, contactsAdvance)
	}
	c.page().Rules = append(c.page().Rules, Rule{Y: c.y})
	c.y += ruleAdvance

	for _, s := range doc.Sections {
		c.breakIfLow()
		c.put(Line{Align: AlignLeft, Style: StyleHeading, Text: s.Title}, headingAdvance)

		switch s.Kind {
		case KindSummary:
			c.body(s.Text, StyleText, "")
			c.y += entryGap
		case KindSkills:
			c.body(strings.Join(s.Tags, ", "), StyleText, "")
			c.y += entryGap
		case KindLanguages:
			for _, it := range s.Items {
				c.breakIfLow()
				c.put(Line{Align: AlignLeft, Style: StyleText, Text: it.Title + " - " + it.Subtitle}, metaAdvance)
			}
		case KindEducation:
			for _, it := range s.Items {
				c.breakIfLow()
				c.put(Line{Align: AlignLeft, Style: StyleTitle, Text: it.Title}, titleAdvance)
				c.put(Line{Align: AlignLeft, Style: StyleText, Text: it.Subtitle}, 0)
				if it.Dates != "" {
					c.put(Line{Align: AlignRight, Style: StyleText, Text: it.Dates}, 0)
				}
				c.y += educationGap
			}
		case KindExperience:
			for _, it := range s.Items {
				c.breakIfLow()
				c.put(Line{Align: AlignLeft, Style: StyleTitle, Text: it.Title}, titleAdvance)
				c.put(Line{Align: AlignLeft, Style: StyleText, Text: it.Subtitle}, 0)
				c.put(Line{Align: AlignRight, Style: StyleText, Text: it.Dates}, metaAdvance)
				if it.Body != "" {
					c.body(it.Body, StyleText, "")
				}
				c.y += entryGap
			}
		default:
			// projects and certificates
			for _, it := range s.Items {
				c.breakIfLow()
				c.put(Line{Align: AlignLeft, Style: StyleTitle, Text: it.Title}, titleAdvance)
				if it.Subtitle != "" {
					c.put(Line{Align: AlignLeft, Style: StyleText, Text: it.Subtitle}, metaAdvance)
				}
				if it.Dates != "" {
					c.put(Line{Align: AlignRight, Style: StyleText, Text: it.Dates}, metaAdvance)
				}
				if it.Link != "" {
					c.put(Line{Align: AlignLeft, Style: StyleLink, Text: it.Link, Href: it.Link}, metaAdvance)
				}
				if it.Body != "" {
					c.body(it.Body, StyleText, "")
				}
				c.y += entryGap
			}
		}
	}

	return Layout{
		Template: doc.Template,
		Color:    doc.Color,
		Locale:   doc.Locale,
		Title:    doc.Title,
		Pages:    c.pages,
	}, nil
}

// Wrap splits text into lines of at most width runes, breaking at spaces
// and keeping explicit newlines. Words longer than width are cut.
func Wrap(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		var cur strings.Builder
		n := 0
		flush := func() {
			out = append(out, cur.String())
			cur.Reset()
			n = 0
		}
		for _, w := range words {
			for utf8.RuneCountInString(w) > width {
				if n > 0 {
					flush()
				}
				r := []rune(w)
				out = append(out, string(r[:width]))
				w = string(r[width:])
			}
			wl := utf8.RuneCountInString(w)
			if n > 0 && n+1+wl > width {
				flush()
			}
			if n > 0 {
				cur.WriteByte(' ')
				n++
			}
			cur.WriteString(w)
			n += wl
		}
		if n > 0 {
			flush()
		}
	}
	// drop trailing blank lines
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
