// Package render turns a collected profile into a Document, the
// format-agnostic section tree, and prints it as HTML, Markdown or a
// paginated A4 layout.
package render

import (
	"cv-creator/internal/domain"
)

// SectionKind identifies a CV section. Sections always appear in the order
// of Order.
type SectionKind string

const (
	KindSummary      SectionKind = "summary"
	KindExperience   SectionKind = "experience"
	KindEducation    SectionKind = "education"
	KindSkills       SectionKind = "skills"
	KindLanguages    SectionKind = "languages"
	KindProjects     SectionKind = "projects"
	KindCertificates SectionKind = "certificates"
)

var Order = []SectionKind{
	KindSummary, KindExperience, KindEducation, KindSkills,
	KindLanguages, KindProjects, KindCertificates,
}

// ContactKind identifies a header contact line.
type ContactKind string

const (
	ContactEmail    ContactKind = "email"
	ContactPhone    ContactKind = "phone"
	ContactAddress  ContactKind = "address"
	ContactLinkedIn ContactKind = "linkedin"
	ContactGitHub   ContactKind = "github"
)

type Contact struct {
	Kind  ContactKind
	Label string
	Value string
	// Href is set for contacts that link somewhere.
	Href string
}

type Header struct {
	Name          string
	Photo         string
	ContactsTitle string
	Contacts      []Contact
}

// Item is one entry of a list section.
type Item struct {
	Title    string
	Subtitle string
	// Dates is the formatted date or date range, possibly empty.
	Dates     string
	Body      string
	Link      string
	LinkLabel string
}

type Section struct {
	Kind  SectionKind
	Title string
	// Text is the body of the summary section.
	Text  string
	Items []Item
	// Tags holds the skills.
	Tags []string
}

// Document is the rendered preview. When Placeholder is set the profile
// lacked a required identity field and nothing else is filled in.
type Document struct {
	Placeholder     bool
	PlaceholderText string
	Template        domain.TemplateID
	Color           domain.ColorID
	Locale          string
	Title           string
	Header          Header
	Sections        []Section
}

// Section returns the section of the given kind, if present.
func (d Document) Section(kind SectionKind) (Section, bool) {
	for _, s := range d.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return Section{}, false
}
