package model

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"cv-creator/internal/apperr"

	"github.com/microcosm-cc/bluemonday"
)

// Section names a repeatable collection of the form.
type Section string

const (
	SectionExperience   Section = "experience"
	SectionEducation    Section = "education"
	SectionLanguages    Section = "languages"
	SectionProjects     Section = "projects"
	SectionCertificates Section = "certificates"
)

// FormState is the editable working copy behind a CV. Unlike Profile it keeps
// half-filled entries and the raw skills text; Collect turns it into a Profile.
type FormState struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Summary   string `json:"summary"`
	Photo     string `json:"photo"`
	// Skills is the comma-separated input as typed.
	Skills string `json:"skills"`

	Experience   []Experience  `json:"experience"`
	Education    []Education   `json:"education"`
	Languages    []Language    `json:"languages"`
	Projects     []Project     `json:"projects"`
	Certificates []Certificate `json:"certificates"`
}

// NewFormState returns an empty form with one blank entry per collection.
func NewFormState() *FormState {
	f := &FormState{}
	f.Reset()
	return f
}

// Reset clears every field and leaves one blank entry per collection.
func (f *FormState) Reset() {
	*f = FormState{
		Experience:   []Experience{{}},
		Education:    []Education{{}},
		Languages:    []Language{{}},
		Projects:     []Project{{}},
		Certificates: []Certificate{{}},
	}
}

// SetField assigns a scalar field by its identifier.
func (f *FormState) SetField(id, value string) error {
	switch id {
	case "firstName":
		f.FirstName = value
	case "lastName":
		f.LastName = value
	case "email":
		f.Email = value
	case "phone":
		f.Phone = value
	case "address":
		f.Address = value
	case "linkedin":
		f.LinkedIn = value
	case "github":
		f.GitHub = value
	case "summary":
		f.Summary = value
	case "skills":
		f.Skills = value
	default:
		return fmt.Errorf("%w: unknown field %q", apperr.ErrMalformedInput, id)
	}
	return nil
}

// SetPhoto stores a data URI produced by PhotoFromUpload.
func (f *FormState) SetPhoto(dataURI string) { f.Photo = dataURI }

func (f *FormState) ClearPhoto() { f.Photo = "" }

// PutExperience replaces entry i, or appends when i == len.
func (f *FormState) PutExperience(i int, e Experience) error {
	return put(&f.Experience, i, e)
}

func (f *FormState) PutEducation(i int, e Education) error {
	return put(&f.Education, i, e)
}

func (f *FormState) PutLanguage(i int, l Language) error {
	return put(&f.Languages, i, l)
}

func (f *FormState) PutProject(i int, p Project) error {
	return put(&f.Projects, i, p)
}

func (f *FormState) PutCertificate(i int, c Certificate) error {
	return put(&f.Certificates, i, c)
}

// Remove deletes entry i of a section. A section never drops below one
// entry; removing the last one is refused.
func (f *FormState) Remove(s Section, i int) error {
	switch s {
	case SectionExperience:
		return remove(&f.Experience, i)
	case SectionEducation:
		return remove(&f.Education, i)
	case SectionLanguages:
		return remove(&f.Languages, i)
	case SectionProjects:
		return remove(&f.Projects, i)
	case SectionCertificates:
		return remove(&f.Certificates, i)
	}
	return fmt.Errorf("%w: unknown section %q", apperr.ErrMalformedInput, s)
}

// Move reorders a section so the entry at from ends up at index to.
func (f *FormState) Move(s Section, from, to int) error {
	switch s {
	case SectionExperience:
		return move(f.Experience, from, to)
	case SectionEducation:
		return move(f.Education, from, to)
	case SectionLanguages:
		return move(f.Languages, from, to)
	case SectionProjects:
		return move(f.Projects, from, to)
	case SectionCertificates:
		return move(f.Certificates, from, to)
	}
	return fmt.Errorf("%w: unknown section %q", apperr.ErrMalformedInput, s)
}

// Populate replaces the whole form with p. Empty collections get one blank
// entry so the form keeps its minimum shape.
func (f *FormState) Populate(p Profile) {
	*f = FormState{
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		LinkedIn:     p.LinkedIn,
		GitHub:       p.GitHub,
		Summary:      p.Summary,
		Photo:        p.Photo,
		Skills:       strings.Join(p.Skills, ", "),
		Experience:   atLeastOne(p.Experience),
		Education:    atLeastOne(p.Education),
		Languages:    atLeastOne(p.Languages),
		Projects:     atLeastOne(p.Projects),
		Certificates: atLeastOne(p.Certificates),
	}
}

// Clone returns a deep copy of the form.
func (f *FormState) Clone() *FormState {
	c := *f
	c.Experience = append([]Experience(nil), f.Experience...)
	c.Education = append([]Education(nil), f.Education...)
	c.Languages = append([]Language(nil), f.Languages...)
	c.Projects = append([]Project(nil), f.Projects...)
	c.Certificates = append([]Certificate(nil), f.Certificates...)
	return &c
}

func put[T any](s *[]T, i int, v T) error {
	switch {
	case i >= 0 && i < len(*s):
		(*s)[i] = v
	case i == len(*s):
		*s = append(*s, v)
	default:
		return fmt.Errorf("%w: entry %d", apperr.ErrNotFound, i)
	}
	return nil
}

func remove[T any](s *[]T, i int) error {
	if i < 0 || i >= len(*s) {
		return fmt.Errorf("%w: entry %d", apperr.ErrNotFound, i)
	}
	if len(*s) == 1 {
		return fmt.Errorf("%w: at least one entry must remain", apperr.ErrRefused)
	}
	*s = append((*s)[:i], (*s)[i+1:]...)
	return nil
}

func move[T any](s []T, from, to int) error {
	if from < 0 || from >= len(s) || to < 0 || to >= len(s) {
		return fmt.Errorf("%w: move %d -> %d", apperr.ErrNotFound, from, to)
	}
	v := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = v
	return nil
}

func atLeastOne[T any](s []T) []T {
	if len(s) == 0 {
		return []T{*new(T)}
	}
	return append([]T(nil), s...)
}

var strict = bluemonday.StrictPolicy()

// clean strips markup and surrounding whitespace from free text. Entities
// typed by the user stay literal text, and cleaning is repeated until
// nothing changes, so clean(clean(s)) == clean(s).
func clean(s string) string {
	for i := 0; i < 8 && s != ""; i++ {
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(strings.ReplaceAll(s, "&", "&amp;"))))
		if next == s {
			break
		}
		s = next
	}
	return s
}

var monthPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})$`)

// month normalizes a date to YYYY-MM. Anything else, including an
// out-of-range month, becomes empty.
func month(s string) string {
	m := monthPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	n, _ := strconv.Atoi(m[2])
	if n < 1 || n > 12 {
		return ""
	}
	return fmt.Sprintf("%s-%02d", m[1], n)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}

// SplitSkills splits comma-separated input into trimmed, non-empty items.
func SplitSkills(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if s := clean(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Filter runs a profile that did not come from the form, such as an
// imported file, through Collect.
func Filter(p Profile) Profile {
	f := &FormState{}
	f.Populate(p)
	return Collect(f)
}

// Collect builds a Profile from the form. Entries missing a required field
// of their section are dropped here, so everything downstream can rely on
// the section invariants. Dates are kept only as YYYY-MM and an ongoing
// position never carries an end date. Collecting a populated form again
// yields the same profile.
func Collect(f *FormState) Profile {
	p := Profile{
		FirstName: clean(f.FirstName),
		LastName:  clean(f.LastName),
		Email:     clean(f.Email),
		Phone:     clean(f.Phone),
		Address:   clean(f.Address),
		LinkedIn:  clean(f.LinkedIn),
		GitHub:    clean(f.GitHub),
		Summary:   truncate(clean(f.Summary), MaxSummaryRunes),
		Photo:     f.Photo,
		Skills:    SplitSkills(f.Skills),
	}

	for _, e := range f.Experience {
		e = Experience{
			Position:    clean(e.Position),
			Company:     clean(e.Company),
			Start:       month(e.Start),
			End:         month(e.End),
			Current:     e.Current,
			Description: truncate(clean(e.Description), MaxDescriptionRunes),
		}
		if e.Position == "" || e.Company == "" || e.Start == "" {
			continue
		}
		if e.Current {
			e.End = ""
		}
		p.Experience = append(p.Experience, e)
	}

	for _, e := range f.Education {
		e = Education{
			School: clean(e.School),
			Degree: clean(e.Degree),
			Start:  month(e.Start),
			End:    month(e.End),
		}
		if e.School == "" || e.Degree == "" {
			continue
		}
		p.Education = append(p.Education, e)
	}

	for _, l := range f.Languages {
		l = Language{Name: clean(l.Name), Level: ParseLevel(string(l.Level))}
		if l.Name == "" || !l.Level.Valid() {
			continue
		}
		p.Languages = append(p.Languages, l)
	}

	for _, pr := range f.Projects {
		pr = Project{
			Name:        clean(pr.Name),
			URL:         strings.TrimSpace(pr.URL),
			Description: truncate(clean(pr.Description), MaxDescriptionRunes),
		}
		if pr.Name == "" {
			continue
		}
		p.Projects = append(p.Projects, pr)
	}

	for _, c := range f.Certificates {
		c = Certificate{
			Name: clean(c.Name),
			Org:  clean(c.Org),
			Date: month(c.Date),
			URL:  strings.TrimSpace(c.URL),
		}
		if c.Name == "" {
			continue
		}
		p.Certificates = append(p.Certificates, c)
	}

	return p.Normalize()
}
