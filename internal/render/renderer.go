package render

import (
	"strings"

	"cv-creator/internal/domain"
	"cv-creator/internal/i18n"
	"cv-creator/internal/model"
)

// Options are the presentation choices of one render.
type Options struct {
	Template domain.TemplateID
	Color    domain.ColorID
	// Labels defaults to the base locale.
	Labels *i18n.Labels
}

func (o Options) labels() *i18n.Labels {
	if o.Labels != nil {
		return o.Labels
	}
	return i18n.Default().Labels(i18n.BaseLocale)
}

// dateSep joins the two ends of a date range.
const dateSep = " – "

// Render builds the Document for p. A profile without first name, last
// name, email or phone renders as the placeholder and nothing else.
// Template and color are carried as tags and never change content.
func Render(p model.Profile, opts Options) Document {
	l := opts.labels()
	doc := Document{
		Template: opts.Template,
		Color:    opts.Color,
		Locale:   l.Locale,
	}
	if !p.Complete() {
		doc.Placeholder = true
		doc.PlaceholderText = l.T("label.placeholder")
		doc.Title = l.T("label.resume")
		return doc
	}

	doc.Title = l.T("label.resume") + " - " + p.FullName()
	doc.Header = Header{Name: p.FullName(), ContactsTitle: l.T("section.contacts"), Contacts: contacts(p, l)}
	if model.IsImageDataURI(p.Photo) {
		doc.Header.Photo = p.Photo
	}

	add := func(s Section) {
		s.Title = l.T("section." + string(s.Kind))
		doc.Sections = append(doc.Sections, s)
	}

	if p.Summary != "" {
		add(Section{Kind: KindSummary, Text: p.Summary})
	}
	if len(p.Experience) > 0 {
		s := Section{Kind: KindExperience}
		for _, e := range p.Experience {
			s.Items = append(s.Items, Item{
				Title:    e.Position,
				Subtitle: e.Company,
				Dates:    ExperienceRange(e, l),
				Body:     e.Description,
			})
		}
		add(s)
	}
	if len(p.Education) > 0 {
		s := Section{Kind: KindEducation}
		for _, e := range p.Education {
			s.Items = append(s.Items, Item{
				Title:    e.Degree,
				Subtitle: e.School,
				Dates:    EducationRange(e, l),
			})
		}
		add(s)
	}
	if len(p.Skills) > 0 {
		add(Section{Kind: KindSkills, Tags: append([]string(nil), p.Skills...)})
	}
	if len(p.Languages) > 0 {
		s := Section{Kind: KindLanguages}
		for _, lang := range p.Languages {
			s.Items = append(s.Items, Item{Title: lang.Name, Subtitle: l.Level(string(lang.Level))})
		}
		add(s)
	}
	if len(p.Projects) > 0 {
		s := Section{Kind: KindProjects}
		for _, pr := range p.Projects {
			it := Item{Title: pr.Name, Body: pr.Description}
			if pr.URL != "" {
				it.Link = withScheme(pr.URL)
				it.LinkLabel = linkLabel(pr.URL)
			}
			s.Items = append(s.Items, it)
		}
		add(s)
	}
	if len(p.Certificates) > 0 {
		s := Section{Kind: KindCertificates}
		for _, c := range p.Certificates {
			it := Item{Title: c.Name, Subtitle: c.Org, Dates: l.FormatDate(c.Date)}
			if c.URL != "" {
				it.Link = withScheme(c.URL)
				it.LinkLabel = l.T("label.view_certificate")
			}
			s.Items = append(s.Items, it)
		}
		add(s)
	}
	return doc
}

// ExperienceRange is "start – end". An ongoing position, or one without an
// end date, ends with the Present marker; a stale end date never shows.
func ExperienceRange(e model.Experience, l *i18n.Labels) string {
	end := l.FormatDate(e.End)
	if e.Current || end == "" {
		end = l.Present()
	}
	return l.FormatDate(e.Start) + dateSep + end
}

// EducationRange is "start – end" when both dates exist, the one that
// exists otherwise, and empty when neither does.
func EducationRange(e model.Education, l *i18n.Labels) string {
	start, end := l.FormatDate(e.Start), l.FormatDate(e.End)
	switch {
	case start != "" && end != "":
		return start + dateSep + end
	case end != "":
		return end
	default:
		return start
	}
}

func contacts(p model.Profile, l *i18n.Labels) []Contact {
	var out []Contact
	if p.Email != "" {
		out = append(out, Contact{Kind: ContactEmail, Label: l.T("contact.email"), Value: p.Email, Href: "mailto:" + p.Email})
	}
	if p.Phone != "" {
		out = append(out, Contact{Kind: ContactPhone, Label: l.T("contact.phone"), Value: p.Phone, Href: "tel:" + strings.ReplaceAll(p.Phone, " ", "")})
	}
	if p.Address != "" {
		out = append(out, Contact{Kind: ContactAddress, Label: l.T("contact.address"), Value: p.Address})
	}
	if p.LinkedIn != "" {
		out = append(out, Contact{Kind: ContactLinkedIn, Label: l.T("contact.linkedin"), Value: p.LinkedIn, Href: withScheme(p.LinkedIn)})
	}
	if p.GitHub != "" {
		out = append(out, Contact{Kind: ContactGitHub, Label: l.T("contact.github"), Value: p.GitHub, Href: withScheme(p.GitHub)})
	}
	return out
}
