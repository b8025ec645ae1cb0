package render

import (
	"fmt"
	"strings"

	"cv-creator/internal/apperr"
)

var contactIcons = map[ContactKind]string{
	ContactEmail:    "📧",
	ContactPhone:    "📱",
	ContactAddress:  "📍",
	ContactLinkedIn: "💼",
	ContactGitHub:   "💻",
}

// Markdown prints doc as UTF-8 Markdown: the name as H1, section titles as
// H2 and entry titles as H3.
func Markdown(doc Document) ([]byte, error) {
	if doc.Placeholder {
		return nil, fmt.Errorf("%w: markdown export needs a complete profile", apperr.ErrPrecondition)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Header.Name)

	if len(doc.Header.Contacts) > 0 {
		fmt.Fprintf(&b, "## %s\n\n", doc.Header.ContactsTitle)
		for _, c := range doc.Header.Contacts {
			switch c.Kind {
			case ContactLinkedIn, ContactGitHub:
				fmt.Fprintf(&b, "- %s %s: [%s](%s)\n", contactIcons[c.Kind], c.Label, c.Value, c.Href)
			default:
				fmt.Fprintf(&b, "- %s %s: %s\n", contactIcons[c.Kind], c.Label, c.Value)
			}
		}
		b.WriteString("\n")
	}

	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "## %s\n\n", s.Title)
		switch s.Kind {
		case KindSummary:
			fmt.Fprintf(&b, "%s\n\n", s.Text)
		case KindSkills:
			for _, tag := range s.Tags {
				fmt.Fprintf(&b, "- %s\n", tag)
			}
			b.WriteString("\n")
		case KindLanguages:
			for _, it := range s.Items {
				fmt.Fprintf(&b, "- **%s**: %s\n", it.Title, it.Subtitle)
			}
			b.WriteString("\n")
		default:
			for _, it := range s.Items {
				writeMarkdownItem(&b, it)
			}
		}
	}
	return []byte(strings.TrimRight(b.String(), "\n") + "\n"), nil
}

func writeMarkdownItem(b *strings.Builder, it Item) {
	fmt.Fprintf(b, "### %s\n", it.Title)
	var meta []string
	if it.Subtitle != "" {
		meta = append(meta, "**"+it.Subtitle+"**")
	}
	if it.Dates != "" {
		meta = append(meta, it.Dates)
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, " | ") + "\n")
	}
	if it.Link != "" {
		label := it.LinkLabel
		if label == "" {
			label = it.Link
		}
		fmt.Fprintf(b, "🔗 [%s](%s)\n", label, it.Link)
	}
	b.WriteString("\n")
	if it.Body != "" {
		fmt.Fprintf(b, "%s\n\n", it.Body)
	}
}
