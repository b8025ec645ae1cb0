package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"cv-creator/internal/apperr"
	"cv-creator/internal/model"
)

//go:embed templates/*.html templates/style.css
var templateFS embed.FS

var templates = template.Must(template.New("cv").Funcs(template.FuncMap{
	"photo": photoURL,
	"href":  hrefURL,
	"mm":    mmCSS,
	"top":   lineTop,
	"pt":    ptCSS,
}).ParseFS(templateFS, "templates/*.html"))

var stylesheet = mustReadStyle()

func mustReadStyle() string {
	b, err := templateFS.ReadFile("templates/style.css")
	if err != nil {
		panic(err)
	}
	return string(b)
}

// photoURL lets an uploaded image data URI through html/template's URL
// filter. Anything else is dropped.
func photoURL(s string) template.URL {
	if model.IsImageDataURI(s) {
		return template.URL(s)
	}
	return ""
}

// hrefURL passes links whose scheme the renderer produced. tel: links
// would otherwise be rewritten by html/template.
func hrefURL(s string) template.URL {
	for _, prefix := range []string{"https://", "http://", "mailto:", "tel:"} {
		if strings.HasPrefix(s, prefix) {
			return template.URL(s)
		}
	}
	return "#"
}

// Stylesheet is the CSS covering every template and color variant.
func Stylesheet() string { return stylesheet }

// HTMLFragment prints the preview markup of doc, placeholder included.
func HTMLFragment(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "document", doc); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// HTMLPage prints doc as a standalone page with the stylesheet inlined, so
// the file needs nothing else to display.
func HTMLPage(doc Document) ([]byte, error) {
	if doc.Placeholder {
		return nil, fmt.Errorf("%w: html export needs a complete profile", apperr.ErrPrecondition)
	}
	data := struct {
		Lang string
		Doc  Document
		CSS  template.CSS
	}{Lang: doc.Locale, Doc: doc, CSS: template.CSS(stylesheet)}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
