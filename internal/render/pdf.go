package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
)

const ptToMM = 25.4 / 72

// ascentRatio approximates the baseline offset of Helvetica.
const ascentRatio = 0.8

func mmCSS(v float64) template.CSS {
	return template.CSS(strconv.FormatFloat(v, 'f', 2, 64) + "mm")
}

// lineTop converts a baseline position into the box top of the line.
func lineTop(l Line) template.CSS {
	return mmCSS(l.Y - FontSizePt[l.Style]*ptToMM*ascentRatio)
}

func ptCSS(s Style) template.CSS {
	return template.CSS(strconv.FormatFloat(FontSizePt[s], 'f', -1, 64) + "pt")
}

// LayoutHTML prints a Layout as fixed-size A4 sheets with every line placed
// at its computed position. Printed through a browser with CSS page size
// honoured, each sheet becomes exactly one PDF page.
func LayoutHTML(l Layout) ([]byte, error) {
	data := struct {
		Layout
		Lang     string
		CSS      template.CSS
		WidthMM  float64
		HeightMM float64
		MarginMM float64
	}{
		Layout:   l,
		Lang:     l.Locale,
		CSS:      template.CSS(stylesheet),
		WidthMM:  PageWidthMM,
		HeightMM: PageHeightMM,
		MarginMM: MarginMM,
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("render layout: %w", err)
	}
	return buf.Bytes(), nil
}
