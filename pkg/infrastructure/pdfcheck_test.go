package infrastructure

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"cv-creator/internal/apperr"
)

// minimalPDF builds a valid PDF with n empty A4 pages.
func minimalPDF(t *testing.T, n int) []byte {
	t.Helper()
	var objs []string
	kids := make([]string, n)
	for i := 0; i < n; i++ {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i := 0; i < n; i++ {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << >> >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestVerifyPDF(t *testing.T) {
	pdf := minimalPDF(t, 2)
	if err := VerifyPDF(pdf, 2); err != nil {
		t.Fatal(err)
	}
	if err := VerifyPDF(pdf, 3); err == nil {
		t.Fatal("expected page count mismatch")
	}
	if _, err := PDFPageCount([]byte("<html>")); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestClassifyMissingBrowser(t *testing.T) {
	err := classify(errors.New(`exec: "google-chrome": executable file not found in $PATH`))
	if !errors.Is(err, apperr.ErrEnvironment) {
		t.Fatalf("err = %v", err)
	}
	other := errors.New("net::ERR_FAILED")
	if classify(other) != other {
		t.Fatal("unrelated errors must pass through")
	}
}
