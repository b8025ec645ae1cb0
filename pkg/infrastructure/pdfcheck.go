package infrastructure

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFPageCount parses and validates b and returns its page count.
func PDFPageCount(b []byte) (int, error) {
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		return 0, fmt.Errorf("invalid PDF output (len=%d)", len(b))
	}
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(b), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

// VerifyPDF checks that b is a valid PDF with exactly wantPages pages.
func VerifyPDF(b []byte, wantPages int) error {
	n, err := PDFPageCount(b)
	if err != nil {
		return err
	}
	if n != wantPages {
		return fmt.Errorf("pdf has %d pages, layout has %d", n, wantPages)
	}
	return nil
}
