package pdfextract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page holds the plain text of a single PDF page. Number is 1-based.
type Page struct {
	Number int
	Text   string
}

// ExtractPages parses the PDF at path and returns the plain text of each
// page that has extractable text. The whole document is parsed before
// anything is returned. Returns an error if the file is not a readable PDF.
func ExtractPages(path string) ([]Page, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not lose the rest of the
			// document; pages with no text are simply skipped.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, Page{Number: i, Text: text})
	}
	return pages, nil
}
