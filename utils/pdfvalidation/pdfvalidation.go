package pdfvalidation

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("missing PDF header")

var pdfHeader = []byte("%PDF-")

// Inspection is what we learn about an uploaded report
type Inspection struct {
	IsPDF     bool
	PageCount int
	FileSize  int64
}

// Inspect reads the page count of a PDF payload. Payloads that are not PDFs
// are reported with IsPDF=false and a nil error; callers store them anyway.
func Inspect(content []byte) (*Inspection, error) {
	result := &Inspection{FileSize: int64(len(content))}

	if !bytes.HasPrefix(content, pdfHeader) {
		return result, nil
	}
	result.IsPDF = true

	pageCount, err := PageCount(content)
	if err != nil {
		return result, err
	}
	result.PageCount = pageCount
	return result, nil
}

// PageCount returns the number of pages in a PDF
func PageCount(content []byte) (n int, err error) {
	if !bytes.HasPrefix(content, pdfHeader) {
		return 0, ErrNotPDF
	}

	// the pdf reader panics on some truncated xref tables
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	content = sanitizePDF(content)
	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return pdfReader.NumPage(), nil
}

// sanitizePDF removes trailing garbage data after the last %%EOF marker
func sanitizePDF(content []byte) []byte {
	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}

	pdfEnd := lastEOF + len(eofMarker)
	for pdfEnd < len(content) && (content[pdfEnd] == '\n' || content[pdfEnd] == '\r') {
		pdfEnd++
	}

	return content[:pdfEnd]
}
