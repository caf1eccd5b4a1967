package rag

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"NeoFin/internal/domain/models"
	domsvc "NeoFin/internal/domain/service"
)

// ErrUnsupportedDocument is returned for files that are neither PDF nor plain text.
var ErrUnsupportedDocument = errors.New("unsupported document type")

// PDFExtractor reads the text layer of PDF uploads. Plain-text and markdown
// files pass through unchanged.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

func (PDFExtractor) Extract(doc models.Document) (string, error) {
	switch {
	case bytes.HasPrefix(doc.Data, []byte("%PDF")):
		return extractPDF(doc)
	case isTextName(doc.Name):
		if !utf8.Valid(doc.Data) {
			return "", fmt.Errorf("%s: not valid UTF-8", doc.Name)
		}
		return string(doc.Data), nil
	default:
		return "", fmt.Errorf("%s: %w", doc.Name, ErrUnsupportedDocument)
	}
}

func isTextName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".markdown", ".csv":
		return true
	}
	return false
}

// extractPDF concatenates the plain text of every page. Pages without a
// text layer contribute nothing.
func extractPDF(doc models.Document) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", doc.Name, err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read %s page %d: %w", doc.Name, i, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

var _ domsvc.TextExtractor = (*PDFExtractor)(nil)
