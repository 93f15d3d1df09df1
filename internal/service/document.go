package service

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// DocumentExtractor reads the text of the static manual once at startup.
type DocumentExtractor struct {
	path string
}

func NewDocumentExtractor(path string) *DocumentExtractor {
	return &DocumentExtractor{path: path}
}

// ExtractText returns the document text, or "" when the file is missing or
// unreadable. Plain text and markdown files are read as is; anything else
// is parsed as PDF.
func (d *DocumentExtractor) ExtractText() string {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(d.path)) {
	case ".txt", ".md":
		var b []byte
		b, err = os.ReadFile(d.path)
		text = string(b)
	default:
		text, err = extractPDF(d.path)
	}
	if err != nil {
		slog.Error("document extraction failed", "path", d.path, "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

func extractPDF(path string) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) != "" {
			pages = append(pages, pageText)
		}
	}
	return strings.Join(pages, "\n"), nil
}
