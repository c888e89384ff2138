// Package parser turns uploaded files into plain markdown text.
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docbricks/docbricks/internal/domain"
)

// Parse extracts text from an uploaded file based on its extension.
// Markdown and plain text pass through unchanged; PDFs are extracted
// page by page.
func Parse(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".txt":
		return string(data), nil
	case ".pdf":
		return parsePDF(path)
	default:
		return "", fmt.Errorf("unsupported file type %q: %w", filepath.Ext(path), domain.ErrDocumentNotIngestable)
	}
}

func parsePDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages, keep the rest
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}
	return out, nil
}
