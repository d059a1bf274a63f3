// Package extraction turns uploaded resume documents into plain text.
package extraction

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrExtractionFailed indicates a document could not be converted to text.
type ErrExtractionFailed struct {
	Filename string
	Reason   string
}

func (e *ErrExtractionFailed) Error() string {
	return fmt.Sprintf("text extraction failed for %s: %s", e.Filename, e.Reason)
}

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// DocumentExtractor extracts text from PDF and plain-text uploads.
type DocumentExtractor struct{}

// NewDocumentExtractor creates a new document extractor.
func NewDocumentExtractor() *DocumentExtractor {
	return &DocumentExtractor{}
}

// Extract converts the uploaded document to plain text. Empty or
// whitespace-only output is treated as a failure: there is nothing for the
// structuring model to work with.
func (e *DocumentExtractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		text, err = extractPDF(data)
		if err != nil {
			return "", &ErrExtractionFailed{Filename: filename, Reason: err.Error()}
		}
	case ".txt":
		text = string(data)
	default:
		return "", &ErrExtractionFailed{Filename: filename, Reason: "unsupported file type (only PDF and TXT are supported)"}
	}

	if strings.TrimSpace(text) == "" {
		return "", &ErrExtractionFailed{Filename: filename, Reason: "document contains no extractable text"}
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(content); err != nil {
		return "", fmt.Errorf("failed to buffer PDF text: %w", err)
	}
	return buf.String(), nil
}
