package biz

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kart-io/consult-x/internal/model"
	"github.com/kart-io/consult-x/pkg/errors"
)

// Parser extracts per-page plain text from PDF documents.
type Parser struct{}

// NewParser creates a PDF parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParsePages extracts the text of every page in order. Pages that fail
// to decode or hold no extractable text are dropped, so an empty result
// with a nil error means the document parsed but carries no text.
// A document that cannot be opened at all returns ErrDocumentParse.
func (p *Parser) ParsePages(data []byte) ([]model.PageText, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.ErrDocumentParse.WithCause(err)
	}

	pageCount := reader.NumPage()
	pages := make([]model.PageText, 0, pageCount)

	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages that cannot be decoded
			continue
		}

		text = normalizeText(text)
		if text == "" {
			continue
		}

		pages = append(pages, model.PageText{PageNo: i, Text: text})
	}

	return pages, nil
}

// normalizeText collapses whitespace runs to single spaces and trims.
// PDF extraction scatters newlines and spacing artifacts that would
// otherwise bloat chunks and prompts.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
