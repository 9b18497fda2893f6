// Package model provides data models for the Consult-X platform.
package model

import (
	"fmt"
)

// DocType identifies the kind of consultancy document a chunk was cut from.
// The set is closed: retrieval scoping, prompt assembly, and citation
// matching all rely on these exact values.
type DocType string

const (
	// DocTypeGuideline is an official ZED certification guideline.
	DocTypeGuideline DocType = "ZED Guideline"
	// DocTypeSOP is a client standard operating procedure.
	DocTypeSOP DocType = "SOP"
	// DocTypeBaselineReport is a generated baseline assessment report.
	DocTypeBaselineReport DocType = "Baseline Report"
)

// ParseDocType validates a raw string against the closed DocType set.
func ParseDocType(s string) (DocType, error) {
	switch DocType(s) {
	case DocTypeGuideline, DocTypeSOP, DocTypeBaselineReport:
		return DocType(s), nil
	}
	return "", fmt.Errorf("unknown doc_type %q", s)
}

// String returns the wire value of the doc type.
func (d DocType) String() string {
	return string(d)
}

// PageText is the plain text extracted from a single PDF page.
// It exists only between parsing and chunking and is never persisted.
type PageText struct {
	// PageNo is the 1-based page number in the source document.
	PageNo int
	// Text is the whitespace-normalized page content.
	Text string
}

// IngestResult reports the outcome of a document ingestion.
type IngestResult struct {
	// ChunkCount is the number of chunks embedded and stored.
	ChunkCount int `json:"chunk_count"`
	// NoContent is true when the PDF parsed cleanly but contained no
	// extractable text. This is not an error: callers must be able to
	// tell "nothing to index" apart from "ingestion failed".
	NoContent bool `json:"no_content,omitempty"`
	// Message is a human-readable summary of the outcome.
	Message string `json:"message"`
}

// Citation is a deduplicated (doc type, page) reference extracted from a
// generated answer.
type Citation struct {
	DocType string `json:"doc_type"`
	PageNo  int    `json:"page_no"`
}

// Answer is the final result of an answering pipeline run, available once
// the generation stream has completed.
type Answer struct {
	// Answer is the generated text with inline citation markers stripped.
	Answer string `json:"answer"`
	// Citations lists the cited sources in first-seen order.
	Citations []Citation `json:"citations"`
	// NoContext is true when no chunks were retrieved and the fixed
	// no-answer sentinel was returned without calling the generator.
	NoContext bool `json:"no_context,omitempty"`
}
