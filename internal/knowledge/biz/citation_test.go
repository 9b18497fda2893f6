package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/consult-x/internal/model"
)

func TestExtractCitations(t *testing.T) {
	text := "Calibrate monthly [Source: SOP-01, Page 5]. Record results [Source: SOP-02, Page 3]."

	cleaned, citations := ExtractCitations(text)

	require.Len(t, citations, 2)
	assert.Equal(t, model.Citation{DocType: "SOP-01", PageNo: 5}, citations[0])
	assert.Equal(t, model.Citation{DocType: "SOP-02", PageNo: 3}, citations[1])
	assert.Equal(t, "Calibrate monthly . Record results .", cleaned)
}

func TestExtractCitationsDedupFirstSeen(t *testing.T) {
	text := "A [Source: SOP-01, Page 5] B [Source: SOP-02, Page 3] C [Source: SOP-01, Page 5]"

	_, citations := ExtractCitations(text)

	require.Len(t, citations, 2)
	assert.Equal(t, model.Citation{DocType: "SOP-01", PageNo: 5}, citations[0])
	assert.Equal(t, model.Citation{DocType: "SOP-02", PageNo: 3}, citations[1])
}

func TestExtractCitationsWhitespaceVariants(t *testing.T) {
	text := "See [Source:ZED Guideline,Page 12] and [Source:  SOP ,  Page  7]."

	cleaned, citations := ExtractCitations(text)

	require.Len(t, citations, 2)
	assert.Equal(t, model.Citation{DocType: "ZED Guideline", PageNo: 12}, citations[0])
	assert.Equal(t, model.Citation{DocType: "SOP", PageNo: 7}, citations[1])
	assert.Equal(t, "See  and .", cleaned)
}

func TestExtractCitationsNoMarkers(t *testing.T) {
	cleaned, citations := ExtractCitations("plain answer text")

	assert.Empty(t, citations)
	assert.Equal(t, "plain answer text", cleaned)
}

func TestExtractCitationsStripsMalformedMarkers(t *testing.T) {
	// Markers that do not match the citation shape are still stripped
	// from the final text.
	cleaned, citations := ExtractCitations("See [Source: unknown reference] here")

	assert.Empty(t, citations)
	assert.Equal(t, "See  here", cleaned)
}
