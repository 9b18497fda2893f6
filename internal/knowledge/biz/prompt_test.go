package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/consult-x/internal/knowledge/store"
)

func TestBuildContext(t *testing.T) {
	results := []*store.SearchResult{
		{DocType: "SOP", PageNo: 5, Content: "  Calibrate the gauge monthly.  "},
		{DocType: "ZED Guideline", PageNo: 12, Content: "Track energy use."},
	}

	contextText := BuildContext(results)

	expected := "Source: SOP, Page: 5\nContent: Calibrate the gauge monthly." +
		"\n\n---\n\n" +
		"Source: ZED Guideline, Page: 12\nContent: Track energy use."
	assert.Equal(t, expected, contextText)
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "No context provided.", BuildContext(nil))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("ctx-block", "What is the calibration interval?")

	assert.Contains(t, prompt, "**Context from internal documents:**\nctx-block")
	assert.Contains(t, prompt, "**User's Question:**\nWhat is the calibration interval?")
}

func TestSystemInstructionCarriesSentinel(t *testing.T) {
	assert.Contains(t, SystemInstruction(), NoContextAnswer)
	assert.Contains(t, SystemInstruction(), "[Source: SOP-01, Page 5]")
}
