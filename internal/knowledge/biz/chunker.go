package biz

import (
	"github.com/kart-io/consult-x/internal/model"
)

// charsPerToken approximates the character width of one token for
// chunk sizing purposes.
const charsPerToken = 4

// Chunk is a contiguous slice of a single page's text together with
// the page it came from. Chunks never cross page boundaries so that
// page-level citations stay exact.
type Chunk struct {
	PageNo int
	Text   string
}

// Chunker splits page text into overlapping fixed-size windows. Window
// size and step are measured in runes so boundaries never cut a
// multi-byte character.
type Chunker struct {
	windowSize int
	step       int
}

// NewChunker builds a chunker with a window of sizeTokens tokens and
// the given overlap fraction between consecutive windows.
func NewChunker(sizeTokens int, overlap float64) *Chunker {
	window := sizeTokens * charsPerToken
	step := window - int(float64(window)*overlap)
	if step < 1 {
		step = 1
	}
	return &Chunker{windowSize: window, step: step}
}

// Split chunks every page independently and returns the chunks in page
// order, window order within a page.
func (c *Chunker) Split(pages []model.PageText) []Chunk {
	var chunks []Chunk
	for _, page := range pages {
		chunks = append(chunks, c.splitPage(page)...)
	}
	return chunks
}

func (c *Chunker) splitPage(page model.PageText) []Chunk {
	runes := []rune(page.Text)
	if len(runes) <= c.windowSize {
		return []Chunk{{PageNo: page.PageNo, Text: page.Text}}
	}

	var chunks []Chunk
	for i := 0; i < len(runes); i += c.step {
		end := i + c.windowSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{PageNo: page.PageNo, Text: string(runes[i:end])})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
