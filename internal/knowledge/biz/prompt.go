package biz

import (
	"fmt"
	"strings"

	"github.com/kart-io/consult-x/internal/knowledge/store"
)

// NoContextAnswer is returned verbatim whenever retrieval yields no
// chunks, and is the phrase the model is instructed to emit when the
// retrieved context cannot answer the question.
const NoContextAnswer = "I could not find any relevant information in the uploaded documents for this project to answer your question. Please verify that the necessary documents have been uploaded and processed, or try rephrasing your question to be more specific."

const contextSeparator = "\n\n---\n\n"

// systemInstruction carries the consultant persona and the citation
// and grounding rules the model must follow.
var systemInstruction = fmt.Sprintf(`You are an expert ZED (Zero Defect Zero Effect) consultant assistant. Your task is to answer the user's question based *only* on the provided context from internal project documents.

**Instructions:**
1. Analyze the provided context thoroughly.
2. Formulate a clear and concise answer to the user's question using ONLY the information from the context.
3. **Crucially, you must embed citations in your answer** for the information you use. For each piece of information, reference the document and page number, like this: [Source: SOP-01, Page 5].
4. If the context does not contain enough information to answer the question, you MUST respond with the exact phrase: %q. Do not invent or infer information.
5. Do not add any preamble like "Here is the answer". Respond directly.`, NoContextAnswer)

// BuildContext renders the retrieved chunks as citation-ready blocks.
func BuildContext(results []*store.SearchResult) string {
	if len(results) == 0 {
		return "No context provided."
	}

	blocks := make([]string, len(results))
	for i, result := range results {
		blocks[i] = fmt.Sprintf("Source: %s, Page: %d\nContent: %s",
			result.DocType, result.PageNo, strings.TrimSpace(result.Content))
	}
	return strings.Join(blocks, contextSeparator)
}

// BuildPrompt assembles the user-facing prompt from the rendered
// context and the question.
func BuildPrompt(contextText, question string) string {
	var b strings.Builder
	b.WriteString("**Context from internal documents:**\n")
	b.WriteString(contextText)
	b.WriteString("\n\n**User's Question:**\n")
	b.WriteString(question)
	return b.String()
}

// SystemInstruction returns the generation system prompt.
func SystemInstruction() string {
	return systemInstruction
}
