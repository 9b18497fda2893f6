package biz

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kart-io/consult-x/internal/model"
)

var (
	citationPattern = regexp.MustCompile(`\[Source:\s*([^,]+),\s*Page\s*(\d+)]`)
	markerPattern   = regexp.MustCompile(`\[Source:[^\]]+\]`)
)

// ExtractCitations pulls every citation marker out of the generated
// text, deduplicates by (docType, page) keeping first-seen order, and
// returns the answer with all markers stripped.
func ExtractCitations(text string) (string, []model.Citation) {
	matches := citationPattern.FindAllStringSubmatch(text, -1)

	var citations []model.Citation
	seen := make(map[string]struct{})
	for _, match := range matches {
		docType := strings.TrimSpace(match[1])
		pageNo, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}

		key := docType + "#" + match[2]
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		citations = append(citations, model.Citation{DocType: docType, PageNo: pageNo})
	}

	cleaned := strings.TrimSpace(markerPattern.ReplaceAllString(text, ""))
	return cleaned, citations
}
