// Package metrics collects business counters for the knowledge service.
package metrics

import (
	"sync/atomic"
	"time"
)

// KnowledgeMetrics tracks ingestion and answering outcomes.
type KnowledgeMetrics struct {
	documentsIngested  atomic.Uint64
	chunksIndexed      atomic.Uint64
	ingestErrors       atomic.Uint64
	questionsTotal     atomic.Uint64
	questionsNoContext atomic.Uint64
	questionErrors     atomic.Uint64

	startTime time.Time
}

// New creates an empty metrics set.
func New() *KnowledgeMetrics {
	return &KnowledgeMetrics{startTime: time.Now()}
}

// RecordIngest records a successful document ingestion.
func (m *KnowledgeMetrics) RecordIngest(chunks int) {
	m.documentsIngested.Add(1)
	m.chunksIndexed.Add(uint64(chunks))
}

// RecordIngestError records a failed ingestion.
func (m *KnowledgeMetrics) RecordIngestError() {
	m.ingestErrors.Add(1)
}

// RecordQuestion records an answered question.
func (m *KnowledgeMetrics) RecordQuestion(noContext bool) {
	m.questionsTotal.Add(1)
	if noContext {
		m.questionsNoContext.Add(1)
	}
}

// RecordQuestionError records a failed question.
func (m *KnowledgeMetrics) RecordQuestionError() {
	m.questionErrors.Add(1)
}

// Snapshot returns the current counter values.
func (m *KnowledgeMetrics) Snapshot() map[string]any {
	return map[string]any{
		"documents_ingested":   m.documentsIngested.Load(),
		"chunks_indexed":       m.chunksIndexed.Load(),
		"ingest_errors":        m.ingestErrors.Load(),
		"questions_total":      m.questionsTotal.Load(),
		"questions_no_context": m.questionsNoContext.Load(),
		"question_errors":      m.questionErrors.Load(),
		"uptime_seconds":       uint64(time.Since(m.startTime).Seconds()),
	}
}
