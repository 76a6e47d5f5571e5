// Package evidence defines the matter-scoped read models the reasoning
// engines draw on: documents, extracted citations, timeline events, and
// factual statements. Write paths belong to the ingestion pipeline,
// which is outside this service.
package evidence

import "time"

// Document is an ingested legal document within a matter.
type Document struct {
	ID         string    `json:"id"`
	MatterID   string    `json:"matter_id"`
	Title      string    `json:"title"`
	PageCount  int       `json:"page_count"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Citation is a legal citation extracted from a document, with the
// verification state produced at ingest time.
type Citation struct {
	ID         string  `json:"id"`
	MatterID   string  `json:"matter_id"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id,omitempty"`
	PageNumber int     `json:"page_number"`
	CiteText   string  `json:"cite_text"`
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
}

// TimelineEvent is a dated event extracted from a document.
type TimelineEvent struct {
	ID          string    `json:"id"`
	MatterID    string    `json:"matter_id"`
	DocumentID  string    `json:"document_id"`
	PageNumber  int       `json:"page_number"`
	OccurredAt  time.Time `json:"occurred_at"`
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"`
}

// Statement is a factual assertion extracted from a document. Topic
// groups statements about the same fact; Negated marks a denial of the
// topic's assertion, which is what contradiction detection pairs on.
type Statement struct {
	ID         string  `json:"id"`
	MatterID   string  `json:"matter_id"`
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id,omitempty"`
	PageNumber int     `json:"page_number"`
	Topic      string  `json:"topic"`
	Text       string  `json:"text"`
	Negated    bool    `json:"negated"`
	Confidence float64 `json:"confidence"`
}
