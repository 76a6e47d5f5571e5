package messagequeue

// SearchRequestPayload asks the retrieval worker for a hybrid search
// over one matter's chunks. MatterID scopes the search; the worker must
// never return chunks from another matter.
type SearchRequestPayload struct {
	RequestID string `json:"request_id"`
	MatterID  string `json:"matter_id"`
	Query     string `json:"query"`
	TopK      int    `json:"top_k"`
}

// SearchHit is one retrieved chunk.
type SearchHit struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	PageNumber int     `json:"page_number"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// SearchResultPayload is the worker's reply, correlated by RequestID.
type SearchResultPayload struct {
	RequestID string      `json:"request_id"`
	MatterID  string      `json:"matter_id"`
	Hits      []SearchHit `json:"hits"`
	Error     string      `json:"error,omitempty"`
}

// DocumentsIngestedPayload announces new documents in a matter.
type DocumentsIngestedPayload struct {
	MatterID    string   `json:"matter_id"`
	DocumentIDs []string `json:"document_ids"`
}
