package model

// DocumentChunk is one contiguous segment of a document's normalized
// text. Indices for a document are contiguous 0..N-1 and never change
// after creation; the whole set is replaced on re-embedding.
type DocumentChunk struct {
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
	// Embedding is the serialized vector, a bracketed comma-separated
	// list of decimals. See vectorutil.
	Embedding string `json:"embedding"`
	Ctime     int64  `json:"ctime"`
}

// ScoredChunk pairs a chunk with its cosine similarity to a question.
// Retrieval-time only, never persisted.
type ScoredChunk struct {
	Chunk DocumentChunk
	Score float64
}
