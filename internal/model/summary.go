package model

type DocumentSummary struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
	Summary    string `json:"summary"`
	Ctime      int64  `json:"ctime"`
	Mtime      int64  `json:"mtime"`
}
