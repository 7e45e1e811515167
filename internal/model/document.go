package model

const (
	DocumentStatusUploaded      = "UPLOADED"
	DocumentStatusTextExtracted = "TEXT_EXTRACTED"
)

type Document struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	FileName  string `json:"file_name"`
	FileKey   string `json:"-"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Status    string `json:"status"`
	RawText   string `json:"-"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}
