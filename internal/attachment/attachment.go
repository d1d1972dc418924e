package attachment

import "time"

// MaxFileSize is the upload limit enforced before any storage call.
const MaxFileSize = 5 * 1024 * 1024

// Attachment is the metadata row for a stored file. StoragePath is the blob
// key, <documentID>/<unix-ms>.<ext>.
type Attachment struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	DocumentID     int64     `json:"document_id"`
	FileName       string    `json:"file_name"`
	StoragePath    string    `json:"storage_path"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	Description    *string   `json:"description,omitempty"`
	IsMainDocument bool      `json:"is_main_document"`
	Version        int       `json:"version"`
	UploadedBy     int64     `json:"uploaded_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Attachment) TableName() string {
	return "document_attachments"
}

type RepositoryAPI interface {
	GetByID(id int64) (*Attachment, error)
	GetByDocument(documentID int64) ([]*Attachment, error)
	Create(att *Attachment) error
	Delete(id int64) error
	ClearMainFlag(documentID int64) error
	CountForDocument(documentID int64) (int64, error)
	SetDocumentHasAttachments(documentID int64, has bool) error
}

// allowedTypes maps permitted MIME types to their canonical extensions.
var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// allowedExtensions is checked independently of the declared MIME type, a
// renamed executable with a forged content type still fails here.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".xls":  true,
	".xlsx": true,
}

func IsAllowedContentType(contentType string) bool {
	return allowedTypes[contentType]
}

func IsAllowedExtension(ext string) bool {
	return allowedExtensions[ext]
}
