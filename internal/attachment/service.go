package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/core/events"
)

type DocumentGetter interface {
	GetByID(id int64) (*DocumentRef, error)
}

// DocumentRef is the slice of the document the attachment service needs.
type DocumentRef struct {
	ID                  int64
	DocumentCode        string
	CurrentDepartmentID int64
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type UploadInput struct {
	DocumentID     int64
	FileName       string
	ContentType    string
	Size           int64
	Description    *string
	IsMainDocument bool
	Content        io.Reader
}

type Service struct {
	repo      RepositoryAPI
	storage   BlobStorage
	documents DocumentGetter
	eventBus  EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, storage BlobStorage, documents DocumentGetter, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		storage:   storage,
		documents: documents,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Upload validates the file, writes the blob, and records the metadata. All
// validation happens before the storage call, an oversized or disallowed
// file never reaches the blob store.
func (s *Service) Upload(user *internal.User, in UploadInput) (*Attachment, error) {
	if in.Size > MaxFileSize {
		return nil, internal.ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	if !IsAllowedExtension(ext) || !IsAllowedContentType(in.ContentType) {
		return nil, internal.ErrFileTypeNotAllowed
	}

	doc, err := s.documents.GetByID(in.DocumentID)
	if err != nil {
		s.logger.Error("failed to load document for upload", "document_id", in.DocumentID, "error", err)
		return nil, internal.NewInternalError("no se pudo subir el archivo", err)
	}
	if doc == nil {
		return nil, internal.ErrDocumentNotFound
	}

	key := fmt.Sprintf("%d/%d%s", in.DocumentID, time.Now().UnixMilli(), ext)
	if err := s.storage.Put(key, in.ContentType, in.Content); err != nil {
		s.logger.Error("blob upload failed", "key", key, "error", err)
		return nil, internal.TranslateStorageError(err)
	}

	if in.IsMainDocument {
		if err := s.repo.ClearMainFlag(in.DocumentID); err != nil {
			s.logger.Error("failed to clear previous main attachment", "document_id", in.DocumentID, "error", err)
			return nil, internal.NewInternalError("no se pudo subir el archivo", err)
		}
	}

	att := &Attachment{
		DocumentID:     in.DocumentID,
		FileName:       in.FileName,
		StoragePath:    key,
		ContentType:    in.ContentType,
		SizeBytes:      in.Size,
		Description:    in.Description,
		IsMainDocument: in.IsMainDocument,
		Version:        1,
		UploadedBy:     user.ID,
	}
	if err := s.repo.Create(att); err != nil {
		s.logger.Error("failed to persist attachment metadata", "key", key, "error", err)
		return nil, internal.NewInternalError("no se pudo subir el archivo", err)
	}

	if err := s.repo.SetDocumentHasAttachments(in.DocumentID, true); err != nil {
		s.logger.Warn("failed to flag document attachments", "document_id", in.DocumentID, "error", err)
	}

	s.logger.Info("attachment uploaded",
		"attachment_id", att.ID,
		"document_id", in.DocumentID,
		"file_name", in.FileName,
		"size", in.Size)

	s.publish(events.NewAttachmentAddedEvent(doc.ID, doc.DocumentCode, in.FileName, user.ID, doc.CurrentDepartmentID))
	return att, nil
}

func (s *Service) GetForDocument(documentID int64) ([]*Attachment, error) {
	attachments, err := s.repo.GetByDocument(documentID)
	if err != nil {
		s.logger.Error("failed to list attachments", "document_id", documentID, "error", err)
		return nil, internal.NewInternalError("no se pudieron obtener los archivos", err)
	}
	return attachments, nil
}

// Open returns the blob content for download.
func (s *Service) Open(id int64) (*Attachment, io.ReadCloser, error) {
	att, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get attachment", "id", id, "error", err)
		return nil, nil, internal.NewInternalError("no se pudo obtener el archivo", err)
	}
	if att == nil {
		return nil, nil, internal.ErrAttachmentNotFound
	}

	rc, err := s.storage.Get(att.StoragePath)
	if err != nil {
		s.logger.Error("blob read failed", "key", att.StoragePath, "error", err)
		return nil, nil, internal.TranslateStorageError(err)
	}
	return att, rc, nil
}

// Delete removes the blob and the metadata row. A blob-delete failure is
// logged but does not block the metadata delete.
func (s *Service) Delete(id int64) error {
	att, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get attachment", "id", id, "error", err)
		return internal.NewInternalError("no se pudo eliminar el archivo", err)
	}
	if att == nil {
		return internal.ErrAttachmentNotFound
	}

	if err := s.storage.Delete(att.StoragePath); err != nil {
		s.logger.Warn("blob delete failed, continuing with metadata delete",
			"key", att.StoragePath,
			"error", err)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete attachment metadata", "id", id, "error", err)
		return internal.NewInternalError("no se pudo eliminar el archivo", err)
	}

	remaining, err := s.repo.CountForDocument(att.DocumentID)
	if err != nil {
		s.logger.Warn("failed to count remaining attachments", "document_id", att.DocumentID, "error", err)
		return nil
	}
	if remaining == 0 {
		if err := s.repo.SetDocumentHasAttachments(att.DocumentID, false); err != nil {
			s.logger.Warn("failed to unflag document attachments", "document_id", att.DocumentID, "error", err)
		}
	}

	s.logger.Info("attachment deleted", "id", id, "document_id", att.DocumentID)
	return nil
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
