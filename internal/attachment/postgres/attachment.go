package postgres

import (
	"gorm.io/gorm"

	"github.com/sisedoc/document-tracking/internal/attachment"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) attachment.RepositoryAPI {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) GetByID(id int64) (*attachment.Attachment, error) {
	var att attachment.Attachment
	err := r.db.Where("id = ?", id).First(&att).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &att, nil
}

func (r *AttachmentRepository) GetByDocument(documentID int64) ([]*attachment.Attachment, error) {
	var attachments []*attachment.Attachment
	err := r.db.Where("document_id = ?", documentID).
		Order("is_main_document DESC, created_at ASC").
		Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) Create(att *attachment.Attachment) error {
	return r.db.Create(att).Error
}

func (r *AttachmentRepository) Delete(id int64) error {
	return r.db.Delete(&attachment.Attachment{}, id).Error
}

func (r *AttachmentRepository) ClearMainFlag(documentID int64) error {
	return r.db.Model(&attachment.Attachment{}).
		Where("document_id = ? AND is_main_document = ?", documentID, true).
		Update("is_main_document", false).Error
}

func (r *AttachmentRepository) CountForDocument(documentID int64) (int64, error) {
	var count int64
	err := r.db.Model(&attachment.Attachment{}).
		Where("document_id = ?", documentID).
		Count(&count).Error
	return count, err
}

func (r *AttachmentRepository) SetDocumentHasAttachments(documentID int64, has bool) error {
	return r.db.Table("documents").
		Where("id = ?", documentID).
		Update("has_attachments", has).Error
}
