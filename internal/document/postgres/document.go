package postgres

import (
	"time"

	"gorm.io/gorm"

	"github.com/sisedoc/document-tracking/internal/document"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) document.RepositoryAPI {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) GetByID(id int64) (*document.Document, error) {
	var doc document.Document
	err := r.db.Where("id = ?", id).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) GetByCode(code string) (*document.Document, error) {
	var doc document.Document
	err := r.db.Where("document_code = ?", code).First(&doc).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepository) List(q document.ListDocumentsQuery) ([]*document.Document, int64, error) {
	query := r.db.Model(&document.Document{})

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.DepartmentID != nil {
		query = query.Where("current_department_id = ?", *q.DepartmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []*document.Document
	offset := (q.Page - 1) * q.PerPage
	err := query.Order("created_at DESC").Limit(q.PerPage).Offset(offset).Find(&docs).Error
	return docs, total, err
}

// CreateWithInitialMovement inserts the document and its creacion movement
// atomically.
func (r *DocumentRepository) CreateWithInitialMovement(doc *document.Document, mv *document.Movement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return err
		}

		mv.DocumentID = doc.ID
		return tx.Create(mv).Error
	})
}

// RecordMovement inserts the movement and updates the document's status and
// current department in one transaction.
func (r *DocumentRepository) RecordMovement(mv *document.Movement, newStatus string, newDepartmentID int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mv).Error; err != nil {
			return err
		}

		return tx.Model(&document.Document{}).
			Where("id = ?", mv.DocumentID).
			Updates(map[string]interface{}{
				"status":                newStatus,
				"current_department_id": newDepartmentID,
				"updated_at":            time.Now(),
			}).Error
	})
}

// GetMovements returns the full trail oldest first with department and user
// display names joined in.
func (r *DocumentRepository) GetMovements(documentID int64) ([]*document.MovementDetail, error) {
	var movements []*document.MovementDetail

	err := r.db.Table("document_movements AS m").
		Select(`m.*,
			fd.name AS from_department_name,
			td.name AS to_department_name,
			u.full_name AS user_full_name`).
		Joins("LEFT JOIN departments fd ON fd.id = m.from_department_id").
		Joins("JOIN departments td ON td.id = m.to_department_id").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("m.document_id = ?", documentID).
		Order("m.created_at ASC").
		Scan(&movements).Error

	return movements, err
}
