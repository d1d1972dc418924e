package document

import (
	"context"
	"log/slog"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/core/events"
)

type RepositoryAPI interface {
	GetByID(id int64) (*Document, error)
	GetByCode(code string) (*Document, error)
	List(q ListDocumentsQuery) ([]*Document, int64, error)
	CreateWithInitialMovement(doc *Document, mv *Movement) error
	RecordMovement(mv *Movement, newStatus string, newDepartmentID int64) error
	GetMovements(documentID int64) ([]*MovementDetail, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	eventBus EventPublisher
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, eventBus EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

const initialMovementNotes = "Documento creado en el sistema"

// CreateDocument registers a document and its initial creacion movement in
// one transaction.
func (s *Service) CreateDocument(user *internal.User, dto CreateDocumentDTO) (*Document, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	doc := &Document{
		DocumentCode:        GenerateDocumentCode(),
		Subject:             dto.Subject,
		Description:         dto.Description,
		Status:              StatusPendiente,
		CurrentDepartmentID: dto.DepartmentID,
		CreatedBy:           user.ID,
	}

	mv := &Movement{
		ToDepartmentID: dto.DepartmentID,
		Action:         ActionCreacion,
		Notes:          initialMovementNotes,
		UserID:         user.ID,
	}

	if err := s.repo.CreateWithInitialMovement(doc, mv); err != nil {
		s.logger.Error("failed to create document", "code", doc.DocumentCode, "error", err)
		return nil, internal.NewInternalError("no se pudo registrar el documento", err)
	}

	s.logger.Info("document created", "id", doc.ID, "code", doc.DocumentCode)
	s.publish(events.NewDocumentCreatedEvent(doc.ID, doc.DocumentCode, doc.Subject, user.ID))
	return doc, nil
}

// RecordMovement validates and applies an action to a document. The movement
// insert and the document status/department update run in a single
// transaction, so a failure leaves no half-applied trail.
func (s *Service) RecordMovement(user *internal.User, dto RecordMovementDTO) (*Movement, error) {
	newStatus, ok := StatusForAction(dto.Action)
	if !ok {
		return nil, internal.ErrInvalidAction
	}

	if dto.DocumentID == 0 {
		return nil, internal.ErrMissingFields
	}

	doc, err := s.repo.GetByID(dto.DocumentID)
	if err != nil {
		s.logger.Error("failed to load document for movement", "document_id", dto.DocumentID, "error", err)
		return nil, internal.NewInternalError("no se pudo registrar el movimiento", err)
	}
	if doc == nil {
		return nil, internal.ErrDocumentNotFound
	}

	if RequiresDestination(dto.Action) && dto.ToDepartmentID == nil {
		return nil, internal.ErrMissingDestination
	}

	// only members of the document's current department may move it, admins
	// are exempt
	if !user.IsAdmin() && !user.BelongsTo(doc.CurrentDepartmentID) {
		s.logger.Warn("movement denied: user outside current department",
			"user_id", user.ID,
			"document_id", doc.ID,
			"current_department_id", doc.CurrentDepartmentID)
		return nil, internal.ErrNotInDepartment
	}

	toDepartmentID := doc.CurrentDepartmentID
	if dto.ToDepartmentID != nil {
		toDepartmentID = *dto.ToDepartmentID
	}

	mv := &Movement{
		DocumentID:     doc.ID,
		ToDepartmentID: toDepartmentID,
		Action:         dto.Action,
		Notes:          dto.Notes,
		UserID:         user.ID,
	}
	if dto.Action != ActionCreacion {
		fromID := doc.CurrentDepartmentID
		mv.FromDepartmentID = &fromID
	}

	if err := s.repo.RecordMovement(mv, newStatus, toDepartmentID); err != nil {
		s.logger.Error("failed to record movement",
			"document_id", doc.ID,
			"action", dto.Action,
			"error", err)
		return nil, internal.NewInternalError("no se pudo registrar el movimiento", err)
	}

	s.logger.Info("movement recorded",
		"document_id", doc.ID,
		"action", dto.Action,
		"new_status", newStatus,
		"to_department_id", toDepartmentID)

	s.publish(events.NewDocumentMovedEvent(doc.ID, doc.DocumentCode, dto.Action, newStatus, user.ID, &toDepartmentID))
	return mv, nil
}

// GetByCode resolves a scanned code. Only the DOC- prefix is validated, the
// rest of the code is opaque.
func (s *Service) GetByCode(code string) (*Document, error) {
	if err := ValidateDocumentCode(code); err != nil {
		return nil, internal.NewValidationError("Código de documento no válido", internal.ErrCodeInvalidCode)
	}

	doc, err := s.repo.GetByCode(code)
	if err != nil {
		s.logger.Error("failed to get document by code", "code", code, "error", err)
		return nil, internal.NewInternalError("no se pudo obtener el documento", err)
	}
	if doc == nil {
		return nil, internal.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *Service) GetByID(id int64) (*Document, error) {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get document", "id", id, "error", err)
		return nil, internal.NewInternalError("no se pudo obtener el documento", err)
	}
	if doc == nil {
		return nil, internal.ErrDocumentNotFound
	}
	return doc, nil
}

// GetMovements returns the trail oldest first with joined display names.
func (s *Service) GetMovements(documentID int64) ([]*MovementDetail, error) {
	if _, err := s.GetByID(documentID); err != nil {
		return nil, err
	}

	movements, err := s.repo.GetMovements(documentID)
	if err != nil {
		s.logger.Error("failed to get movements", "document_id", documentID, "error", err)
		return nil, internal.NewInternalError("no se pudo obtener el historial", err)
	}
	return movements, nil
}

func (s *Service) ListDocuments(q ListDocumentsQuery) (*DocumentsResponse, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 || q.PerPage > 100 {
		q.PerPage = 20
	}

	docs, total, err := s.repo.List(q)
	if err != nil {
		s.logger.Error("failed to list documents", "error", err)
		return nil, internal.NewInternalError("no se pudieron obtener los documentos", err)
	}

	return &DocumentsResponse{
		Documents: docs,
		Total:     total,
		Page:      q.Page,
		PerPage:   q.PerPage,
	}, nil
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
