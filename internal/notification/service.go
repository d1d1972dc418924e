package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/core/events"
)

type Pusher interface {
	NotifyUser(userID int64)
}

type Service struct {
	repo   RepositoryAPI
	pusher Pusher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, pusher Pusher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		pusher: pusher,
		logger: logger,
	}
}

// SubscribeToEvents wires the service to document activity. Handlers run on
// the bus goroutines; failures are logged, never propagated back to the
// operation that raised the event.
func (s *Service) SubscribeToEvents(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeDocumentMoved, s.onDocumentMoved)
	bus.Subscribe(events.EventTypeAttachmentAdded, s.onAttachmentAdded)
}

func (s *Service) onDocumentMoved(ctx context.Context, event events.Event) error {
	moved, ok := event.(events.DocumentMoved)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	if moved.ToDepartmentID == nil {
		return nil
	}

	title := "Documento recibido"
	message := fmt.Sprintf("El documento %s fue registrado con la acción '%s'", moved.DocumentCode, moved.Action)

	return s.notifyDepartment(*moved.ToDepartmentID, moved.ActorID, &Notification{
		Title:      title,
		Message:    message,
		Type:       TypeMovement,
		DocumentID: &moved.DocumentID,
	})
}

func (s *Service) onAttachmentAdded(ctx context.Context, event events.Event) error {
	added, ok := event.(events.AttachmentAdded)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	return s.notifyDepartment(added.DepartmentID, added.UploadedBy, &Notification{
		Title:      "Nuevo archivo adjunto",
		Message:    fmt.Sprintf("Se adjuntó '%s' al documento %s", added.FileName, added.DocumentCode),
		Type:       TypeAttachment,
		DocumentID: &added.DocumentID,
	})
}

// notifyDepartment inserts one row per department member (the actor is
// skipped) and pushes a refetch signal to each.
func (s *Service) notifyDepartment(departmentID, actorID int64, template *Notification) error {
	userIDs, err := s.repo.UsersInDepartment(departmentID)
	if err != nil {
		s.logger.Error("failed to resolve department members", "department_id", departmentID, "error", err)
		return err
	}

	for _, userID := range userIDs {
		if userID == actorID {
			continue
		}

		n := *template
		n.UserID = userID
		if err := s.repo.Create(&n); err != nil {
			s.logger.Error("failed to create notification", "user_id", userID, "error", err)
			continue
		}

		if s.pusher != nil {
			s.pusher.NotifyUser(userID)
		}
	}

	return nil
}

// GetLatest returns the user's inbox, newest first, capped at 20.
func (s *Service) GetLatest(userID int64) ([]*Notification, error) {
	notifications, err := s.repo.GetLatest(userID, latestLimit)
	if err != nil {
		s.logger.Error("failed to list notifications", "user_id", userID, "error", err)
		return nil, internal.NewInternalError("no se pudieron obtener las notificaciones", err)
	}
	return notifications, nil
}

func (s *Service) MarkRead(userID, notificationID int64) error {
	if err := s.repo.MarkRead(userID, notificationID); err != nil {
		s.logger.Error("failed to mark notification read", "id", notificationID, "error", err)
		return internal.NewInternalError("no se pudo actualizar la notificación", err)
	}
	return nil
}

func (s *Service) MarkAllRead(userID int64) error {
	if err := s.repo.MarkAllRead(userID); err != nil {
		s.logger.Error("failed to mark all notifications read", "user_id", userID, "error", err)
		return internal.NewInternalError("no se pudieron actualizar las notificaciones", err)
	}
	return nil
}

func (s *Service) Delete(userID, notificationID int64) error {
	if err := s.repo.Delete(userID, notificationID); err != nil {
		s.logger.Error("failed to delete notification", "id", notificationID, "error", err)
		return internal.NewInternalError("no se pudo eliminar la notificación", err)
	}
	return nil
}

// DeleteRead removes every read notification for the user and reports how
// many went away.
func (s *Service) DeleteRead(userID int64) (int64, error) {
	deleted, err := s.repo.DeleteRead(userID)
	if err != nil {
		s.logger.Error("failed to delete read notifications", "user_id", userID, "error", err)
		return 0, internal.NewInternalError("no se pudieron eliminar las notificaciones", err)
	}
	return deleted, nil
}

// SetupCheck verifies the notifications table is queryable. Kept for the
// GET /api/setup-notifications endpoint.
func (s *Service) SetupCheck() error {
	if err := s.repo.Ping(); err != nil {
		s.logger.Error("notifications table check failed", "error", err)
		return internal.NewInternalError("la tabla de notificaciones no está disponible", err)
	}
	return nil
}
