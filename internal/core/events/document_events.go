package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeDocumentCreated = "document.created"
	EventTypeDocumentMoved   = "document.moved"
	EventTypeAttachmentAdded = "document.attachment_added"
	EventTypeUserInvited     = "user.invited"
)

// stamp identifies one occurrence. Embedded by every concrete event.
type stamp struct {
	id         string
	occurredAt time.Time
}

func newStamp() stamp {
	return stamp{id: uuid.NewString(), occurredAt: time.Now()}
}

func (s stamp) EventID() string       { return s.id }
func (s stamp) OccurredAt() time.Time { return s.occurredAt }

// DocumentCreated is published after a document and its initial movement
// are committed.
type DocumentCreated struct {
	stamp
	DocumentID   int64
	DocumentCode string
	Subject      string
	CreatedBy    int64
}

func (DocumentCreated) EventType() string { return EventTypeDocumentCreated }

func NewDocumentCreatedEvent(documentID int64, documentCode, subject string, createdBy int64) DocumentCreated {
	return DocumentCreated{
		stamp:        newStamp(),
		DocumentID:   documentID,
		DocumentCode: documentCode,
		Subject:      subject,
		CreatedBy:    createdBy,
	}
}

// DocumentMoved carries the transition applied to a document so
// notification fan-out can happen outside the transaction. ToDepartmentID
// is nil when the movement has no destination department.
type DocumentMoved struct {
	stamp
	DocumentID     int64
	DocumentCode   string
	Action         string
	NewStatus      string
	ActorID        int64
	ToDepartmentID *int64
}

func (DocumentMoved) EventType() string { return EventTypeDocumentMoved }

func NewDocumentMovedEvent(documentID int64, documentCode, action, newStatus string, actorID int64, toDepartmentID *int64) DocumentMoved {
	return DocumentMoved{
		stamp:          newStamp(),
		DocumentID:     documentID,
		DocumentCode:   documentCode,
		Action:         action,
		NewStatus:      newStatus,
		ActorID:        actorID,
		ToDepartmentID: toDepartmentID,
	}
}

// AttachmentAdded tells the owning department a file arrived on one of its
// documents.
type AttachmentAdded struct {
	stamp
	DocumentID   int64
	DocumentCode string
	FileName     string
	UploadedBy   int64
	DepartmentID int64
}

func (AttachmentAdded) EventType() string { return EventTypeAttachmentAdded }

func NewAttachmentAddedEvent(documentID int64, documentCode, fileName string, uploadedBy, departmentID int64) AttachmentAdded {
	return AttachmentAdded{
		stamp:        newStamp(),
		DocumentID:   documentID,
		DocumentCode: documentCode,
		FileName:     fileName,
		UploadedBy:   uploadedBy,
		DepartmentID: departmentID,
	}
}

// UserInvited carries the generated credentials to the mail path.
type UserInvited struct {
	stamp
	Email        string
	FullName     string
	TempPassword string
	InvitedBy    int64
}

func (UserInvited) EventType() string { return EventTypeUserInvited }

func NewUserInvitedEvent(email, fullName, tempPassword string, invitedBy int64) UserInvited {
	return UserInvited{
		stamp:        newStamp(),
		Email:        email,
		FullName:     fullName,
		TempPassword: tempPassword,
		InvitedBy:    invitedBy,
	}
}
