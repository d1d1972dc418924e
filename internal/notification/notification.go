package notification

import "time"

// Notification is a per-user inbox entry. The websocket hub only pushes a
// refetch signal, the row here is the source of truth.
type Notification struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	DocumentID *int64    `json:"document_id,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

const (
	TypeMovement   = "movement"
	TypeAttachment = "attachment"
	TypeSystem     = "system"
)

// latestLimit caps the inbox view, older entries stay in the table but are
// not returned.
const latestLimit = 20

type RepositoryAPI interface {
	GetLatest(userID int64, limit int) ([]*Notification, error)
	Create(n *Notification) error
	MarkRead(userID, notificationID int64) error
	MarkAllRead(userID int64) error
	Delete(userID, notificationID int64) error
	DeleteRead(userID int64) (int64, error)
	UsersInDepartment(departmentID int64) ([]int64, error)
	Ping() error
}
