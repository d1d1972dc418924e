package postgres

import (
	"gorm.io/gorm"

	"github.com/sisedoc/document-tracking/internal/notification"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) GetLatest(userID int64, limit int) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepository) Create(n *notification.Notification) error {
	return r.db.Create(n).Error
}

func (r *NotificationRepository) MarkRead(userID, notificationID int64) error {
	return r.db.Model(&notification.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(userID int64) error {
	return r.db.Model(&notification.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *NotificationRepository) Delete(userID, notificationID int64) error {
	return r.db.Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&notification.Notification{}).Error
}

func (r *NotificationRepository) DeleteRead(userID int64) (int64, error) {
	result := r.db.Where("user_id = ? AND is_read = ?", userID, true).
		Delete(&notification.Notification{})
	return result.RowsAffected, result.Error
}

func (r *NotificationRepository) UsersInDepartment(departmentID int64) ([]int64, error) {
	var userIDs []int64
	err := r.db.Table("users").
		Where("department_id = ? AND is_active = true", departmentID).
		Pluck("id", &userIDs).Error
	return userIDs, err
}

// Ping runs the cheapest possible query against the notifications table so
// the setup endpoint can tell whether it exists.
func (r *NotificationRepository) Ping() error {
	var count int64
	return r.db.Model(&notification.Notification{}).Limit(1).Count(&count).Error
}
