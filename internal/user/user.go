package user

import (
	"time"

	"github.com/sisedoc/document-tracking/internal"
)

// ManagedUser is the admin-facing view of an account.
type ManagedUser struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email" gorm:"uniqueIndex"`
	FullName       string    `json:"full_name"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	DepartmentID   *int64    `json:"department_id,omitempty"`
	DepartmentName *string   `json:"department_name,omitempty" gorm:"->"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ManagedUser) TableName() string {
	return "users"
}

func ValidRole(role string) bool {
	switch role {
	case internal.RoleUser, internal.RoleOperator, internal.RoleSupervisor, internal.RoleAdmin:
		return true
	}
	return false
}

type RepositoryAPI interface {
	GetAll() ([]*ManagedUser, error)
	GetByID(id int64) (*ManagedUser, error)
	EmailExists(email string) (bool, error)
	Create(u *ManagedUser) error
	UpdateRole(id int64, role string) error
	UpdateDepartment(id int64, departmentID *int64) error
	SetActive(id int64, active bool) error
}
