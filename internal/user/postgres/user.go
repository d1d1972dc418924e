package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sisedoc/document-tracking/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*user.ManagedUser, error) {
	var users []*user.ManagedUser
	err := r.db.Table("users AS u").
		Select("u.*, d.name AS department_name").
		Joins("LEFT JOIN departments d ON d.id = u.department_id").
		Order("u.full_name ASC").
		Scan(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(id int64) (*user.ManagedUser, error) {
	var u user.ManagedUser
	err := r.db.Table("users AS u").
		Select("u.*, d.name AS department_name").
		Joins("LEFT JOIN departments d ON d.id = u.department_id").
		Where("u.id = ?", id).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&user.ManagedUser{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Create(u *user.ManagedUser) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) UpdateRole(id int64, role string) error {
	return r.db.Model(&user.ManagedUser{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *UserRepository) UpdateDepartment(id int64, departmentID *int64) error {
	return r.db.Model(&user.ManagedUser{}).
		Where("id = ?", id).
		Update("department_id", departmentID).Error
}

func (r *UserRepository) SetActive(id int64, active bool) error {
	return r.db.Model(&user.ManagedUser{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
