package postgres

import (
	"gorm.io/gorm"

	"github.com/sisedoc/document-tracking/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) GetAll() ([]*department.Department, error) {
	var departments []*department.Department
	err := r.db.Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var dept department.Department
	err := r.db.Where("id = ?", id).First(&dept).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dept, nil
}

func (r *DepartmentRepository) Create(dept *department.Department) error {
	return r.db.Create(dept).Error
}

func (r *DepartmentRepository) Update(dept *department.Department) error {
	return r.db.Save(dept).Error
}

func (r *DepartmentRepository) Delete(id int64) error {
	return r.db.Delete(&department.Department{}, id).Error
}

// CountReferences returns how many users and documents point at the
// department. Deletion is refused while this is non-zero.
func (r *DepartmentRepository) CountReferences(id int64) (int64, error) {
	var userCount int64
	if err := r.db.Table("users").Where("department_id = ?", id).Count(&userCount).Error; err != nil {
		return 0, err
	}

	var docCount int64
	if err := r.db.Table("documents").Where("current_department_id = ?", id).Count(&docCount).Error; err != nil {
		return 0, err
	}

	return userCount + docCount, nil
}
