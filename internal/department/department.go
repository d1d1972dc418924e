package department

import "time"

// Department is an organizational unit that documents move between.
type Department struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

type RepositoryAPI interface {
	GetAll() ([]*Department, error)
	GetByID(id int64) (*Department, error)
	Create(dept *Department) error
	Update(dept *Department) error
	Delete(id int64) error
	CountReferences(id int64) (int64, error)
}
