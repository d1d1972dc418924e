package department

import (
	"log/slog"

	"github.com/sisedoc/document-tracking/internal"
)

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetAllDepartments() ([]*Department, error) {
	departments, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to get departments from repository", "error", err)
		return nil, internal.NewInternalError("no se pudieron obtener los departamentos", err)
	}
	return departments, nil
}

func (s *Service) GetDepartment(id int64) (*Department, error) {
	dept, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get department", "id", id, "error", err)
		return nil, internal.NewInternalError("no se pudo obtener el departamento", err)
	}
	if dept == nil {
		return nil, internal.ErrDepartmentNotFound
	}
	return dept, nil
}

func (s *Service) CreateDepartment(dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	dept := &Department{
		Name:        dto.Name,
		Description: dto.Description,
	}
	if err := s.repo.Create(dept); err != nil {
		s.logger.Error("failed to create department", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("no se pudo crear el departamento", err)
	}

	s.logger.Info("department created", "id", dept.ID, "name", dept.Name)
	return dept, nil
}

func (s *Service) UpdateDepartment(id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	dept, err := s.GetDepartment(id)
	if err != nil {
		return nil, err
	}

	dept.Name = dto.Name
	dept.Description = dto.Description
	if err := s.repo.Update(dept); err != nil {
		s.logger.Error("failed to update department", "id", id, "error", err)
		return nil, internal.NewInternalError("no se pudo actualizar el departamento", err)
	}

	return dept, nil
}

// DeleteDepartment removes a department only when no users or documents
// reference it.
func (s *Service) DeleteDepartment(id int64) error {
	if _, err := s.GetDepartment(id); err != nil {
		return err
	}

	refs, err := s.repo.CountReferences(id)
	if err != nil {
		s.logger.Error("failed to count department references", "id", id, "error", err)
		return internal.NewInternalError("no se pudo eliminar el departamento", err)
	}
	if refs > 0 {
		return internal.ErrDepartmentInUse
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "id", id, "error", err)
		return internal.NewInternalError("no se pudo eliminar el departamento", err)
	}

	s.logger.Info("department deleted", "id", id)
	return nil
}
