package department

// CreateDepartmentDTO is the transport shape for creating a department.
type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DepartmentsResponse struct {
	Departments []*Department `json:"departments"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateDepartmentDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

func (d UpdateDepartmentDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}
