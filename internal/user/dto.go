package user

type InviteUserDTO struct {
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

func (d *InviteUserDTO) Validate() error {
	if d.Email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if d.FullName == "" {
		return &ValidationError{Field: "full_name", Message: "full_name is required"}
	}
	if d.Role != "" && !ValidRole(d.Role) {
		return &ValidationError{Field: "role", Message: "invalid role"}
	}
	return nil
}

// UpdateUserDTO carries a partial update; nil fields are left untouched.
type UpdateUserDTO struct {
	Role         *string `json:"role,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (d *UpdateUserDTO) Validate() error {
	if d.Role != nil && !ValidRole(*d.Role) {
		return &ValidationError{Field: "role", Message: "invalid role"}
	}
	return nil
}

type InviteResponseDTO struct {
	User         *ManagedUser `json:"user"`
	TempPassword string       `json:"temp_password"`
}

type UsersResponse struct {
	Users []*ManagedUser `json:"users"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
