package document

// CreateDocumentDTO is the transport shape for registering a document.
type CreateDocumentDTO struct {
	Subject      string `json:"subject"`
	Description  string `json:"description"`
	DepartmentID int64  `json:"department_id"`
}

// RecordMovementDTO mirrors the original movement endpoint body. Field names
// keep the frontend's camelCase.
type RecordMovementDTO struct {
	DocumentID       int64  `json:"documentId"`
	FromDepartmentID *int64 `json:"fromDepartmentId,omitempty"`
	ToDepartmentID   *int64 `json:"toDepartmentId,omitempty"`
	Action           string `json:"action"`
	Notes            string `json:"notes"`
}

type ListDocumentsQuery struct {
	Status       string
	DepartmentID *int64
	Page         int
	PerPage      int
}

type DocumentsResponse struct {
	Documents []*Document `json:"documents"`
	Total     int64       `json:"total"`
	Page      int         `json:"page"`
	PerPage   int         `json:"per_page"`
}

type MovementsResponse struct {
	Movements []*MovementDetail `json:"movements"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d CreateDocumentDTO) Validate() error {
	if d.Subject == "" {
		return ValidationError{Msg: "subject is required"}
	}
	if d.DepartmentID == 0 {
		return ValidationError{Msg: "department_id is required"}
	}
	return nil
}
