package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeStorage      ErrorType = "STORAGE_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAction      ErrorCode = "INVALID_ACTION"
	ErrCodeMissingDestination ErrorCode = "MISSING_DESTINATION"
	ErrCodeMissingFields      ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidCode        ErrorCode = "INVALID_DOCUMENT_CODE"

	ErrCodeDocumentNotFound   ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeDepartmentNotFound ErrorCode = "DEPARTMENT_NOT_FOUND"
	ErrCodeDepartmentInUse    ErrorCode = "DEPARTMENT_IN_USE"
	ErrCodeNotInDepartment    ErrorCode = "NOT_IN_DEPARTMENT"

	ErrCodeAttachmentNotFound ErrorCode = "ATTACHMENT_NOT_FOUND"
	ErrCodeFileTooLarge       ErrorCode = "FILE_TOO_LARGE"
	ErrCodeFileTypeNotAllowed ErrorCode = "FILE_TYPE_NOT_ALLOWED"
	ErrCodeBucketMissing      ErrorCode = "STORAGE_BUCKET_MISSING"
	ErrCodeStorageForbidden   ErrorCode = "STORAGE_FORBIDDEN"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserExists         ErrorCode = "USER_EXISTS"
	ErrCodeAdminRequired      ErrorCode = "ADMIN_REQUIRED"
)

// AppError carries both the machine-readable code and the message shown to
// the user. Domain messages are in Spanish, matching what the frontend
// surfaces in toasts.
type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewStorageError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeStorage,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrDocumentNotFound = NewNotFoundError("Documento no encontrado", ErrCodeDocumentNotFound)
	ErrInvalidAction    = NewValidationError("Acción no válida", ErrCodeInvalidAction)
	ErrMissingDestination = NewValidationError(
		"Por favor selecciona un departamento destino", ErrCodeMissingDestination)
	ErrMissingFields = NewValidationError("Faltan datos requeridos", ErrCodeMissingFields)
	ErrNotInDepartment = NewForbiddenError(
		"Solo los usuarios del departamento actual pueden derivar o procesar este documento",
		ErrCodeNotInDepartment)

	ErrDepartmentNotFound = NewNotFoundError("Departamento no encontrado", ErrCodeDepartmentNotFound)
	ErrDepartmentInUse    = NewConflictError(
		"No se puede eliminar el departamento porque tiene documentos o usuarios asociados",
		ErrCodeDepartmentInUse)

	ErrAttachmentNotFound = NewNotFoundError("No se pudo encontrar el archivo", ErrCodeAttachmentNotFound)
	ErrFileTooLarge       = NewValidationError(
		"El archivo excede el tamaño máximo permitido (5MB)", ErrCodeFileTooLarge)
	ErrFileTypeNotAllowed = NewValidationError(
		"Tipo de archivo no permitido. Solo se permiten PDF, Word y Excel", ErrCodeFileTypeNotAllowed)

	ErrInvalidCredentials = NewUnauthorizedError("Credenciales inválidas", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Token inválido", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("El token ha expirado", ErrCodeTokenExpired)
	ErrUserNotFound       = NewNotFoundError("Usuario no encontrado", ErrCodeUserNotFound)
	ErrUserExists         = NewConflictError("El usuario con este correo ya existe.", ErrCodeUserExists)
	ErrAdminRequired      = NewForbiddenError("Se requieren permisos de administrador", ErrCodeAdminRequired)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// TranslateStorageError maps raw backend/storage failures onto guidance
// messages the user can act on. Matching is on message substrings because
// that is all the upstream errors expose.
func TranslateStorageError(err error) *AppError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "does not exist"):
		return NewStorageError(
			"La funcionalidad de archivos adjuntos aún no está disponible. Por favor, contacta al administrador.",
			ErrCodeBucketMissing, err)
	case strings.Contains(msg, "Bucket not found") || strings.Contains(msg, "no such file or directory"):
		return NewStorageError(
			"El almacenamiento para archivos no está configurado. El administrador debe crear el bucket 'attachments'.",
			ErrCodeBucketMissing, err)
	case strings.Contains(msg, "row-level security policy") || strings.Contains(msg, "permission denied"):
		return NewStorageError(
			"No tienes permisos para subir archivos. El administrador debe configurar las políticas de seguridad del almacenamiento.",
			ErrCodeStorageForbidden, err)
	}
	return NewStorageError(
		"Error al subir el archivo. Asegúrate de que el archivo no exceda los 5MB y sea de un formato permitido (PDF, Word, Excel).",
		"STORAGE_UPLOAD_FAILED", err)
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
