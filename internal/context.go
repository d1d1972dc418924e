package internal

import (
	"context"
	"time"
)

// Roles are plain strings with no enforced hierarchy; only admin gates
// anything server-side.
const (
	RoleUser       = "user"
	RoleOperator   = "operator"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// User is the authenticated session passed explicitly through request
// context. Handlers and services receive it instead of reading any
// process-wide session state.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Role         string `json:"role"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BelongsTo reports whether the user is affiliated with the department.
func (u *User) BelongsTo(departmentID int64) bool {
	return u.DepartmentID != nil && *u.DepartmentID == departmentID
}

type ctxKey string

const ContextUserKey ctxKey = "user"

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if
// duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
