package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sisedoc/document-tracking/internal"
)

// RoleAuthorization gates admin-only routes. Department-level access rules
// live in the services because they depend on the document being touched.
type RoleAuthorization struct {
	logger *slog.Logger
}

func NewRoleAuthorization(logger *slog.Logger) *RoleAuthorization {
	return &RoleAuthorization{logger: logger}
}

func (ra *RoleAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.IsAdmin() {
				ra.logger.WarnContext(r.Context(), "access denied: admin role required",
					"user_id", user.ID,
					"role", user.Role)
				status, body := internal.ErrAdminRequired.ToHTTPResponse()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				if err := json.NewEncoder(w).Encode(body); err != nil {
					ra.logger.Error("failed to encode error response", "error", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
