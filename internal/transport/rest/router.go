package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/sisedoc/document-tracking/internal/attachment"
	"github.com/sisedoc/document-tracking/internal/auth"
	"github.com/sisedoc/document-tracking/internal/department"
	"github.com/sisedoc/document-tracking/internal/document"
	"github.com/sisedoc/document-tracking/internal/notification"
	"github.com/sisedoc/document-tracking/internal/stats"
	"github.com/sisedoc/document-tracking/internal/transport/middleware"
	"github.com/sisedoc/document-tracking/internal/transport/swagger"
	"github.com/sisedoc/document-tracking/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	RBAC         *auth.RoleAuthorization
	User         *user.Handler
	Department   *department.Handler
	Document     *document.Handler
	Attachment   *attachment.Handler
	Notification *notification.Handler
	Stats        *stats.Handler
}

// RegisterAllRoutes mounts the full API surface. The movement endpoint and
// the notification setup probe keep their original paths.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/ping", healthHandler.pingHandler)
	router.Get("/health", healthHandler.healthCheckHandler)

	router.Route("/api", func(r chi.Router) {
		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Department != nil {
				pr.Get("/departments", h.Department.GetDepartments)
				pr.Get("/departments/{id}", h.Department.GetDepartment)
			}

			if h.Document != nil {
				pr.Route("/documents", func(dr chi.Router) {
					dr.Post("/", h.Document.CreateDocument)
					dr.Get("/", h.Document.ListDocuments)
					dr.Post("/movement", h.Document.RecordMovement)
					dr.Get("/code/{code}", h.Document.GetDocumentByCode)
					dr.Get("/{id}", h.Document.GetDocument)
					dr.Get("/{id}/movements", h.Document.GetMovements)

					if h.Attachment != nil {
						dr.Post("/{id}/attachments", h.Attachment.Upload)
						dr.Get("/{id}/attachments", h.Attachment.ListForDocument)
					}
				})
			}

			if h.Attachment != nil {
				pr.Get("/attachments/{attachmentId}/download", h.Attachment.Download)
				pr.Delete("/attachments/{attachmentId}", h.Attachment.Delete)
			}

			if h.Notification != nil {
				pr.Get("/setup-notifications", h.Notification.Setup)
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.List)
					nr.Get("/ws", h.Notification.Socket)
					nr.Patch("/read-all", h.Notification.MarkAllRead)
					nr.Delete("/read", h.Notification.DeleteRead)
					nr.Patch("/{id}/read", h.Notification.MarkRead)
					nr.Delete("/{id}", h.Notification.Delete)
				})
			}

			if h.Stats != nil {
				pr.Get("/stats", h.Stats.Report)
			}

			if h.RBAC != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(h.RBAC.RequireAdmin())

					if h.Department != nil {
						ar.Post("/departments", h.Department.CreateDepartment)
						ar.Put("/departments/{id}", h.Department.UpdateDepartment)
						ar.Delete("/departments/{id}", h.Department.DeleteDepartment)
					}

					if h.User != nil {
						ar.Get("/users", h.User.List)
						ar.Patch("/users/{id}", h.User.Update)
						ar.Post("/users/invite", h.User.Invite)
					}
				})
			}
		})
	})
}
