package notification

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/transport"
)

type ServiceAPI interface {
	GetLatest(userID int64) ([]*Notification, error)
	MarkRead(userID, notificationID int64) error
	MarkAllRead(userID int64) error
	Delete(userID, notificationID int64) error
	DeleteRead(userID int64) (int64, error)
	SetupCheck() error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	hub     *Hub
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, hub *Hub) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		hub:         hub,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	notifications, err := h.Service.GetLatest(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.Service.MarkRead(user.ID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := h.Service.MarkAllRead(user.ID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := h.Service.Delete(user.ID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteRead(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	deleted, err := h.Service.DeleteRead(user.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"deleted": deleted,
	})
}

// Setup answers GET /api/setup-notifications: a health probe for the
// notifications table, kept from the original API surface.
func (h *Handler) Setup(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.SetupCheck(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Las notificaciones están configuradas correctamente",
	})
}

// Socket upgrades the authenticated request to a push websocket.
func (h *Handler) Socket(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	ServeWs(h.hub, w, r, user.ID)
}
