package document

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/transport"
)

type ServiceAPI interface {
	CreateDocument(user *internal.User, dto CreateDocumentDTO) (*Document, error)
	RecordMovement(user *internal.User, dto RecordMovementDTO) (*Movement, error)
	GetByCode(code string) (*Document, error)
	GetByID(id int64) (*Document, error)
	GetMovements(documentID int64) ([]*MovementDetail, error)
	ListDocuments(q ListDocumentsQuery) (*DocumentsResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var dto CreateDocumentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, err := h.Service.CreateDocument(user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, doc)
}

// RecordMovement keeps the original endpoint shape: POST /api/documents/movement
// with a camelCase body.
func (h *Handler) RecordMovement(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	var dto RecordMovementDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.ErrMissingFields)
		return
	}

	mv, err := h.Service.RecordMovement(user, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, mv)
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) GetDocumentByCode(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	doc, err := h.Service.GetByCode(code)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, doc)
}

func (h *Handler) GetMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	movements, err := h.Service.GetMovements(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MovementsResponse{Movements: movements})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := ListDocumentsQuery{
		Status: r.URL.Query().Get("status"),
	}

	if v := r.URL.Query().Get("department_id"); v != "" {
		deptID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid department_id")
			return
		}
		q.DepartmentID = &deptID
	}
	if v := r.URL.Query().Get("page"); v != "" {
		q.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		q.PerPage, _ = strconv.Atoi(v)
	}

	resp, err := h.Service.ListDocuments(q)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
