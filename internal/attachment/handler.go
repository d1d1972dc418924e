package attachment

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/sisedoc/document-tracking/internal"
	"github.com/sisedoc/document-tracking/internal/transport"
)

type ServiceAPI interface {
	Upload(user *internal.User, in UploadInput) (*Attachment, error)
	GetForDocument(documentID int64) ([]*Attachment, error)
	Open(id int64) (*Attachment, io.ReadCloser, error)
	Delete(id int64) error
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

// Upload accepts a multipart form with a "file" part and optional
// "description" and "is_main_document" fields.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing session")
		return
	}

	documentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	// one extra MB so an oversized upload reaches the service's own size
	// check and gets the Spanish error instead of a broken connection
	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize+1024*1024)
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		h.HandleServiceError(w, internal.ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	isMain := r.FormValue("is_main_document") == "true"

	var description *string
	if d := r.FormValue("description"); d != "" {
		description = &d
	}

	att, err := h.Service.Upload(user, UploadInput{
		DocumentID:     documentID,
		FileName:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Size:           header.Size,
		Description:    description,
		IsMainDocument: isMain,
		Content:        file,
	})
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, att)
}

func (h *Handler) ListForDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	attachments, err := h.Service.GetForDocument(documentID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attachments": attachments,
	})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "attachmentId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	att, rc, err := h.Service.Open(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+att.FileName+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Error("failed to stream attachment", "id", id, "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "attachmentId"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid attachment id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
