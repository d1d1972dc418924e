package stats

import (
	"net/http"
	"strconv"

	"github.com/sisedoc/document-tracking/internal/transport"
)

type ServiceAPI interface {
	BuildReport(days int, departmentID *int64) *Report
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

// Report answers GET /api/stats?days=30&department_id=2.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid days parameter")
			return
		}
		days = parsed
	}

	var departmentID *int64
	if raw := r.URL.Query().Get("department_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid department_id parameter")
			return
		}
		departmentID = &parsed
	}

	h.WriteJSON(w, http.StatusOK, h.Service.BuildReport(days, departmentID))
}
