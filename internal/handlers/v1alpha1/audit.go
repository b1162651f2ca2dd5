package v1alpha1

import (
	"net/http"
	"strconv"

	srvMappers "github.com/dandori-work/fcfs-booking/internal/service/mappers"
)

const (
	defaultAuditListLimit = 50
	maxAuditListLimit     = 500
)

// (GET /api/v1/audit-logs?limit=...&offset=...)
func (s *ServiceHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxAuditListLimit {
			writeError(w, http.StatusBadRequest, CodeValidation, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, CodeValidation, "offset must be a non-negative integer")
			return
		}
		offset = parsed
	}

	entries, err := s.auditSrv.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, srvMappers.AuditLogListToApi(entries))
}
