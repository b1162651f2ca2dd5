package v1alpha1

import (
	"net/http"
	"strconv"

	srvMappers "github.com/dandori-work/fcfs-booking/internal/service/mappers"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/go-chi/chi/v5"
)

const (
	defaultOutboxListLimit = 50
	maxOutboxListLimit     = 500
)

// (GET /api/v1/outbox-events?status=...&limit=...)
func (s *ServiceHandler) ListOutboxEvents(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", model.OutboxStatusPending, model.OutboxStatusSent, model.OutboxStatusFailed:
	default:
		writeError(w, http.StatusBadRequest, CodeValidation, "status must be one of pending, sent, failed")
		return
	}

	limit := defaultOutboxListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxOutboxListLimit {
			writeError(w, http.StatusBadRequest, CodeValidation, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	events, err := s.outboxSrv.List(r.Context(), status, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, srvMappers.OutboxEventListToApi(events))
}

// (POST /api/v1/outbox-events/{id}/requeue)
func (s *ServiceHandler) RequeueOutboxEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "id must be an integer")
		return
	}

	event, err := s.outboxSrv.Requeue(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, srvMappers.OutboxEventToApi(*event))
}
