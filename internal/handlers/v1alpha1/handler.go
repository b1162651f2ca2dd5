package v1alpha1

import (
	"encoding/json"
	"net/http"

	api "github.com/dandori-work/fcfs-booking/api/v1alpha1"
	"github.com/dandori-work/fcfs-booking/internal/service"
	"go.uber.org/zap"
)

// Error codes surfaced to callers. Every body written by writeError is
// {code, message}.
const (
	CodeValidation       = "VALIDATION"
	CodeNotFound         = "NOT_FOUND"
	CodeAlreadyClaimed   = "ALREADY_CLAIMED"
	CodeSlotNotClaimed   = "SLOT_NOT_CLAIMED"
	CodeAlreadyCancelled = "ALREADY_CANCELLED"
	CodeAlreadyCompleted = "ALREADY_COMPLETED"
	CodeCancelFailed     = "CANCEL_FAILED"
	CodeNotRequeueable   = "NOT_REQUEUEABLE"
	CodeInternal         = "INTERNAL"
)

type ServiceHandler struct {
	claimSrv  *service.ClaimService
	outboxSrv *service.OutboxService
	auditSrv  *service.AuditService
	healthSrv *service.HealthService
}

func NewServiceHandler(
	claimService *service.ClaimService,
	outboxService *service.OutboxService,
	auditService *service.AuditService,
	healthService *service.HealthService,
) *ServiceHandler {
	return &ServiceHandler{
		claimSrv:  claimService,
		outboxSrv: outboxService,
		auditSrv:  auditService,
		healthSrv: healthService,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.S().Named("handlers").Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, api.Error{Code: code, Message: message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses. No
// stack traces or driver errors cross the boundary.
func writeServiceError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *service.ErrResourceNotFound:
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case *service.ErrSlotAlreadyClaimed:
		writeError(w, http.StatusConflict, CodeAlreadyClaimed, err.Error())
	case *service.ErrSlotNotClaimed:
		writeError(w, http.StatusConflict, CodeSlotNotClaimed, err.Error())
	case *service.ErrSlotAlreadyCancelled:
		writeError(w, http.StatusConflict, CodeAlreadyCancelled, err.Error())
	case *service.ErrSlotAlreadyCompleted:
		writeError(w, http.StatusConflict, CodeAlreadyCompleted, err.Error())
	case *service.ErrCancelFailed:
		writeError(w, http.StatusConflict, CodeCancelFailed, err.Error())
	case *service.ErrOutboxEventNotRequeueable:
		writeError(w, http.StatusConflict, CodeNotRequeueable, err.Error())
	default:
		zap.S().Named("handlers").Errorw("internal error", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

// decodeBody parses a JSON request body, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
