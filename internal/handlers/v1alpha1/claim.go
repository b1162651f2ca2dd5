package v1alpha1

import (
	"net/http"
	"strconv"

	api "github.com/dandori-work/fcfs-booking/api/v1alpha1"
	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/handlers/validator"
	"github.com/dandori-work/fcfs-booking/internal/service"
	srvMappers "github.com/dandori-work/fcfs-booking/internal/service/mappers"
	"github.com/dandori-work/fcfs-booking/pkg/metrics"
	"github.com/google/uuid"
)

const (
	defaultAlternativesDays = 3
	maxAlternativesDays     = 30
)

// (POST /api/v1/claims)
func (s *ServiceHandler) Claim(w http.ResponseWriter, r *http.Request) {
	var body api.ClaimRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "malformed request body")
		return
	}

	v := validator.NewValidator()
	if err := v.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	identity := auth.MustHaveIdentity(r.Context())
	form := srvMappers.ClaimFormFromApi(identity, &body)

	slot, claim, err := s.claimSrv.Claim(r.Context(), form)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			metrics.IncreaseClaimAttemptsMetric(metrics.ClaimResultNotFound)
		case *service.ErrSlotAlreadyClaimed:
			metrics.IncreaseClaimAttemptsMetric(metrics.ClaimResultConflict)
		default:
			metrics.IncreaseClaimAttemptsMetric(metrics.ClaimResultError)
		}
		writeServiceError(w, err)
		return
	}

	metrics.IncreaseClaimAttemptsMetric(metrics.ClaimResultWon)
	writeJSON(w, http.StatusOK, srvMappers.ClaimResponseToApi(*slot, *claim))
}

// (POST /api/v1/cancel-claim)
func (s *ServiceHandler) CancelClaim(w http.ResponseWriter, r *http.Request) {
	var body api.CancelClaimRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "malformed request body")
		return
	}

	v := validator.NewValidator()
	v.Register(validator.NewCancelValidationRules()...)
	if err := v.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return
	}

	slot, err := s.claimSrv.Cancel(r.Context(), srvMappers.CancelFormFromApi(&body))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.CancelClaimResponse{Slot: srvMappers.SlotToApi(*slot)})
}

// (GET /api/v1/alternatives?slotId=...&days=1..30)
func (s *ServiceHandler) Alternatives(w http.ResponseWriter, r *http.Request) {
	slotID, err := uuid.Parse(r.URL.Query().Get("slotId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "slotId must be a uuid")
		return
	}

	days := defaultAlternativesDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxAlternativesDays {
			writeError(w, http.StatusBadRequest, CodeValidation, "days must be between 1 and 30")
			return
		}
	}

	slots, err := s.claimSrv.Alternatives(r.Context(), slotID, days)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, srvMappers.AlternativesToApi(slots))
}
