package mappers

import (
	"encoding/json"
	"time"

	api "github.com/dandori-work/fcfs-booking/api/v1alpha1"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
)

const workDateLayout = "2006-01-02"

func SlotToApi(s model.JobSlot) api.SlotView {
	view := api.SlotView{
		ID:           s.ID,
		Status:       s.Status,
		WorkDate:     s.WorkDate.Format(workDateLayout),
		CancelReason: s.CancelReason,
	}
	if s.CancelledAt != nil {
		cancelledAt := s.CancelledAt.UTC().Format(time.RFC3339)
		view.CancelledAt = &cancelledAt
	}
	return view
}

func ClaimToApi(c model.Claim) api.ClaimView {
	return api.ClaimView{
		ID:        c.ID,
		CompanyID: c.CompanyID,
		UserID:    c.UserID,
		ClaimedAt: c.ClaimedAt.UTC().Format(time.RFC3339),
	}
}

func ClaimResponseToApi(slot model.JobSlot, claim model.Claim) api.ClaimResponse {
	return api.ClaimResponse{
		Slot:  SlotToApi(slot),
		Claim: ClaimToApi(claim),
	}
}

func AlternativesToApi(slots []model.JobSlot) api.AlternativesResponse {
	alternatives := make([]api.AlternativeSlot, 0, len(slots))
	for _, s := range slots {
		alternatives = append(alternatives, api.AlternativeSlot{
			SlotID:   s.ID,
			WorkDate: s.WorkDate.Format(workDateLayout),
			JobPost: api.JobPostRef{
				ID:    s.JobPost.ID,
				Title: s.JobPost.Title,
				Trade: s.JobPost.Trade,
			},
		})
	}
	return api.AlternativesResponse{Alternatives: alternatives}
}

func OutboxEventToApi(e model.OutboxEvent) api.OutboxEventView {
	view := api.OutboxEventView{
		ID:            e.ID,
		EventID:       e.EventID,
		EventName:     e.EventName,
		Target:        e.Target,
		Status:        e.Status,
		RetryCount:    e.RetryCount,
		NextAttemptAt: e.NextAttemptAt.UTC().Format(time.RFC3339),
		CreatedAt:     e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.LastError != nil {
		view.LastError = *e.LastError
	}
	return view
}

func OutboxEventListToApi(events []model.OutboxEvent) api.OutboxEventList {
	views := make([]api.OutboxEventView, 0, len(events))
	for _, e := range events {
		views = append(views, OutboxEventToApi(e))
	}
	return api.OutboxEventList{Events: views}
}

func AuditLogToApi(entry model.AuditLog) api.AuditLogView {
	view := api.AuditLogView{
		ID:          entry.ID,
		ActorUserID: entry.ActorUserID,
		ActorRole:   entry.ActorRole,
		Action:      entry.Action,
		TargetTable: entry.TargetTable,
		TargetID:    entry.TargetID,
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(entry.Payload) > 0 {
		payload := map[string]any{}
		if err := json.Unmarshal(entry.Payload, &payload); err == nil {
			view.Payload = payload
		}
	}
	return view
}

func AuditLogListToApi(entries []model.AuditLog) api.AuditLogList {
	views := make([]api.AuditLogView, 0, len(entries))
	for _, e := range entries {
		views = append(views, AuditLogToApi(e))
	}
	return api.AuditLogList{Entries: views}
}
