package service

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
)

const eventVersion = "1.0"

// EventProducer names this system in outbox envelopes delivered to receivers.
const EventProducer = "fcfs-booking"

type eventEnvelope struct {
	Event      string    `json:"event"`
	Version    string    `json:"version"`
	ID         string    `json:"id"`
	OccurredAt string    `json:"occurred_at"`
	Producer   string    `json:"producer"`
	Data       eventData `json:"data"`
}

type eventData struct {
	DwProjectID *string      `json:"dw_project_id"`
	JobPost     eventJobPost `json:"job_post"`
	Slot        eventSlot    `json:"slot"`
	Claim       *eventClaim  `json:"claim,omitempty"`
	Cancel      *eventCancel `json:"cancel,omitempty"`
	TenantID    uuid.UUID    `json:"tenant_id"`
}

type eventJobPost struct {
	ID       uuid.UUID `json:"id"`
	WorkDate string    `json:"work_date"`
}

type eventSlot struct {
	SlotID uuid.UUID `json:"slot_id"`
	Status string    `json:"status"`
}

type eventClaim struct {
	ClaimID   uuid.UUID  `json:"claim_id"`
	CompanyID uuid.UUID  `json:"company_id"`
	UserID    *uuid.UUID `json:"user_id"`
	ClaimedAt string     `json:"claimed_at"`
}

type eventCancel struct {
	CancelReason string `json:"cancel_reason"`
	CancelledAt  string `json:"cancelled_at"`
}

// newEventID builds a globally unique event id from the slot id prefix, the
// timestamp and a random suffix. The slot id prefix keeps related events
// greppable in receiver logs.
func newEventID(slotID uuid.UUID, now time.Time) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("evt_%s_%d_%s", slotID.String()[:8], now.UnixNano(), hex.EncodeToString(suffix))
}

func claimConfirmedEvent(tenantID uuid.UUID, slot *model.JobSlot, claim *model.Claim, now time.Time) (string, []byte, error) {
	envelope := eventEnvelope{
		Event:      model.EventClaimConfirmed,
		Version:    eventVersion,
		ID:         newEventID(slot.ID, now),
		OccurredAt: now.Format(time.RFC3339),
		Producer:   EventProducer,
		Data: eventData{
			DwProjectID: slot.JobPost.Project.DwProjectID,
			JobPost: eventJobPost{
				ID:       slot.JobPostID,
				WorkDate: slot.WorkDate.Format("2006-01-02"),
			},
			Slot: eventSlot{
				SlotID: slot.ID,
				Status: model.SlotStatusClaimed,
			},
			Claim: &eventClaim{
				ClaimID:   claim.ID,
				CompanyID: claim.CompanyID,
				UserID:    claim.UserID,
				ClaimedAt: claim.ClaimedAt.UTC().Format(time.RFC3339),
			},
			TenantID: tenantID,
		},
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", nil, err
	}
	return envelope.ID, payload, nil
}

func claimCancelledEvent(tenantID uuid.UUID, slot *model.JobSlot, claim *model.Claim, now time.Time) (string, []byte, error) {
	envelope := eventEnvelope{
		Event:      model.EventClaimCancelled,
		Version:    eventVersion,
		ID:         newEventID(slot.ID, now),
		OccurredAt: now.Format(time.RFC3339),
		Producer:   EventProducer,
		Data: eventData{
			DwProjectID: slot.JobPost.Project.DwProjectID,
			JobPost: eventJobPost{
				ID:       slot.JobPostID,
				WorkDate: slot.WorkDate.Format("2006-01-02"),
			},
			Slot: eventSlot{
				SlotID: slot.ID,
				Status: model.SlotStatusCancelled,
			},
			TenantID: tenantID,
		},
	}
	if claim != nil {
		envelope.Data.Claim = &eventClaim{
			ClaimID:   claim.ID,
			CompanyID: claim.CompanyID,
			UserID:    claim.UserID,
			ClaimedAt: claim.ClaimedAt.UTC().Format(time.RFC3339),
		}
	}
	if slot.CancelReason != nil && slot.CancelledAt != nil {
		envelope.Data.Cancel = &eventCancel{
			CancelReason: *slot.CancelReason,
			CancelledAt:  slot.CancelledAt.UTC().Format(time.RFC3339),
		}
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return "", nil, err
	}
	return envelope.ID, payload, nil
}
