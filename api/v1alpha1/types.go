package v1alpha1

import (
	"github.com/google/uuid"
)

// ClaimRequest is the body of POST /api/v1/claims.
type ClaimRequest struct {
	SlotID    uuid.UUID `json:"slotId" validate:"required"`
	CompanyID uuid.UUID `json:"companyId" validate:"required"`
	RequestID string    `json:"requestId" validate:"required,uuid4"`
}

// ClaimResponse is returned on a successful claim and on idempotent replays.
type ClaimResponse struct {
	Slot  SlotView  `json:"slot"`
	Claim ClaimView `json:"claim"`
}

type SlotView struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	WorkDate     string    `json:"work_date"`
	CancelledAt  *string   `json:"canceled_at,omitempty"`
	CancelReason *string   `json:"cancel_reason,omitempty"`
}

type ClaimView struct {
	ID        uuid.UUID  `json:"id"`
	CompanyID uuid.UUID  `json:"company_id"`
	UserID    *uuid.UUID `json:"user_id"`
	ClaimedAt string     `json:"claimed_at"`
}

// CancelClaimRequest is the body of POST /api/v1/cancel-claim.
type CancelClaimRequest struct {
	SlotID uuid.UUID `json:"slotId" validate:"required"`
	Reason string    `json:"reason" validate:"required,cancel_reason"`
}

type CancelClaimResponse struct {
	Slot SlotView `json:"slot"`
}

type AlternativesResponse struct {
	Alternatives []AlternativeSlot `json:"alternatives"`
}

type AlternativeSlot struct {
	SlotID   uuid.UUID  `json:"slot_id"`
	WorkDate string     `json:"work_date"`
	JobPost  JobPostRef `json:"job_post"`
}

type JobPostRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Trade string    `json:"trade"`
}

// Error is the error body of the claim, cancel, alternatives, outbox and
// audit handlers. The authenticators answer 401 with a plain-text body, and
// the health check answers 503 with a Health body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type OutboxEventView struct {
	ID            int64  `json:"id"`
	EventID       string `json:"event_id"`
	EventName     string `json:"event_name"`
	Target        string `json:"target"`
	Status        string `json:"status"`
	RetryCount    int    `json:"retry_count"`
	NextAttemptAt string `json:"next_attempt_at"`
	LastError     string `json:"last_error,omitempty"`
	CreatedAt     string `json:"created_at"`
}

type OutboxEventList struct {
	Events []OutboxEventView `json:"events"`
}

type AuditLogView struct {
	ID          int64          `json:"id"`
	ActorUserID *uuid.UUID     `json:"actor_user_id"`
	ActorRole   string         `json:"actor_role"`
	Action      string         `json:"action"`
	TargetTable string         `json:"target_table"`
	TargetID    string         `json:"target_id"`
	Payload     map[string]any `json:"payload"`
	CreatedAt   string         `json:"created_at"`
}

type AuditLogList struct {
	Entries []AuditLogView `json:"entries"`
}

type Health struct {
	Status string `json:"status"`
}
