package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/service/mappers"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// alternativesLimit caps the alternatives result set.
const alternativesLimit = 3

type ClaimService struct {
	store  store.Store
	target string
}

func NewClaimService(store store.Store, target string) *ClaimService {
	return &ClaimService{store: store, target: target}
}

// Claim performs the first-come-first-served transition available -> claimed.
// Under N concurrent callers on the same slot exactly one succeeds; the rest
// observe ErrSlotAlreadyClaimed. A repeated request id replays the original
// result without writing anything.
func (s *ClaimService) Claim(ctx context.Context, form mappers.ClaimForm) (*model.JobSlot, *model.Claim, error) {
	identity := auth.MustHaveIdentity(ctx)

	ctx, err := s.store.NewTransactionContext(ctx, identity.TenantID)
	if err != nil {
		return nil, nil, err
	}

	// replay probe: a request id seen before returns the stored result
	existing, err := s.store.Claim().GetByRequestID(ctx, form.RequestID)
	if err == nil {
		slot, err := s.store.Slot().Get(ctx, existing.SlotID)
		if err != nil {
			_, _ = store.Rollback(ctx)
			return nil, nil, err
		}
		if _, err := store.Commit(ctx); err != nil {
			return nil, nil, err
		}
		zap.S().Named("claim").Debugw("request replayed", "request_id", form.RequestID, "claim_id", existing.ID)
		return slot, existing, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		_, _ = store.Rollback(ctx)
		return nil, nil, err
	}

	now := time.Now().UTC()
	if _, err := s.store.Slot().ClaimAvailable(ctx, form.SlotID, form.CompanyID, form.UserID, now); err != nil {
		if errors.Is(err, store.ErrNoRowsUpdated) {
			return nil, nil, s.classifyLostClaim(ctx, form.SlotID)
		}
		_, _ = store.Rollback(ctx)
		return nil, nil, err
	}

	// re-read inside the transaction to pick up the job post and project
	slot, err := s.store.Slot().Get(ctx, form.SlotID)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, nil, err
	}

	claim := model.Claim{
		ID:        uuid.New(),
		SlotID:    form.SlotID,
		CompanyID: form.CompanyID,
		UserID:    form.UserID,
		RequestID: form.RequestID,
		ClaimedAt: now,
	}
	created, err := s.store.Claim().Create(ctx, claim)
	if err != nil {
		rbCtx, _ := store.Rollback(ctx)
		if errors.Is(err, store.ErrDuplicateKey) {
			return s.resolveDuplicateClaim(rbCtx, identity.TenantID, form)
		}
		return nil, nil, err
	}

	eventID, payload, err := claimConfirmedEvent(identity.TenantID, slot, created, now)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, nil, err
	}
	if _, err := s.store.Outbox().Enqueue(ctx, model.OutboxEvent{
		EventID:   eventID,
		EventName: model.EventClaimConfirmed,
		Payload:   payload,
		Target:    s.target,
	}); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, nil, err
	}

	auditPayload, _ := json.Marshal(map[string]any{
		"previous_status": model.SlotStatusAvailable,
		"new_status":      model.SlotStatusClaimed,
		"company_id":      form.CompanyID,
		"request_id":      form.RequestID,
	})
	if err := s.store.Audit().Append(ctx, model.AuditLog{
		ActorUserID: identity.UserID,
		ActorRole:   identity.Role,
		Action:      "claim",
		TargetTable: "job_slots",
		TargetID:    slot.ID.String(),
		Payload:     auditPayload,
	}); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, nil, err
	}

	zap.S().Named("claim").Infow("slot claimed",
		"slot_id", slot.ID,
		"company_id", form.CompanyID,
		"request_id", form.RequestID,
	)
	return slot, created, nil
}

// classifyLostClaim turns a zero-row conditional update into the caller-facing
// error kind. The transaction is finished either way.
func (s *ClaimService) classifyLostClaim(ctx context.Context, slotID uuid.UUID) error {
	slot, err := s.store.Slot().Get(ctx, slotID)
	_, _ = store.Rollback(ctx)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrSlotNotFound(slotID)
		}
		return err
	}
	zap.S().Named("claim").Debugw("claim lost the race", "slot_id", slotID, "status", slot.Status)
	return NewErrSlotAlreadyClaimed(slotID)
}

// resolveDuplicateClaim handles the uniqueness violation on the claim insert.
// A hit on the request id means a concurrent retry with the same id committed
// first; its result is the caller's result. Otherwise the slot uniqueness
// fired and the slot belongs to somebody else.
func (s *ClaimService) resolveDuplicateClaim(ctx context.Context, tenantID uuid.UUID, form mappers.ClaimForm) (*model.JobSlot, *model.Claim, error) {
	ctx, err := s.store.NewTransactionContext(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _, _ = store.Rollback(ctx) }()

	sibling, err := s.store.Claim().GetByRequestID(ctx, form.RequestID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, nil, NewErrSlotAlreadyClaimed(form.SlotID)
		}
		return nil, nil, err
	}

	slot, err := s.store.Slot().Get(ctx, sibling.SlotID)
	if err != nil {
		return nil, nil, err
	}
	return slot, sibling, nil
}

// Cancel performs the transition claimed -> cancelled. The claim row is kept
// and the slot does not return to available.
func (s *ClaimService) Cancel(ctx context.Context, form mappers.CancelForm) (*model.JobSlot, error) {
	identity := auth.MustHaveIdentity(ctx)

	ctx, err := s.store.NewTransactionContext(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}

	slot, err := s.store.Slot().Get(ctx, form.SlotID)
	if err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrSlotNotFound(form.SlotID)
		}
		return nil, err
	}

	switch slot.Status {
	case model.SlotStatusAvailable:
		_, _ = store.Rollback(ctx)
		return nil, NewErrSlotNotClaimed(form.SlotID)
	case model.SlotStatusCancelled:
		_, _ = store.Rollback(ctx)
		return nil, NewErrSlotAlreadyCancelled(form.SlotID)
	case model.SlotStatusCompleted:
		_, _ = store.Rollback(ctx)
		return nil, NewErrSlotAlreadyCompleted(form.SlotID)
	}

	claim, err := s.store.Claim().GetBySlot(ctx, form.SlotID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := s.store.Slot().CancelClaimed(ctx, form.SlotID, form.Reason, now); err != nil {
		_, _ = store.Rollback(ctx)
		if errors.Is(err, store.ErrNoRowsUpdated) {
			return nil, NewErrCancelFailed(form.SlotID)
		}
		return nil, err
	}

	// re-read for the cancellation stamps and the job post join
	cancelled, err := s.store.Slot().Get(ctx, form.SlotID)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	eventID, payload, err := claimCancelledEvent(identity.TenantID, cancelled, claim, now)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}
	if _, err := s.store.Outbox().Enqueue(ctx, model.OutboxEvent{
		EventID:   eventID,
		EventName: model.EventClaimCancelled,
		Payload:   payload,
		Target:    s.target,
	}); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	auditPayload, _ := json.Marshal(map[string]any{
		"previous_status": model.SlotStatusClaimed,
		"new_status":      model.SlotStatusCancelled,
		"reason":          form.Reason,
	})
	if err := s.store.Audit().Append(ctx, model.AuditLog{
		ActorUserID: identity.UserID,
		ActorRole:   identity.Role,
		Action:      "cancel",
		TargetTable: "job_slots",
		TargetID:    cancelled.ID.String(),
		Payload:     auditPayload,
	}); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	zap.S().Named("claim").Infow("slot cancelled", "slot_id", cancelled.ID, "reason", form.Reason)
	return cancelled, nil
}

// Alternatives returns up to three available slots of the same project and
// trade within the given day window around the origin slot.
func (s *ClaimService) Alternatives(ctx context.Context, slotID uuid.UUID, days int) ([]model.JobSlot, error) {
	identity := auth.MustHaveIdentity(ctx)

	ctx, err := s.store.NewTransactionContext(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _, _ = store.Rollback(ctx) }()

	origin, err := s.store.Slot().Get(ctx, slotID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrSlotNotFound(slotID)
		}
		return nil, err
	}

	return s.store.Slot().FindAlternatives(ctx, origin, days, alternativesLimit)
}
