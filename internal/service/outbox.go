package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"go.uber.org/zap"
)

const requeueBaseDelay = time.Minute

type OutboxService struct {
	store store.Store
}

func NewOutboxService(store store.Store) *OutboxService {
	return &OutboxService{store: store}
}

func (s *OutboxService) List(ctx context.Context, status string, limit int) ([]model.OutboxEvent, error) {
	identity := auth.MustHaveIdentity(ctx)

	ctx, err := s.store.NewTransactionContext(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _, _ = store.Rollback(ctx) }()

	return s.store.Outbox().List(ctx, status, limit)
}

// Requeue re-pushes a parked event to pending. The next attempt time carries
// a random offset around one minute so mass requeues do not land on the
// dispatcher as a single herd.
func (s *OutboxService) Requeue(ctx context.Context, id int64) (*model.OutboxEvent, error) {
	identity := auth.MustHaveIdentity(ctx)

	ctx, err := s.store.NewTransactionContext(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}

	nextAttemptAt := time.Now().UTC().Add(requeueJitter())
	event, err := s.store.Outbox().Requeue(ctx, id, nextAttemptAt)
	if err != nil {
		if errors.Is(err, store.ErrNoRowsUpdated) {
			// probe inside the transaction so the tenant scope applies
			_, getErr := s.store.Outbox().Get(ctx, id)
			_, _ = store.Rollback(ctx)
			if errors.Is(getErr, store.ErrRecordNotFound) {
				return nil, NewErrOutboxEventNotFound(id)
			}
			return nil, NewErrOutboxEventNotRequeueable(id)
		}
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	auditPayload, _ := json.Marshal(map[string]any{
		"event_id":        event.EventID,
		"event_name":      event.EventName,
		"next_attempt_at": nextAttemptAt.Format(time.RFC3339),
	})
	if err := s.store.Audit().Append(ctx, model.AuditLog{
		ActorUserID: identity.UserID,
		ActorRole:   identity.Role,
		Action:      "outbox_requeue",
		TargetTable: "outbox_events",
		TargetID:    event.EventID,
		Payload:     auditPayload,
	}); err != nil {
		_, _ = store.Rollback(ctx)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		return nil, err
	}

	zap.S().Named("outbox").Infow("event requeued", "id", id, "event_id", event.EventID)
	return event, nil
}

// requeueJitter spreads requeued events over 60s plus or minus ten percent.
func requeueJitter() time.Duration {
	spread := int64(float64(requeueBaseDelay) * 0.2)
	return requeueBaseDelay - time.Duration(spread/2) + time.Duration(rand.Int63n(spread))
}
