package store

import (
	"context"
	"errors"
	"time"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"gorm.io/gorm"
)

type Outbox interface {
	// Enqueue inserts a pending event inside the caller's transaction. It
	// refuses to run outside a transaction: the state change and its
	// announcement must commit together.
	Enqueue(ctx context.Context, event model.OutboxEvent) (*model.OutboxEvent, error)
	// Get, Requeue and List are tenant facing and scope to the tenant of the
	// current transaction. The remaining operations serve the dispatcher,
	// which drains events across tenants, and the metrics collector
	// (CountByStatus), which counts them across tenants.
	Get(ctx context.Context, id int64) (*model.OutboxEvent, error)
	DueBatch(ctx context.Context, limit int, now time.Time) ([]model.OutboxEvent, error)
	Lease(ctx context.Context, id int64, until time.Time) (bool, error)
	MarkSent(ctx context.Context, id int64) error
	ScheduleRetry(ctx context.Context, id int64, retryCount int, nextAttemptAt time.Time, deliveryErr string) error
	Park(ctx context.Context, id int64, retryCount int, deliveryErr string) error
	Requeue(ctx context.Context, id int64, nextAttemptAt time.Time) (*model.OutboxEvent, error)
	List(ctx context.Context, status string, limit int) ([]model.OutboxEvent, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type OutboxStore struct {
	db *gorm.DB
}

var _ Outbox = (*OutboxStore)(nil)

func NewOutboxStore(db *gorm.DB) Outbox {
	return &OutboxStore{db: db}
}

func (o *OutboxStore) Enqueue(ctx context.Context, event model.OutboxEvent) (*model.OutboxEvent, error) {
	tx := FromContext(ctx)
	if tx == nil {
		return nil, ErrNoTransaction
	}

	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}
	event.TenantID = tenantID

	event.Status = model.OutboxStatusPending
	if event.NextAttemptAt.IsZero() {
		event.NextAttemptAt = time.Now().UTC()
	}
	if result := tx.Create(&event); result.Error != nil {
		return nil, result.Error
	}
	return &event, nil
}

func (o *OutboxStore) Get(ctx context.Context, id int64) (*model.OutboxEvent, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	var event model.OutboxEvent
	result := o.getDB(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&event)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &event, nil
}

// DueBatch returns events eligible for dispatch: pending rows whose attempt
// time has elapsed, oldest first. Failed rows stay out until an operator
// requeues them.
func (o *OutboxStore) DueBatch(ctx context.Context, limit int, now time.Time) ([]model.OutboxEvent, error) {
	var events []model.OutboxEvent
	result := o.getDB(ctx).
		Where("status = ? AND next_attempt_at <= ?", model.OutboxStatusPending, now).
		Order("created_at ASC").
		Limit(limit).
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}
	return events, nil
}

// Lease pushes the event's attempt time forward iff the row is still
// eligible. A false return means a sibling dispatcher took the event first.
// The lease bounds double delivery; it does not eliminate it.
func (o *OutboxStore) Lease(ctx context.Context, id int64, until time.Time) (bool, error) {
	result := o.getDB(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ? AND status = ? AND next_attempt_at <= ?", id, model.OutboxStatusPending, time.Now().UTC()).
		Update("next_attempt_at", until)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (o *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	return o.getDB(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     model.OutboxStatusSent,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (o *OutboxStore) ScheduleRetry(ctx context.Context, id int64, retryCount int, nextAttemptAt time.Time, deliveryErr string) error {
	return o.getDB(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          model.OutboxStatusPending,
			"retry_count":     retryCount,
			"next_attempt_at": nextAttemptAt,
			"last_error":      deliveryErr,
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (o *OutboxStore) Park(ctx context.Context, id int64, retryCount int, deliveryErr string) error {
	return o.getDB(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      model.OutboxStatusFailed,
			"retry_count": retryCount,
			"last_error":  deliveryErr,
			"updated_at":  time.Now().UTC(),
		}).Error
}

// Requeue re-pushes a parked event back to pending. Only the owning tenant's
// failed events may be requeued.
func (o *OutboxStore) Requeue(ctx context.Context, id int64, nextAttemptAt time.Time) (*model.OutboxEvent, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	result := o.getDB(ctx).
		Model(&model.OutboxEvent{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, model.OutboxStatusFailed).
		Updates(map[string]any{
			"status":          model.OutboxStatusPending,
			"retry_count":     0,
			"next_attempt_at": nextAttemptAt,
			"updated_at":      time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoRowsUpdated
	}
	return o.Get(ctx, id)
}

func (o *OutboxStore) List(ctx context.Context, status string, limit int) ([]model.OutboxEvent, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	query := o.getDB(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var events []model.OutboxEvent
	if result := query.Find(&events); result.Error != nil {
		return nil, result.Error
	}
	return events, nil
}

func (o *OutboxStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	result := o.getDB(ctx).
		Model(&model.OutboxEvent{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (o *OutboxStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return o.db
}
