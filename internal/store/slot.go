package store

import (
	"context"
	"errors"
	"time"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Slot interface {
	Get(ctx context.Context, id uuid.UUID) (*model.JobSlot, error)
	ClaimAvailable(ctx context.Context, id uuid.UUID, companyID uuid.UUID, userID *uuid.UUID, at time.Time) (*model.JobSlot, error)
	CancelClaimed(ctx context.Context, id uuid.UUID, reason string, at time.Time) (*model.JobSlot, error)
	FindAlternatives(ctx context.Context, origin *model.JobSlot, days int, limit int) ([]model.JobSlot, error)
}

type SlotStore struct {
	db *gorm.DB
}

var _ Slot = (*SlotStore)(nil)

func NewSlotStore(db *gorm.DB) Slot {
	return &SlotStore{db: db}
}

// Get returns the slot with its job post and project. Slots of other tenants
// are reported as not found.
func (s *SlotStore) Get(ctx context.Context, id uuid.UUID) (*model.JobSlot, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	var slot model.JobSlot
	result := s.getDB(ctx).
		Preload("JobPost").
		Preload("JobPost.Project").
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&slot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &slot, nil
}

// ClaimAvailable performs the conditional update available -> claimed. The
// storage engine serializes concurrent updates on the row, so under N racing
// callers at most one observes status = 'available'. A zero-row result is
// reported as ErrNoRowsUpdated; the caller discriminates with a second read.
func (s *SlotStore) ClaimAvailable(ctx context.Context, id uuid.UUID, companyID uuid.UUID, userID *uuid.UUID, at time.Time) (*model.JobSlot, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	slot := model.JobSlot{ID: id}
	result := s.getDB(ctx).
		Model(&slot).
		Clauses(clause.Returning{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, model.SlotStatusAvailable).
		Updates(map[string]any{
			"status":             model.SlotStatusClaimed,
			"claimed_by_company": companyID,
			"claimed_by_user":    userID,
			"claimed_at":         at,
			"updated_at":         at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoRowsUpdated
	}
	return &slot, nil
}

// CancelClaimed performs the conditional update claimed -> cancelled.
func (s *SlotStore) CancelClaimed(ctx context.Context, id uuid.UUID, reason string, at time.Time) (*model.JobSlot, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	slot := model.JobSlot{ID: id}
	result := s.getDB(ctx).
		Model(&slot).
		Clauses(clause.Returning{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, model.SlotStatusClaimed).
		Updates(map[string]any{
			"status":        model.SlotStatusCancelled,
			"cancelled_at":  at,
			"cancel_reason": reason,
			"updated_at":    at,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNoRowsUpdated
	}
	return &slot, nil
}

// FindAlternatives returns available slots of the same project and trade as
// the origin, within the given window of calendar days around the origin's
// work date, ordered by work date ascending then newest first.
func (s *SlotStore) FindAlternatives(ctx context.Context, origin *model.JobSlot, days int, limit int) ([]model.JobSlot, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	from := origin.WorkDate.AddDate(0, 0, -days)
	to := origin.WorkDate.AddDate(0, 0, days)

	var slots []model.JobSlot
	result := s.getDB(ctx).
		Joins("JOIN job_posts ON job_posts.id = job_slots.job_post_id").
		Preload("JobPost").
		Where("job_slots.tenant_id = ?", tenantID).
		Where("job_posts.project_id = ? AND job_posts.trade = ?", origin.JobPost.ProjectID, origin.JobPost.Trade).
		Where("job_slots.status = ?", model.SlotStatusAvailable).
		Where("job_slots.id <> ?", origin.ID).
		Where("job_slots.work_date BETWEEN ? AND ?", from, to).
		Order("job_slots.work_date ASC, job_slots.created_at DESC").
		Limit(limit).
		Find(&slots)
	if result.Error != nil {
		return nil, result.Error
	}
	return slots, nil
}

func (s *SlotStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return s.db
}
