package store

import (
	"context"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"gorm.io/gorm"
)

type Audit interface {
	// Append writes an audit entry inside the caller's transaction so the
	// entry commits or rolls back with the action it records.
	Append(ctx context.Context, entry model.AuditLog) error
	List(ctx context.Context, limit, offset int) ([]model.AuditLog, error)
}

type AuditStore struct {
	db *gorm.DB
}

var _ Audit = (*AuditStore)(nil)

func NewAuditStore(db *gorm.DB) Audit {
	return &AuditStore{db: db}
}

func (a *AuditStore) Append(ctx context.Context, entry model.AuditLog) error {
	tx := FromContext(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return ErrNoTenant
	}
	entry.TenantID = tenantID

	return tx.Create(&entry).Error
}

func (a *AuditStore) List(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	var entries []model.AuditLog
	result := a.getDB(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries)
	if result.Error != nil {
		return nil, result.Error
	}
	return entries, nil
}

func (a *AuditStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return a.db
}
