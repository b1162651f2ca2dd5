package store

import (
	"context"
	"errors"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Claim interface {
	Create(ctx context.Context, claim model.Claim) (*model.Claim, error)
	GetByRequestID(ctx context.Context, requestID string) (*model.Claim, error)
	GetBySlot(ctx context.Context, slotID uuid.UUID) (*model.Claim, error)
}

type ClaimStore struct {
	db *gorm.DB
}

var _ Claim = (*ClaimStore)(nil)

func NewClaimStore(db *gorm.DB) Claim {
	return &ClaimStore{db: db}
}

func (c *ClaimStore) Create(ctx context.Context, claim model.Claim) (*model.Claim, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}
	claim.TenantID = tenantID

	result := c.getDB(ctx).Create(&claim)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &claim, nil
}

// GetByRequestID is the idempotency probe. The lookup is scoped to the
// caller's tenant even though request ids are globally unique.
func (c *ClaimStore) GetByRequestID(ctx context.Context, requestID string) (*model.Claim, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	var claim model.Claim
	result := c.getDB(ctx).
		Where("request_id = ? AND tenant_id = ?", requestID, tenantID).
		First(&claim)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &claim, nil
}

func (c *ClaimStore) GetBySlot(ctx context.Context, slotID uuid.UUID) (*model.Claim, error) {
	tenantID, ok := TenantFromContext(ctx)
	if !ok {
		return nil, ErrNoTenant
	}

	var claim model.Claim
	result := c.getDB(ctx).
		Where("slot_id = ? AND tenant_id = ?", slotID, tenantID).
		First(&claim)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &claim, nil
}

func (c *ClaimStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return c.db
}
