package service

import (
	"context"

	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
)

type AuditService struct {
	store store.Store
}

func NewAuditService(store store.Store) *AuditService {
	return &AuditService{store: store}
}

func (s *AuditService) List(ctx context.Context, limit, offset int) ([]model.AuditLog, error) {
	identity := auth.MustHaveIdentity(ctx)

	ctx, err := s.store.NewTransactionContext(ctx, identity.TenantID)
	if err != nil {
		return nil, err
	}
	defer func() { _, _ = store.Rollback(ctx) }()

	return s.store.Audit().List(ctx, limit, offset)
}
