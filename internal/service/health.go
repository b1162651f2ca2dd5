package service

import (
	"context"

	"github.com/dandori-work/fcfs-booking/internal/store"
)

type HealthService struct {
	store store.Store
}

func NewHealthService(store store.Store) *HealthService {
	return &HealthService{store: store}
}

func (s *HealthService) Check(ctx context.Context) error {
	return s.store.Ping(ctx)
}
