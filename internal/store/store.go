package store

import (
	"context"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context, tenantID uuid.UUID) (context.Context, error)
	Slot() Slot
	Claim() Claim
	Outbox() Outbox
	Audit() Audit
	InitialMigration() error
	Seed() error
	Ping(ctx context.Context) error
	Close() error
}

type DataStore struct {
	db     *gorm.DB
	slot   Slot
	claim  Claim
	outbox Outbox
	audit  Audit
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:     db,
		slot:   NewSlotStore(db),
		claim:  NewClaimStore(db),
		outbox: NewOutboxStore(db),
		audit:  NewAuditStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context, tenantID uuid.UUID) (context.Context, error) {
	return newTransactionContext(ctx, s.db, tenantID)
}

func (s *DataStore) Slot() Slot {
	return s.slot
}

func (s *DataStore) Claim() Claim {
	return s.claim
}

func (s *DataStore) Outbox() Outbox {
	return s.outbox
}

func (s *DataStore) Audit() Audit {
	return s.audit
}

// InitialMigration creates the schema via gorm. The migrate subcommand runs
// the goose migrations instead when a migration folder is configured; the run
// and seed subcommands and the test suites always take this path.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.Tenant{},
		&model.Project{},
		&model.JobPost{},
		&model.JobSlot{},
		&model.Claim{},
		&model.OutboxEvent{},
		&model.AuditLog{},
	)
}

func (s *DataStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
