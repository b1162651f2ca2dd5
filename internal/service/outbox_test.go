package service_test

import (
	"context"
	"fmt"

	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/config"
	"github.com/dandori-work/fcfs-booking/internal/service"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const insertOutboxStm = "INSERT INTO outbox_events (tenant_id, event_id, event_name, payload, target, status, retry_count, next_attempt_at, created_at) VALUES ('%s', '%s', 'claim.confirmed', '{}', 'dandori', '%s', %d, '%s', '%s');"

var _ = Describe("outbox service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.OutboxService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		srv = service.NewOutboxService(s)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM audit_logs;")
		gormdb.Exec("DELETE FROM outbox_events;")
	})

	identityContext := func(tenantID uuid.UUID) context.Context {
		return auth.NewIdentityContext(context.TODO(), auth.Identity{TenantID: tenantID, Role: "admin"})
	}

	insertEvent := func(tenantID uuid.UUID, status string, retryCount int) model.OutboxEvent {
		eventID := uuid.NewString()
		Expect(gormdb.Exec(fmt.Sprintf(insertOutboxStm, tenantID, eventID, status, retryCount, "2020-01-01 00:00:00+00:00", "2020-01-01 00:00:00+00:00")).Error).To(BeNil())

		var event model.OutboxEvent
		Expect(gormdb.Where("event_id = ?", eventID).First(&event).Error).To(BeNil())
		return event
	}

	Context("requeue", func() {
		It("pushes a parked event back to pending and records the audit trail", func() {
			tenantID := uuid.New()
			event := insertEvent(tenantID, model.OutboxStatusFailed, 6)

			requeued, err := srv.Requeue(identityContext(tenantID), event.ID)
			Expect(err).To(BeNil())
			Expect(requeued.Status).To(Equal(model.OutboxStatusPending))
			Expect(requeued.RetryCount).To(BeZero())

			var entry model.AuditLog
			Expect(gormdb.First(&entry).Error).To(BeNil())
			Expect(entry.TenantID).To(Equal(tenantID))
			Expect(entry.Action).To(Equal("outbox_requeue"))
			Expect(entry.TargetID).To(Equal(event.EventID))
		})

		It("rejects an event that is not parked", func() {
			tenantID := uuid.New()
			event := insertEvent(tenantID, model.OutboxStatusPending, 0)

			_, err := srv.Requeue(identityContext(tenantID), event.ID)
			_, ok := err.(*service.ErrOutboxEventNotRequeueable)
			Expect(ok).To(BeTrue(), "expected ErrOutboxEventNotRequeueable")
		})

		It("reports an unknown event id", func() {
			_, err := srv.Requeue(identityContext(uuid.New()), 424242)
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue(), "expected ErrResourceNotFound")
		})

		It("reports another tenant's event as not found", func() {
			event := insertEvent(uuid.New(), model.OutboxStatusFailed, 6)

			_, err := srv.Requeue(identityContext(uuid.New()), event.ID)
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue(), "expected ErrResourceNotFound")

			var stored model.OutboxEvent
			Expect(gormdb.Where("event_id = ?", event.EventID).First(&stored).Error).To(BeNil())
			Expect(stored.Status).To(Equal(model.OutboxStatusFailed))
		})
	})

	Context("list", func() {
		It("filters the tenant's events by status", func() {
			tenantID := uuid.New()
			insertEvent(tenantID, model.OutboxStatusPending, 0)
			insertEvent(tenantID, model.OutboxStatusFailed, 6)

			events, err := srv.List(identityContext(tenantID), model.OutboxStatusFailed, 10)
			Expect(err).To(BeNil())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Status).To(Equal(model.OutboxStatusFailed))
		})

		It("hides other tenants' events", func() {
			insertEvent(uuid.New(), model.OutboxStatusFailed, 6)
			tenantID := uuid.New()
			own := insertEvent(tenantID, model.OutboxStatusFailed, 6)

			events, err := srv.List(identityContext(tenantID), "", 10)
			Expect(err).To(BeNil())
			Expect(events).To(HaveLen(1))
			Expect(events[0].EventID).To(Equal(own.EventID))
		})
	})
})
