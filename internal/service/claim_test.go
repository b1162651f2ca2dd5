package service_test

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dandori-work/fcfs-booking/internal/auth"
	"github.com/dandori-work/fcfs-booking/internal/config"
	"github.com/dandori-work/fcfs-booking/internal/service"
	"github.com/dandori-work/fcfs-booking/internal/service/mappers"
	"github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertTenantStm  = "INSERT INTO tenants (id, name, integration_mode, active) VALUES ('%s', '%s', 'standalone', true);"
	insertProjectStm = "INSERT INTO projects (id, tenant_id, name) VALUES ('%s', '%s', '%s');"
	insertJobPostStm = "INSERT INTO job_posts (id, tenant_id, project_id, title, trade, price_per_slot, published) VALUES ('%s', '%s', '%s', '%s', '%s', 30000, true);"
	insertSlotStm    = "INSERT INTO job_slots (id, tenant_id, job_post_id, work_date, slot_no, status) VALUES ('%s', '%s', '%s', '%s', %d, '%s');"
)

var _ = Describe("claim service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.ClaimService
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())

		srv = service.NewClaimService(s, "dandori")
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM audit_logs;")
		gormdb.Exec("DELETE FROM outbox_events;")
		gormdb.Exec("DELETE FROM claims;")
		gormdb.Exec("DELETE FROM job_slots;")
		gormdb.Exec("DELETE FROM job_posts;")
		gormdb.Exec("DELETE FROM projects;")
		gormdb.Exec("DELETE FROM tenants;")
	})

	identityCtx := func(tenantID uuid.UUID) context.Context {
		return auth.NewIdentityContext(context.TODO(), auth.Identity{TenantID: tenantID, Role: "admin"})
	}

	seedSlot := func(tenantID uuid.UUID, status string) uuid.UUID {
		projectID := uuid.New()
		jobPostID := uuid.New()
		slotID := uuid.New()

		Expect(gormdb.Exec(fmt.Sprintf(insertTenantStm, tenantID, "tenant")).Error).To(BeNil())
		Expect(gormdb.Exec(fmt.Sprintf(insertProjectStm, projectID, tenantID, "project")).Error).To(BeNil())
		Expect(gormdb.Exec(fmt.Sprintf(insertJobPostStm, jobPostID, tenantID, projectID, "post", "interior")).Error).To(BeNil())
		Expect(gormdb.Exec(fmt.Sprintf(insertSlotStm, slotID, tenantID, jobPostID, "2024-11-05", 1, status)).Error).To(BeNil())

		return slotID
	}

	Context("claim", func() {
		It("claims an available slot and records the side effects", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusAvailable)
			companyID := uuid.New()

			slot, claim, err := srv.Claim(identityCtx(tenantID), mappers.ClaimForm{
				SlotID:    slotID,
				CompanyID: companyID,
				RequestID: uuid.NewString(),
			})
			Expect(err).To(BeNil())
			Expect(slot.Status).To(Equal(model.SlotStatusClaimed))
			Expect(claim.CompanyID).To(Equal(companyID))

			var claims, events, entries int64
			Expect(gormdb.Model(&model.Claim{}).Count(&claims).Error).To(BeNil())
			Expect(gormdb.Model(&model.OutboxEvent{}).Count(&events).Error).To(BeNil())
			Expect(gormdb.Model(&model.AuditLog{}).Count(&entries).Error).To(BeNil())
			Expect(claims).To(Equal(int64(1)))
			Expect(events).To(Equal(int64(1)))
			Expect(entries).To(Equal(int64(1)))
		})

		It("stamps the payload with the stored event id", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusAvailable)

			_, _, err := srv.Claim(identityCtx(tenantID), mappers.ClaimForm{
				SlotID:    slotID,
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			})
			Expect(err).To(BeNil())

			var event model.OutboxEvent
			Expect(gormdb.First(&event).Error).To(BeNil())
			Expect(event.EventName).To(Equal(model.EventClaimConfirmed))
			Expect(event.Status).To(Equal(model.OutboxStatusPending))

			var payload map[string]any
			Expect(json.Unmarshal(event.Payload, &payload)).To(BeNil())
			Expect(payload["id"]).To(Equal(event.EventID))
			Expect(payload["event"]).To(Equal(model.EventClaimConfirmed))
		})

		It("replays the original result for a repeated request id", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusAvailable)
			requestID := uuid.NewString()
			form := mappers.ClaimForm{SlotID: slotID, CompanyID: uuid.New(), RequestID: requestID}

			_, first, err := srv.Claim(identityCtx(tenantID), form)
			Expect(err).To(BeNil())

			slot, second, err := srv.Claim(identityCtx(tenantID), form)
			Expect(err).To(BeNil())
			Expect(second.ID).To(Equal(first.ID))
			Expect(slot.Status).To(Equal(model.SlotStatusClaimed))

			// the replay writes nothing
			var claims, events int64
			Expect(gormdb.Model(&model.Claim{}).Count(&claims).Error).To(BeNil())
			Expect(gormdb.Model(&model.OutboxEvent{}).Count(&events).Error).To(BeNil())
			Expect(claims).To(Equal(int64(1)))
			Expect(events).To(Equal(int64(1)))
		})

		It("rejects a claim on an already claimed slot", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusAvailable)

			_, _, err := srv.Claim(identityCtx(tenantID), mappers.ClaimForm{
				SlotID:    slotID,
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			})
			Expect(err).To(BeNil())

			_, _, err = srv.Claim(identityCtx(tenantID), mappers.ClaimForm{
				SlotID:    slotID,
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrSlotAlreadyClaimed)
			Expect(ok).To(BeTrue(), "expected ErrSlotAlreadyClaimed")
		})

		It("returns ErrResourceNotFound for an unknown slot", func() {
			tenantID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertTenantStm, tenantID, "tenant")).Error).To(BeNil())

			_, _, err := srv.Claim(identityCtx(tenantID), mappers.ClaimForm{
				SlotID:    uuid.New(),
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue(), "expected ErrResourceNotFound")
		})

		It("hides another tenant's slot behind not found", func() {
			ownerTenant := uuid.New()
			slotID := seedSlot(ownerTenant, model.SlotStatusAvailable)

			otherTenant := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertTenantStm, otherTenant, "other")).Error).To(BeNil())

			_, _, err := srv.Claim(identityCtx(otherTenant), mappers.ClaimForm{
				SlotID:    slotID,
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue(), "expected ErrResourceNotFound")
		})
	})

	Context("cancel", func() {
		It("cancels a claimed slot and keeps the claim row", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusAvailable)

			_, _, err := srv.Claim(identityCtx(tenantID), mappers.ClaimForm{
				SlotID:    slotID,
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			})
			Expect(err).To(BeNil())

			slot, err := srv.Cancel(identityCtx(tenantID), mappers.CancelForm{
				SlotID: slotID,
				Reason: model.CancelReasonWeather,
			})
			Expect(err).To(BeNil())
			Expect(slot.Status).To(Equal(model.SlotStatusCancelled))
			Expect(*slot.CancelReason).To(Equal(model.CancelReasonWeather))

			var claims int64
			Expect(gormdb.Model(&model.Claim{}).Count(&claims).Error).To(BeNil())
			Expect(claims).To(Equal(int64(1)))

			var cancelled model.OutboxEvent
			Expect(gormdb.Where("event_name = ?", model.EventClaimCancelled).First(&cancelled).Error).To(BeNil())
		})

		It("rejects cancelling a slot that was never claimed", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusAvailable)

			_, err := srv.Cancel(identityCtx(tenantID), mappers.CancelForm{
				SlotID: slotID,
				Reason: model.CancelReasonOther,
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrSlotNotClaimed)
			Expect(ok).To(BeTrue(), "expected ErrSlotNotClaimed")
		})

		It("rejects cancelling twice", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusCancelled)

			_, err := srv.Cancel(identityCtx(tenantID), mappers.CancelForm{
				SlotID: slotID,
				Reason: model.CancelReasonOther,
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrSlotAlreadyCancelled)
			Expect(ok).To(BeTrue(), "expected ErrSlotAlreadyCancelled")
		})

		It("rejects cancelling a completed slot", func() {
			tenantID := uuid.New()
			slotID := seedSlot(tenantID, model.SlotStatusCompleted)

			_, err := srv.Cancel(identityCtx(tenantID), mappers.CancelForm{
				SlotID: slotID,
				Reason: model.CancelReasonOther,
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrSlotAlreadyCompleted)
			Expect(ok).To(BeTrue(), "expected ErrSlotAlreadyCompleted")
		})

		It("returns ErrResourceNotFound for an unknown slot", func() {
			tenantID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertTenantStm, tenantID, "tenant")).Error).To(BeNil())

			_, err := srv.Cancel(identityCtx(tenantID), mappers.CancelForm{
				SlotID: uuid.New(),
				Reason: model.CancelReasonOther,
			})
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue(), "expected ErrResourceNotFound")
		})
	})

	Context("alternatives", func() {
		It("returns available slots around the origin", func() {
			tenantID := uuid.New()
			projectID := uuid.New()
			jobPostID := uuid.New()
			originID := uuid.New()

			Expect(gormdb.Exec(fmt.Sprintf(insertTenantStm, tenantID, "tenant")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertProjectStm, projectID, tenantID, "project")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertJobPostStm, jobPostID, tenantID, projectID, "post", "interior")).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertSlotStm, originID, tenantID, jobPostID, "2024-11-05", 1, model.SlotStatusClaimed)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertSlotStm, uuid.New(), tenantID, jobPostID, "2024-11-06", 1, model.SlotStatusAvailable)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertSlotStm, uuid.New(), tenantID, jobPostID, "2024-11-20", 1, model.SlotStatusAvailable)).Error).To(BeNil())

			slots, err := srv.Alternatives(identityCtx(tenantID), originID, 3)
			Expect(err).To(BeNil())
			Expect(slots).To(HaveLen(1))
		})

		It("returns ErrResourceNotFound for an unknown origin", func() {
			tenantID := uuid.New()
			Expect(gormdb.Exec(fmt.Sprintf(insertTenantStm, tenantID, "tenant")).Error).To(BeNil())

			_, err := srv.Alternatives(identityCtx(tenantID), uuid.New(), 3)
			Expect(err).ToNot(BeNil())
			_, ok := err.(*service.ErrResourceNotFound)
			Expect(ok).To(BeTrue(), "expected ErrResourceNotFound")
		})
	})
})
