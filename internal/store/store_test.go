package store_test

import (
	"context"
	"fmt"

	"github.com/dandori-work/fcfs-booking/internal/config"
	st "github.com/dandori-work/fcfs-booking/internal/store"
	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
		Expect(store.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM claims;")
		gormDB.Exec("DELETE FROM job_slots;")
		gormDB.Exec("DELETE FROM job_posts;")
		gormDB.Exec("DELETE FROM projects;")
		gormDB.Exec("DELETE FROM tenants;")
	})

	Context("transaction", func() {
		It("reads through the tenant transaction and commits it", func() {
			tenantID := uuid.New()
			slotID, _ := seedAvailableSlot(gormDB, tenantID)

			ctx, err := store.NewTransactionContext(context.TODO(), tenantID)
			Expect(err).To(BeNil())

			slot, err := store.Slot().Get(ctx, slotID)
			Expect(err).To(BeNil())
			Expect(slot.ID).To(Equal(slotID))

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())
		})

		It("discards the writes on rollback", func() {
			tenantID := uuid.New()
			slotID, _ := seedAvailableSlot(gormDB, tenantID)

			ctx, err := store.NewTransactionContext(context.TODO(), tenantID)
			Expect(err).To(BeNil())

			claim := model.Claim{
				ID:        uuid.New(),
				SlotID:    slotID,
				CompanyID: uuid.New(),
				RequestID: uuid.NewString(),
			}
			_, err = store.Claim().Create(ctx, claim)
			Expect(err).To(BeNil())

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())

			var count int64
			Expect(gormDB.Model(&model.Claim{}).Count(&count).Error).To(BeNil())
			Expect(count).To(BeZero())
		})

		It("reuses the transaction already opened for the request", func() {
			tenantID := uuid.New()

			ctx, err := store.NewTransactionContext(context.TODO(), tenantID)
			Expect(err).To(BeNil())

			sameCtx, err := store.NewTransactionContext(ctx, tenantID)
			Expect(err).To(BeNil())
			Expect(sameCtx).To(Equal(ctx))

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())
		})
	})

	Context("seed", func() {
		It("creates the demo tenant with three available slots", func() {
			Expect(store.Seed()).To(BeNil())

			var tenants, slots int64
			Expect(gormDB.Model(&model.Tenant{}).Count(&tenants).Error).To(BeNil())
			Expect(gormDB.Model(&model.JobSlot{}).Count(&slots).Error).To(BeNil())
			Expect(tenants).To(Equal(int64(1)))
			Expect(slots).To(Equal(int64(3)))
		})

		It("is idempotent", func() {
			Expect(store.Seed()).To(BeNil())
			Expect(store.Seed()).To(BeNil())

			var slots int64
			Expect(gormDB.Model(&model.JobSlot{}).Count(&slots).Error).To(BeNil())
			Expect(slots).To(Equal(int64(3)))
		})
	})
})

// seedAvailableSlot inserts the tenant, project, job post and one available
// slot, returning the slot and job post ids.
func seedAvailableSlot(db *gorm.DB, tenantID uuid.UUID) (uuid.UUID, uuid.UUID) {
	projectID := uuid.New()
	jobPostID := uuid.New()
	slotID := uuid.New()

	Expect(db.Exec(fmt.Sprintf(insertTenantStm, tenantID, "tenant")).Error).To(BeNil())
	Expect(db.Exec(fmt.Sprintf(insertProjectStm, projectID, tenantID, "project")).Error).To(BeNil())
	Expect(db.Exec(fmt.Sprintf(insertJobPostStm, jobPostID, tenantID, projectID, "post", "interior")).Error).To(BeNil())
	Expect(db.Exec(fmt.Sprintf(insertSlotStm, slotID, tenantID, jobPostID, "2024-11-05", 1, model.SlotStatusAvailable)).Error).To(BeNil())

	return slotID, jobPostID
}
