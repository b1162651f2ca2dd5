package store

import (
	"time"

	"github.com/dandori-work/fcfs-booking/internal/store/model"
	"github.com/google/uuid"
)

var (
	seedTenantID  = uuid.MustParse("550e8400-e29b-41d4-a716-446655440001")
	seedProjectID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440101")
	seedJobPostID = uuid.MustParse("550e8400-e29b-41d4-a716-446655440201")

	seedSlotIDs = []uuid.UUID{
		uuid.MustParse("550e8400-e29b-41d4-a716-446655440211"),
		uuid.MustParse("550e8400-e29b-41d4-a716-446655440212"),
		uuid.MustParse("550e8400-e29b-41d4-a716-446655440213"),
	}
)

// Seed inserts a demo tenant with one project, one job post and three
// available slots. It is idempotent so repeated runs against the same
// database are safe.
func (s *DataStore) Seed() error {
	tenant := model.Tenant{
		ID:              seedTenantID,
		Name:            "デモ建設株式会社",
		IntegrationMode: model.IntegrationModeStandalone,
		Active:          true,
	}
	if err := s.db.FirstOrCreate(&tenant, model.Tenant{ID: seedTenantID}).Error; err != nil {
		return err
	}

	project := model.Project{
		ID:        seedProjectID,
		TenantID:  seedTenantID,
		Name:      "品川オフィスビル新築工事",
		Address:   "東京都港区港南2-1-1",
		StartDate: date(2024, 9, 1),
		EndDate:   date(2025, 3, 31),
	}
	if err := s.db.FirstOrCreate(&project, model.Project{ID: seedProjectID}).Error; err != nil {
		return err
	}

	jobPost := model.JobPost{
		ID:           seedJobPostID,
		TenantID:     seedTenantID,
		ProjectID:    seedProjectID,
		Title:        "5階内装仕上げ工事",
		Trade:        "interior",
		StartDate:    date(2024, 11, 5),
		EndDate:      date(2024, 11, 7),
		PricePerSlot: 35000,
		Published:    true,
	}
	if err := s.db.FirstOrCreate(&jobPost, model.JobPost{ID: seedJobPostID}).Error; err != nil {
		return err
	}

	workDates := []time.Time{
		date(2024, 11, 5),
		date(2024, 11, 6),
		date(2024, 11, 7),
	}
	for i, id := range seedSlotIDs {
		slot := model.JobSlot{
			ID:        id,
			TenantID:  seedTenantID,
			JobPostID: seedJobPostID,
			WorkDate:  workDates[i],
			SlotNo:    1,
			Status:    model.SlotStatusAvailable,
		}
		if err := s.db.FirstOrCreate(&slot, model.JobSlot{ID: id}).Error; err != nil {
			return err
		}
	}

	return nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
