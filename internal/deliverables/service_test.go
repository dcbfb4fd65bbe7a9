package deliverables

import (
	"context"
	"errors"
	"testing"
	"time"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/sponsors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRemover struct {
	calls []string
	err   error
}

func (f *fakeRemover) RemoveObject(ctx context.Context, bucket, path string) error {
	f.calls = append(f.calls, bucket+"/"+path)
	return f.err
}

func setupDeliverablesTest(t *testing.T) (*Service, *gorm.DB, *fakeRemover) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Sponsor{}, &domain.Deliverable{}))
	remover := &fakeRemover{}
	svc := &Service{DB: db, Sponsors: &sponsors.Service{DB: db}, Storage: remover}
	return svc, db, remover
}

func newSponsor(t *testing.T, db *gorm.DB) *domain.Sponsor {
	sponsor := &domain.Sponsor{
		Name:        "TechNova " + uuid.New().String()[:8],
		LegalName:   "TechNova Pvt Ltd",
		SponsorType: "cash",
	}
	require.NoError(t, db.Create(sponsor).Error)
	return sponsor
}

func TestCreate_ViewerDenied(t *testing.T) {
	s, _, _ := setupDeliverablesTest(t)
	_, err := s.Create(context.Background(), constants.Viewer, CreateDeliverableInput{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

// A missing sponsor aborts the whole transaction; no deliverable row survives.
func TestCreate_MissingSponsorLeavesNothingBehind(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	_, err := s.Create(context.Background(), constants.Admin, CreateDeliverableInput{
		SponsorID: uuid.New(),
		Title:     "orphan",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&domain.Deliverable{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestCreate_BumpsSponsorCounters(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)

	d, err := s.Create(context.Background(), constants.Admin, CreateDeliverableInput{
		SponsorID:     sponsor.SponsorID,
		Title:         "logo on stage banner",
		TaskType:      domain.TaskTypeCost,
		EstimatedCost: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverablePending, d.Status)
	assert.Equal(t, "medium", d.Priority)

	var got domain.Sponsor
	require.NoError(t, db.Where("sponsor_id = ?", sponsor.SponsorID).First(&got).Error)
	assert.Equal(t, 1, got.TotalDeliverables)
	assert.Equal(t, 250.0, got.TotalEstimatedCost)
}

func TestCreate_RejectsUnknownTaskType(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)
	_, err := s.Create(context.Background(), constants.Admin, CreateDeliverableInput{
		SponsorID: sponsor.SponsorID,
		Title:     "x",
		TaskType:  "misc",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreate_RejectsUnknownCostType(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)
	costType := "catering"
	_, err := s.Create(context.Background(), constants.Admin, CreateDeliverableInput{
		SponsorID: sponsor.SponsorID,
		Title:     "x",
		TaskType:  domain.TaskTypeCost,
		CostType:  &costType,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestUpdate_AdjustsSponsorCostByDelta(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)
	d, err := s.Create(context.Background(), constants.Admin, CreateDeliverableInput{
		SponsorID:     sponsor.SponsorID,
		Title:         "standee",
		EstimatedCost: 100,
	})
	require.NoError(t, err)

	newCost := 160.0
	_, err = s.Update(context.Background(), constants.Admin, d.DeliverableID, UpdateDeliverableInput{EstimatedCost: &newCost})
	require.NoError(t, err)

	var got domain.Sponsor
	require.NoError(t, db.Where("sponsor_id = ?", sponsor.SponsorID).First(&got).Error)
	// Standard deliverable: the post-commit cost resum only counts task_type
	// cost rows, so the incremental bump is corrected back to 0.
	assert.Equal(t, 0.0, got.TotalEstimatedCost)

	gotD, err := s.Get(context.Background(), d.DeliverableID)
	require.NoError(t, err)
	assert.Equal(t, 160.0, gotD.EstimatedCost)
}

func TestDelete_OnlyPendingOrOverdue(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)

	for _, status := range []string{domain.DeliverableInProgress, domain.DeliverableCompleted} {
		d := &domain.Deliverable{SponsorID: sponsor.SponsorID, Title: "locked", Status: status}
		require.NoError(t, db.Create(d).Error)
		err := s.Delete(context.Background(), constants.Admin, d.DeliverableID)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "status %s must not be deletable", status)
	}

	d := &domain.Deliverable{SponsorID: sponsor.SponsorID, Title: "still pending", Status: domain.DeliverablePending}
	require.NoError(t, db.Create(d).Error)
	require.NoError(t, s.Delete(context.Background(), constants.Admin, d.DeliverableID))

	_, err := s.Get(context.Background(), d.DeliverableID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_DecrementsCountersFlooredAtZero(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)
	d := &domain.Deliverable{SponsorID: sponsor.SponsorID, Title: "solo", Status: domain.DeliverablePending, EstimatedCost: 50}
	require.NoError(t, db.Create(d).Error)
	// Counters were never bumped for this row; delete must not go negative.
	require.NoError(t, s.Delete(context.Background(), constants.Admin, d.DeliverableID))

	var got domain.Sponsor
	require.NoError(t, db.Where("sponsor_id = ?", sponsor.SponsorID).First(&got).Error)
	assert.Equal(t, 0, got.TotalDeliverables)
	assert.Equal(t, 0.0, got.TotalEstimatedCost)
}

func TestDelete_StorageCleanupIsBestEffort(t *testing.T) {
	s, db, remover := setupDeliverablesTest(t)
	remover.err = errors.New("bucket unavailable")
	sponsor := newSponsor(t, db)
	fileURL := "2026/banner-mock.pdf"
	d := &domain.Deliverable{
		SponsorID:         sponsor.SponsorID,
		Title:             "with attachment",
		Status:            domain.DeliverablePending,
		AdditionalFileURL: &fileURL,
	}
	require.NoError(t, db.Create(d).Error)

	// The storage failure is logged, not surfaced; the row is gone.
	require.NoError(t, s.Delete(context.Background(), constants.Admin, d.DeliverableID))
	require.Len(t, remover.calls, 1)
	assert.Equal(t, FileBucket+"/"+fileURL, remover.calls[0])

	_, err := s.Get(context.Background(), d.DeliverableID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMarkOverdue_SweepsPastDuePending(t *testing.T) {
	s, db, _ := setupDeliverablesTest(t)
	sponsor := newSponsor(t, db)
	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	late := &domain.Deliverable{SponsorID: sponsor.SponsorID, Title: "late", Status: domain.DeliverablePending, DueDate: &past}
	onTime := &domain.Deliverable{SponsorID: sponsor.SponsorID, Title: "on time", Status: domain.DeliverablePending, DueDate: &future}
	done := &domain.Deliverable{SponsorID: sponsor.SponsorID, Title: "done", Status: domain.DeliverableCompleted, DueDate: &past}
	require.NoError(t, db.Create(late).Error)
	require.NoError(t, db.Create(onTime).Error)
	require.NoError(t, db.Create(done).Error)

	list, err := s.ListBySponsor(context.Background(), sponsor.SponsorID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	byTitle := map[string]string{}
	for _, d := range list {
		byTitle[d.Title] = d.Status
	}
	assert.Equal(t, domain.DeliverableOverdue, byTitle["late"])
	assert.Equal(t, domain.DeliverablePending, byTitle["on time"])
	assert.Equal(t, domain.DeliverableCompleted, byTitle["done"])
}
