package costs

import (
	"context"
	"testing"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/sponsors"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCostsTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Sponsor{}, &domain.Deliverable{}))
	return &Service{DB: db, Sponsors: &sponsors.Service{DB: db}}, db
}

func TestCompute_Printable(t *testing.T) {
	total, details, err := Compute(SubmitCostInput{
		CostType:  domain.CostTypePosters,
		Printable: &PrintableDetails{NumberOfPrintable: 100, SizeOfPrintable: "A2", CostPerPrintable: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, total)
	assert.NotNil(t, details)
}

func TestCompute_PrintableMissingDetails(t *testing.T) {
	_, _, err := Compute(SubmitCostInput{CostType: domain.CostTypeBanner})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompute_AccommodationSumsPerPersonTotals(t *testing.T) {
	total, _, err := Compute(SubmitCostInput{
		CostType: domain.CostTypeAccommodation,
		People: []AccommodationPerson{
			{PersonName: "A", CostPerPerson: 1200.50},
			{PersonName: "B", CostPerPerson: 799.50},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, total)
}

func TestCompute_AccommodationEmptyListIsZero(t *testing.T) {
	total, details, err := Compute(SubmitCostInput{CostType: domain.CostTypeAccommodation})
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
	assert.NotNil(t, details)
}

func TestCompute_FoodMultipliesHeadcountByRate(t *testing.T) {
	total, _, err := Compute(SubmitCostInput{
		CostType: domain.CostTypeFood,
		Meals: []FoodMeal{
			{MealType: "lunch", NumberOfPeople: 40, CostPerPerson: 12.5},
			{MealType: "dinner", NumberOfPeople: 10, CostPerPerson: 20},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 700.0, total)
}

func TestCompute_FoodEmptyListIsZero(t *testing.T) {
	total, _, err := Compute(SubmitCostInput{CostType: domain.CostTypeFood})
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestCompute_UnknownCostType(t *testing.T) {
	_, _, err := Compute(SubmitCostInput{CostType: "catering"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSubmitCost_ViewerDenied(t *testing.T) {
	s, _ := setupCostsTest(t)
	_, err := s.SubmitCost(context.Background(), constants.Viewer, SubmitCostInput{CostType: domain.CostTypeFood})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestSubmitCost_DeliverableNotFound(t *testing.T) {
	s, db := setupCostsTest(t)
	sponsor := &domain.Sponsor{Name: "S1", LegalName: "S1 Ltd", SponsorType: "cash"}
	require.NoError(t, db.Create(sponsor).Error)

	_, err := s.SubmitCost(context.Background(), constants.Finance, SubmitCostInput{
		DeliverableID: uuid.New(),
		SponsorID:     sponsor.SponsorID,
		CostType:      domain.CostTypeFood,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// The pair (deliverable_id, sponsor_id) must match; a deliverable under a
// different sponsor is not found.
func TestSubmitCost_SponsorMismatch(t *testing.T) {
	s, db := setupCostsTest(t)
	sponsorA := &domain.Sponsor{Name: "A", LegalName: "A Ltd", SponsorType: "cash"}
	sponsorB := &domain.Sponsor{Name: "B", LegalName: "B Ltd", SponsorType: "cash"}
	require.NoError(t, db.Create(sponsorA).Error)
	require.NoError(t, db.Create(sponsorB).Error)
	d := &domain.Deliverable{SponsorID: sponsorA.SponsorID, Title: "banners", Status: domain.DeliverablePending}
	require.NoError(t, db.Create(d).Error)

	_, err := s.SubmitCost(context.Background(), constants.Finance, SubmitCostInput{
		DeliverableID: d.DeliverableID,
		SponsorID:     sponsorB.SponsorID,
		CostType:      domain.CostTypePosters,
		Printable:     &PrintableDetails{NumberOfPrintable: 1, CostPerPrintable: 1},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitCost_ForceCompletesDeliverableAndAssignments(t *testing.T) {
	s, db := setupCostsTest(t)
	sponsor := &domain.Sponsor{Name: "S2", LegalName: "S2 Ltd", SponsorType: "cash"}
	require.NoError(t, db.Create(sponsor).Error)
	d := &domain.Deliverable{
		SponsorID: sponsor.SponsorID,
		Title:     "event food",
		Status:    domain.DeliverableInProgress,
		Assignments: domain.AssignmentList{
			{UserEmail: "a@x.com", Status: domain.AssignmentPending},
			{UserEmail: "b@x.com", Status: domain.AssignmentRejected},
		},
	}
	require.NoError(t, db.Create(d).Error)

	got, err := s.SubmitCost(context.Background(), constants.Finance, SubmitCostInput{
		DeliverableID: d.DeliverableID,
		SponsorID:     sponsor.SponsorID,
		CostType:      domain.CostTypeFood,
		Meals:         []FoodMeal{{MealType: "lunch", NumberOfPeople: 100, CostPerPerson: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverableCompleted, got.Status)
	assert.Equal(t, domain.TaskTypeCost, got.TaskType)
	require.NotNil(t, got.CostType)
	assert.Equal(t, domain.CostTypeFood, *got.CostType)
	assert.Equal(t, 500.0, got.EstimatedCost)
	for _, a := range got.Assignments {
		assert.Equal(t, domain.AssignmentCompleted, a.Status)
	}

	// Post-commit recomputes reflect the new cost and completion.
	var gotSponsor domain.Sponsor
	require.NoError(t, db.Where("sponsor_id = ?", sponsor.SponsorID).First(&gotSponsor).Error)
	assert.Equal(t, 500.0, gotSponsor.TotalEstimatedCost)
	assert.Equal(t, 1, gotSponsor.CompletedDeliverables)
	assert.Equal(t, domain.SponsorCompleted, gotSponsor.Status)
}
