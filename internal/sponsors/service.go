package sponsors

import (
	"context"
	"fmt"
	"math"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

type CreateSponsorInput struct {
	Name        string
	LegalName   string
	SponsorType string
	CashValue   float64
	InKindValue float64
	InKindItems datatypes.JSON
	Events      datatypes.JSON
	DocURL      *string
}

// CreateSponsor registers a sponsor with zeroed aggregates.
func (s *Service) CreateSponsor(ctx context.Context, actorRole string, in CreateSponsorInput) (*domain.Sponsor, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}
	sponsor := &domain.Sponsor{
		Name:        in.Name,
		LegalName:   in.LegalName,
		SponsorType: in.SponsorType,
		CashValue:   in.CashValue,
		InKindValue: in.InKindValue,
		TotalValue:  round2(in.CashValue + in.InKindValue),
		Status:      domain.SponsorPending,
		InKindItems: in.InKindItems,
		Events:      in.Events,
		DocURL:      in.DocURL,
	}
	if err := s.DB.WithContext(ctx).Create(sponsor).Error; err != nil {
		return nil, fmt.Errorf("Failed to create sponsor: %v", err)
	}
	return sponsor, nil
}

type UpdateSponsorInput struct {
	Name        *string
	LegalName   *string
	SponsorType *string
	CashValue   *float64
	InKindValue *float64
	ActualCost  *float64
	InKindItems datatypes.JSON
	Events      datatypes.JSON
	DocURL      *string
}

// UpdateSponsor patches contract-level fields. Derived aggregates are never
// written here; they belong to the recompute operations below.
func (s *Service) UpdateSponsor(ctx context.Context, actorRole string, sponsorID uuid.UUID, in UpdateSponsorInput) (*domain.Sponsor, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}
	var sponsor domain.Sponsor
	if err := s.DB.WithContext(ctx).Where("sponsor_id = ?", sponsorID).First(&sponsor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if in.Name != nil {
		sponsor.Name = *in.Name
	}
	if in.LegalName != nil {
		sponsor.LegalName = *in.LegalName
	}
	if in.SponsorType != nil {
		sponsor.SponsorType = *in.SponsorType
	}
	if in.CashValue != nil {
		sponsor.CashValue = *in.CashValue
	}
	if in.InKindValue != nil {
		sponsor.InKindValue = *in.InKindValue
	}
	sponsor.TotalValue = round2(sponsor.CashValue + sponsor.InKindValue)
	if in.ActualCost != nil {
		sponsor.ActualCost = in.ActualCost
	}
	if in.InKindItems != nil {
		sponsor.InKindItems = in.InKindItems
	}
	if in.Events != nil {
		sponsor.Events = in.Events
	}
	if in.DocURL != nil {
		sponsor.DocURL = in.DocURL
	}
	if err := s.DB.WithContext(ctx).Save(&sponsor).Error; err != nil {
		return nil, err
	}
	return &sponsor, nil
}

func (s *Service) GetSponsor(ctx context.Context, sponsorID uuid.UUID) (*domain.Sponsor, error) {
	var sponsor domain.Sponsor
	if err := s.DB.WithContext(ctx).Where("sponsor_id = ?", sponsorID).First(&sponsor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &sponsor, nil
}

func (s *Service) ListSponsors(ctx context.Context) ([]domain.Sponsor, error) {
	var sponsors []domain.Sponsor
	if err := s.DB.WithContext(ctx).Order(`"createdAt" DESC`).Find(&sponsors).Error; err != nil {
		return nil, err
	}
	return sponsors, nil
}

// RecomputeSponsor rescans the sponsor's deliverables and persists the derived
// status and completed_deliverables. total_deliverables is deliberately left
// alone: that counter is maintained incrementally at create/delete time and
// this scan is the ground truth only for completion state. A missing sponsor
// is a loud failure, not a no-op.
//
// Idempotent: re-running with no intervening writes yields the same row.
func (s *Service) RecomputeSponsor(ctx context.Context, sponsorID uuid.UUID) error {
	var sponsor domain.Sponsor
	if err := s.DB.WithContext(ctx).Where("sponsor_id = ?", sponsorID).First(&sponsor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: sponsor %s", domain.ErrNotFound, sponsorID)
		}
		return err
	}

	var deliverables []domain.Deliverable
	if err := s.DB.WithContext(ctx).Where("sponsor_id = ?", sponsorID).Find(&deliverables).Error; err != nil {
		return err
	}

	totalCount := len(deliverables)
	completedCount := 0
	for _, d := range deliverables {
		if d.Status == domain.DeliverableCompleted {
			completedCount++
		}
	}

	status := domain.SponsorInProgress
	if totalCount > 0 && completedCount == totalCount {
		status = domain.SponsorCompleted
	}

	return s.DB.WithContext(ctx).Model(&domain.Sponsor{}).
		Where("sponsor_id = ?", sponsorID).
		Updates(map[string]interface{}{
			"status":                 status,
			"completed_deliverables": completedCount,
		}).Error
}

// RecomputeCosts resums total_estimated_cost over the sponsor's cost-type
// deliverables. Full scan; safe to re-run any number of times, and the source
// of truth over the incremental fast-path adjustments done in transactions.
func (s *Service) RecomputeCosts(ctx context.Context, sponsorID uuid.UUID) error {
	var sponsor domain.Sponsor
	if err := s.DB.WithContext(ctx).Where("sponsor_id = ?", sponsorID).First(&sponsor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: sponsor %s", domain.ErrNotFound, sponsorID)
		}
		return err
	}

	var deliverables []domain.Deliverable
	if err := s.DB.WithContext(ctx).
		Where("sponsor_id = ? AND task_type = ?", sponsorID, domain.TaskTypeCost).
		Find(&deliverables).Error; err != nil {
		return err
	}

	total := 0.0
	for _, d := range deliverables {
		total += d.EstimatedCost
	}

	return s.DB.WithContext(ctx).Model(&domain.Sponsor{}).
		Where("sponsor_id = ?", sponsorID).
		Update("total_estimated_cost", round2(total)).Error
}

// Reconcile runs both full recomputes. Exposed as an operator endpoint so
// counter drift from the incremental fast path can be repaired on demand.
func (s *Service) Reconcile(ctx context.Context, actorRole string, sponsorID uuid.UUID) (*domain.Sponsor, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}
	if err := s.RecomputeSponsor(ctx, sponsorID); err != nil {
		return nil, err
	}
	if err := s.RecomputeCosts(ctx, sponsorID); err != nil {
		return nil, err
	}
	return s.GetSponsor(ctx, sponsorID)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
