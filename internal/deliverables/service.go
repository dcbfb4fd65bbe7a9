package deliverables

import (
	"context"
	"math"
	"time"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/database"
	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/sponsors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FileRemover abstracts object-storage deletion for the post-commit cleanup
// step on deliverable delete (production Supabase client or test doubles).
type FileRemover interface {
	RemoveObject(ctx context.Context, bucket, path string) error
}

// FileBucket is where deliverable attachments live.
const FileBucket = "deliverable-files"

type Service struct {
	DB       *gorm.DB
	Sponsors *sponsors.Service
	Storage  FileRemover
}

type CreateDeliverableInput struct {
	SponsorID     uuid.UUID
	Title         string
	Description   string
	DueDate       *time.Time
	Priority      string
	ProofRequired bool
	TaskType      string
	CostType      *string
	EstimatedCost float64
	Assignments   []domain.Assignment
	FileURL       *string
}

// Create writes the deliverable and, in the same transaction, bumps the
// sponsor's total_deliverables and total_estimated_cost fast-path counters.
// The post-commit full recomputes are the source of truth over those
// increments; a recompute failure is logged and does not undo the commit.
func (s *Service) Create(ctx context.Context, actorRole string, in CreateDeliverableInput) (*domain.Deliverable, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}
	if in.TaskType == "" {
		in.TaskType = domain.TaskTypeStandard
	}
	if in.TaskType != domain.TaskTypeStandard && in.TaskType != domain.TaskTypeCost {
		return nil, domain.ErrInvalidState
	}
	if in.CostType != nil && !domain.ValidCostType(*in.CostType) {
		return nil, domain.ErrInvalidState
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}

	deliverable := &domain.Deliverable{
		SponsorID:         in.SponsorID,
		Title:             in.Title,
		Description:       in.Description,
		DueDate:           in.DueDate,
		Priority:          priority,
		ProofRequired:     in.ProofRequired,
		TaskType:          in.TaskType,
		CostType:          in.CostType,
		EstimatedCost:     in.EstimatedCost,
		Status:            domain.DeliverablePending,
		Assignments:       in.Assignments,
		AdditionalFileURL: in.FileURL,
	}

	err := database.Transact(ctx, s.DB, func(tx *gorm.DB) error {
		var sponsor domain.Sponsor
		if err := tx.Where("sponsor_id = ?", in.SponsorID).First(&sponsor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Create(deliverable).Error; err != nil {
			return err
		}
		sponsor.TotalDeliverables++
		sponsor.TotalEstimatedCost = floor0(sponsor.TotalEstimatedCost + deliverable.EstimatedCost)
		return tx.Save(&sponsor).Error
	})
	if err != nil {
		return nil, err
	}

	s.recompute(ctx, in.SponsorID)
	return deliverable, nil
}

type UpdateDeliverableInput struct {
	Title         *string
	Description   *string
	DueDate       *time.Time
	Priority      *string
	ProofRequired *bool
	EstimatedCost *float64
	FileURL       *string
}

// Update patches deliverable fields; when estimated_cost changes, the
// sponsor's total_estimated_cost is adjusted by the delta in the same
// transaction. Aborts with a typed failure if either row is missing.
func (s *Service) Update(ctx context.Context, actorRole string, deliverableID uuid.UUID, in UpdateDeliverableInput) (*domain.Deliverable, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}

	var deliverable domain.Deliverable
	err := database.Transact(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Where("deliverable_id = ?", deliverableID).First(&deliverable).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		var sponsor domain.Sponsor
		if err := tx.Where("sponsor_id = ?", deliverable.SponsorID).First(&sponsor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		if in.Title != nil {
			deliverable.Title = *in.Title
		}
		if in.Description != nil {
			deliverable.Description = *in.Description
		}
		if in.DueDate != nil {
			deliverable.DueDate = in.DueDate
		}
		if in.Priority != nil {
			deliverable.Priority = *in.Priority
		}
		if in.ProofRequired != nil {
			deliverable.ProofRequired = *in.ProofRequired
		}
		if in.FileURL != nil {
			deliverable.AdditionalFileURL = in.FileURL
		}
		if in.EstimatedCost != nil {
			delta := *in.EstimatedCost - deliverable.EstimatedCost
			deliverable.EstimatedCost = *in.EstimatedCost
			sponsor.TotalEstimatedCost = floor0(sponsor.TotalEstimatedCost + delta)
			if err := tx.Save(&sponsor).Error; err != nil {
				return err
			}
		}
		return tx.Save(&deliverable).Error
	})
	if err != nil {
		return nil, err
	}

	s.recompute(ctx, deliverable.SponsorID)
	return &deliverable, nil
}

// Delete removes a deliverable that is still pending or overdue and decrements
// the sponsor's counters, floored at 0. Any other status fails with
// ErrInvalidState. The attached file is removed from object storage after the
// commit as a detached best-effort step: a storage failure is logged and never
// re-opens the transaction.
func (s *Service) Delete(ctx context.Context, actorRole string, deliverableID uuid.UUID) error {
	if actorRole == constants.Viewer {
		return domain.ErrPermissionDenied
	}

	var fileURL *string
	var sponsorID uuid.UUID
	err := database.Transact(ctx, s.DB, func(tx *gorm.DB) error {
		var deliverable domain.Deliverable
		if err := tx.Where("deliverable_id = ?", deliverableID).First(&deliverable).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		if deliverable.Status != domain.DeliverablePending && deliverable.Status != domain.DeliverableOverdue {
			return domain.ErrInvalidState
		}
		var sponsor domain.Sponsor
		if err := tx.Where("sponsor_id = ?", deliverable.SponsorID).First(&sponsor).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		sponsor.TotalDeliverables = int(floor0(float64(sponsor.TotalDeliverables - 1)))
		sponsor.TotalEstimatedCost = floor0(sponsor.TotalEstimatedCost - deliverable.EstimatedCost)
		if err := tx.Save(&sponsor).Error; err != nil {
			return err
		}

		fileURL = deliverable.AdditionalFileURL
		sponsorID = deliverable.SponsorID
		return tx.Delete(&deliverable).Error
	})
	if err != nil {
		return err
	}

	if fileURL != nil && *fileURL != "" && s.Storage != nil {
		if err := s.Storage.RemoveObject(ctx, FileBucket, *fileURL); err != nil {
			log.Warn().Err(err).Str("deliverable_id", deliverableID.String()).
				Str("path", *fileURL).Msg("storage cleanup after delete failed")
		}
	}

	s.recompute(ctx, sponsorID)
	return nil
}

func (s *Service) Get(ctx context.Context, deliverableID uuid.UUID) (*domain.Deliverable, error) {
	var deliverable domain.Deliverable
	if err := s.DB.WithContext(ctx).Where("deliverable_id = ?", deliverableID).First(&deliverable).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &deliverable, nil
}

// ListBySponsor returns the sponsor's deliverables, newest first, after
// sweeping pending ones past their due date to overdue.
func (s *Service) ListBySponsor(ctx context.Context, sponsorID uuid.UUID) ([]domain.Deliverable, error) {
	if err := s.MarkOverdue(ctx); err != nil {
		return nil, err
	}
	var deliverables []domain.Deliverable
	if err := s.DB.WithContext(ctx).
		Where("sponsor_id = ?", sponsorID).
		Order(`"createdAt" DESC`).
		Find(&deliverables).Error; err != nil {
		return nil, err
	}
	return deliverables, nil
}

// MarkOverdue flips pending deliverables whose due date has passed to overdue.
// The assignment reducer never produces this status; only this sweep does.
func (s *Service) MarkOverdue(ctx context.Context) error {
	return s.DB.WithContext(ctx).Model(&domain.Deliverable{}).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", domain.DeliverablePending, time.Now()).
		Update("status", domain.DeliverableOverdue).Error
}

// recompute runs the post-commit full recomputes. Failures here do not flip
// the already-committed mutation to failure; consistency is restored on the
// next triggering event or an explicit reconcile.
func (s *Service) recompute(ctx context.Context, sponsorID uuid.UUID) {
	if err := s.Sponsors.RecomputeSponsor(ctx, sponsorID); err != nil {
		log.Error().Err(err).Str("sponsor_id", sponsorID.String()).Msg("sponsor recompute after commit failed")
	}
	if err := s.Sponsors.RecomputeCosts(ctx, sponsorID); err != nil {
		log.Error().Err(err).Str("sponsor_id", sponsorID.String()).Msg("sponsor cost resum after commit failed")
	}
}

func floor0(v float64) float64 {
	return math.Max(0, math.Round(v*100)/100)
}
