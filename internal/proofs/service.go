package proofs

import (
	"context"
	"time"

	"sponsorhub-backend/internal/constants"
	"sponsorhub-backend/internal/database"
	"sponsorhub-backend/internal/deliverables"
	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/sponsors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Sponsors *sponsors.Service
}

type SubmitProofInput struct {
	DeliverableID uuid.UUID
	UserID        uuid.UUID
	UserEmail     string
	ProofFileURLs []string
	ProofMessage  string
}

// SubmitProof records a department's proof of completion. The deliverable's
// status is left untouched until an approval decision.
func (s *Service) SubmitProof(ctx context.Context, actorRole string, in SubmitProofInput) (*domain.Proof, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}

	var deliverable domain.Deliverable
	if err := s.DB.WithContext(ctx).Where("deliverable_id = ?", in.DeliverableID).First(&deliverable).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	proof := &domain.Proof{
		DeliverableID: in.DeliverableID,
		UserID:        in.UserID,
		UserEmail:     in.UserEmail,
		ProofFileURLs: in.ProofFileURLs,
		ProofMessage:  in.ProofMessage,
		Status:        domain.ProofPending,
		SubmittedAt:   time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(proof).Error; err != nil {
		return nil, err
	}
	return proof, nil
}

// Resolve applies an approval decision. The proof update, the assignment-entry
// update matched by the submitter's email, and the reduced deliverable status
// are all written in one transaction, so two departments' decisions on the
// same deliverable cannot lose each other's assignment change. The sponsor
// recompute runs after the commit.
func (s *Service) Resolve(ctx context.Context, actorRole string, proofID uuid.UUID, decision string, reason *string) (*domain.Proof, error) {
	if actorRole == constants.Viewer {
		return nil, domain.ErrPermissionDenied
	}
	if decision != domain.ProofApproved && decision != domain.ProofRejected {
		return nil, domain.ErrInvalidState
	}

	var proof domain.Proof
	var sponsorID uuid.UUID
	err := database.Transact(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Where("proof_id = ?", proofID).First(&proof).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}
		if proof.Status != domain.ProofPending {
			return domain.ErrInvalidState
		}

		var deliverable domain.Deliverable
		if err := tx.Where("deliverable_id = ?", proof.DeliverableID).First(&deliverable).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return domain.ErrNotFound
			}
			return err
		}

		now := time.Now()
		proof.Status = decision
		proof.Reason = reason
		proof.ReviewedAt = &now
		if err := tx.Save(&proof).Error; err != nil {
			return err
		}

		assignmentStatus := domain.AssignmentAccepted
		if decision == domain.ProofRejected {
			assignmentStatus = domain.AssignmentRejected
		}
		for i := range deliverable.Assignments {
			if deliverable.Assignments[i].UserEmail == proof.UserEmail {
				deliverable.Assignments[i].Status = assignmentStatus
			}
		}

		deliverable.Status = deliverables.ReduceStatus(deliverable.Assignments)
		sponsorID = deliverable.SponsorID
		return tx.Save(&deliverable).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.Sponsors.RecomputeSponsor(ctx, sponsorID); err != nil {
		log.Error().Err(err).Str("sponsor_id", sponsorID.String()).Msg("sponsor recompute after proof decision failed")
	}
	return &proof, nil
}

func (s *Service) ListByDeliverable(ctx context.Context, deliverableID uuid.UUID) ([]domain.Proof, error) {
	var proofs []domain.Proof
	if err := s.DB.WithContext(ctx).
		Where("deliverable_id = ?", deliverableID).
		Order("submitted_at DESC").
		Find(&proofs).Error; err != nil {
		return nil, err
	}
	return proofs, nil
}
