package deliverables

import (
	"errors"
	"time"

	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/middleware"
	"sponsorhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateDeliverable POST /api/v1/deliverables/create-deliverable
func (h *Handlers) CreateDeliverable(c *fiber.Ctx) error {
	var body struct {
		SponsorID     string              `json:"sponsor_id"`
		Title         string              `json:"title"`
		Description   string              `json:"description"`
		DueDate       *time.Time          `json:"due_date"`
		Priority      string              `json:"priority"`
		ProofRequired *bool               `json:"proof_required"`
		TaskType      string              `json:"task_type"`
		CostType      *string             `json:"cost_type"`
		EstimatedCost float64             `json:"estimated_cost"`
		Assignments   []domain.Assignment `json:"assignments"`
		FileURL       *string             `json:"file_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.SponsorID == "" || body.Title == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	sponsorID, err := uuid.Parse(body.SponsorID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for sponsor_id", 400, nil)
	}
	if body.EstimatedCost < 0 {
		return response.Error(c, "estimated_cost must be non-negative", 400, nil)
	}
	proofRequired := true
	if body.ProofRequired != nil {
		proofRequired = *body.ProofRequired
	}

	deliverable, err := h.Service.Create(c.Context(), middleware.GetRole(c), CreateDeliverableInput{
		SponsorID:     sponsorID,
		Title:         body.Title,
		Description:   body.Description,
		DueDate:       body.DueDate,
		Priority:      body.Priority,
		ProofRequired: proofRequired,
		TaskType:      body.TaskType,
		CostType:      body.CostType,
		EstimatedCost: body.EstimatedCost,
		Assignments:   body.Assignments,
		FileURL:       body.FileURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.SuccessCreated(c, "Deliverable created successfully", deliverable, nil)
}

// GetDeliverable GET /api/v1/deliverables/get-deliverable/:deliverable_id
func (h *Handlers) GetDeliverable(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("deliverable_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for deliverable_id", 400, nil)
	}
	deliverable, err := h.Service.Get(c.Context(), deliverableID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Deliverable fetched successfully", deliverable, nil)
}

// GetSponsorDeliverables GET /api/v1/deliverables/get-sponsor-deliverables/:sponsor_id
func (h *Handlers) GetSponsorDeliverables(c *fiber.Ctx) error {
	sponsorID, err := uuid.Parse(c.Params("sponsor_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for sponsor_id", 400, nil)
	}
	deliverables, err := h.Service.ListBySponsor(c.Context(), sponsorID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Deliverables fetched successfully", deliverables, nil)
}

// UpdateDeliverable PUT /api/v1/deliverables/update-deliverable/:deliverable_id
func (h *Handlers) UpdateDeliverable(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("deliverable_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for deliverable_id", 400, nil)
	}
	var body struct {
		Title         *string    `json:"title"`
		Description   *string    `json:"description"`
		DueDate       *time.Time `json:"due_date"`
		Priority      *string    `json:"priority"`
		ProofRequired *bool      `json:"proof_required"`
		EstimatedCost *float64   `json:"estimated_cost"`
		FileURL       *string    `json:"file_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.EstimatedCost != nil && *body.EstimatedCost < 0 {
		return response.Error(c, "estimated_cost must be non-negative", 400, nil)
	}

	deliverable, err := h.Service.Update(c.Context(), middleware.GetRole(c), deliverableID, UpdateDeliverableInput{
		Title:         body.Title,
		Description:   body.Description,
		DueDate:       body.DueDate,
		Priority:      body.Priority,
		ProofRequired: body.ProofRequired,
		EstimatedCost: body.EstimatedCost,
		FileURL:       body.FileURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Deliverable updated successfully", deliverable, nil)
}

// DeleteDeliverable DELETE /api/v1/deliverables/delete-deliverable/:deliverable_id
func (h *Handlers) DeleteDeliverable(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("deliverable_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for deliverable_id", 400, nil)
	}
	if err := h.Service.Delete(c.Context(), middleware.GetRole(c), deliverableID); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			return response.Error(c, "Only pending or overdue deliverables can be deleted", 400, nil)
		}
		return respondError(c, err)
	}
	return response.Success(c, "Deliverable deleted successfully", nil, nil)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.Error(c, err.Error(), 404, nil)
	case errors.Is(err, domain.ErrPermissionDenied):
		return response.Error(c, err.Error(), 403, nil)
	case errors.Is(err, domain.ErrInvalidState):
		return response.Error(c, err.Error(), 400, nil)
	case errors.Is(err, domain.ErrTransactionConflict):
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}
