package costs

import (
	"errors"

	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/middleware"
	"sponsorhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// SubmitCost POST /api/v1/costs/submit-cost
func (h *Handlers) SubmitCost(c *fiber.Ctx) error {
	var body struct {
		DeliverableID string                `json:"deliverable_id"`
		SponsorID     string                `json:"sponsor_id"`
		CostType      string                `json:"cost_type"`
		PaymentType   *string               `json:"payment_type"`
		Printable     *PrintableDetails     `json:"printable"`
		People        []AccommodationPerson `json:"people"`
		Meals         []FoodMeal            `json:"meals"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.DeliverableID == "" || body.SponsorID == "" || body.CostType == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	deliverableID, err := uuid.Parse(body.DeliverableID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for deliverable_id", 400, nil)
	}
	sponsorID, err := uuid.Parse(body.SponsorID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for sponsor_id", 400, nil)
	}
	if !domain.ValidCostType(body.CostType) {
		return response.Error(c, "Unrecognized cost_type", 400, nil)
	}

	deliverable, err := h.Service.SubmitCost(c.Context(), middleware.GetRole(c), SubmitCostInput{
		DeliverableID: deliverableID,
		SponsorID:     sponsorID,
		CostType:      body.CostType,
		PaymentType:   body.PaymentType,
		Printable:     body.Printable,
		People:        body.People,
		Meals:         body.Meals,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.Error(c, "Deliverable not found for this sponsor", 404, nil)
		case errors.Is(err, domain.ErrPermissionDenied):
			return response.Error(c, err.Error(), 403, nil)
		case errors.Is(err, domain.ErrInvalidState):
			return response.Error(c, "Cost details do not match cost_type", 400, nil)
		case errors.Is(err, domain.ErrTransactionConflict):
			return response.Error(c, err.Error(), 500, nil)
		}
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Cost submitted successfully", deliverable, nil)
}
