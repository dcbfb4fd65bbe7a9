package sponsors

import (
	"errors"

	"sponsorhub-backend/internal/domain"
	"sponsorhub-backend/internal/middleware"
	"sponsorhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Handlers struct {
	Service *Service
}

// CreateSponsor POST /api/v1/sponsors/create-sponsor
func (h *Handlers) CreateSponsor(c *fiber.Ctx) error {
	var body struct {
		Name        string         `json:"name"`
		LegalName   string         `json:"legal_name"`
		SponsorType string         `json:"sponsor_type"`
		CashValue   float64        `json:"cash_value"`
		InKindValue float64        `json:"in_kind_value"`
		InKindItems datatypes.JSON `json:"in_kind_items"`
		Events      datatypes.JSON `json:"events"`
		DocURL      *string        `json:"doc_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.Name == "" || body.SponsorType == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.CashValue < 0 || body.InKindValue < 0 {
		return response.Error(c, "Sponsorship values must be non-negative", 400, nil)
	}

	sponsor, err := h.Service.CreateSponsor(c.Context(), middleware.GetRole(c), CreateSponsorInput{
		Name:        body.Name,
		LegalName:   body.LegalName,
		SponsorType: body.SponsorType,
		CashValue:   body.CashValue,
		InKindValue: body.InKindValue,
		InKindItems: body.InKindItems,
		Events:      body.Events,
		DocURL:      body.DocURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.SuccessCreated(c, "Sponsor created successfully", sponsor, nil)
}

// ListSponsors GET /api/v1/sponsors/get-all-sponsors
func (h *Handlers) ListSponsors(c *fiber.Ctx) error {
	sponsors, err := h.Service.ListSponsors(c.Context())
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Sponsors fetched successfully", sponsors, nil)
}

// ViewSponsor GET /api/v1/sponsors/get-sponsor/:sponsor_id
func (h *Handlers) ViewSponsor(c *fiber.Ctx) error {
	sponsorID, err := uuid.Parse(c.Params("sponsor_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for sponsor_id", 400, nil)
	}
	sponsor, err := h.Service.GetSponsor(c.Context(), sponsorID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Sponsor fetched successfully", sponsor, nil)
}

// UpdateSponsor PATCH /api/v1/sponsors/update-sponsor/:sponsor_id
func (h *Handlers) UpdateSponsor(c *fiber.Ctx) error {
	sponsorID, err := uuid.Parse(c.Params("sponsor_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for sponsor_id", 400, nil)
	}
	var body struct {
		Name        *string        `json:"name"`
		LegalName   *string        `json:"legal_name"`
		SponsorType *string        `json:"sponsor_type"`
		CashValue   *float64       `json:"cash_value"`
		InKindValue *float64       `json:"in_kind_value"`
		ActualCost  *float64       `json:"actual_cost"`
		InKindItems datatypes.JSON `json:"in_kind_items"`
		Events      datatypes.JSON `json:"events"`
		DocURL      *string        `json:"doc_url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	sponsor, err := h.Service.UpdateSponsor(c.Context(), middleware.GetRole(c), sponsorID, UpdateSponsorInput{
		Name:        body.Name,
		LegalName:   body.LegalName,
		SponsorType: body.SponsorType,
		CashValue:   body.CashValue,
		InKindValue: body.InKindValue,
		ActualCost:  body.ActualCost,
		InKindItems: body.InKindItems,
		Events:      body.Events,
		DocURL:      body.DocURL,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Sponsor updated successfully", sponsor, nil)
}

// Reconcile POST /api/v1/sponsors/reconcile/:sponsor_id — operator repair for
// counter drift: full recompute of completion state and cost totals.
func (h *Handlers) Reconcile(c *fiber.Ctx) error {
	sponsorID, err := uuid.Parse(c.Params("sponsor_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for sponsor_id", 400, nil)
	}
	sponsor, err := h.Service.Reconcile(c.Context(), middleware.GetRole(c), sponsorID)
	if err != nil {
		return respondError(c, err)
	}
	return response.Success(c, "Sponsor reconciled successfully", sponsor, nil)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return response.Error(c, "Sponsor not found", 404, nil)
	case errors.Is(err, domain.ErrPermissionDenied):
		return response.Error(c, err.Error(), 403, nil)
	case errors.Is(err, domain.ErrInvalidState):
		return response.Error(c, err.Error(), 400, nil)
	case errors.Is(err, domain.ErrTransactionConflict):
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}
