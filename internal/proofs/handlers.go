package proofs

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

// SubmitProof POST /api/v1/proofs/submit-proof
func (h *Handlers) SubmitProof(c *fiber.Ctx) error {
	var body struct {
		DeliverableID string   `json:"deliverable_id"`
		ProofFileURLs []string `json:"proof_file_urls"`
		ProofMessage  string   `json:"proof_message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.DeliverableID == "" || len(body.ProofFileURLs) == 0 {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	deliverableID, err := uuid.Parse(body.DeliverableID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for deliverable_id", 400, nil)
	}

	actor := getActor(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	userID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return response.Error(c, "Invalid session user", 401, nil)
	}

	proof, err := h.Service.SubmitProof(c.Context(), actor.Role, SubmitProofInput{
		DeliverableID: deliverableID,
		UserID:        userID,
		UserEmail:     actor.Email,
		ProofFileURLs: body.ProofFileURLs,
		ProofMessage:  body.ProofMessage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return response.SuccessCreated(c, "Proof submitted successfully", proof, nil)
}

// ResolveProof POST /api/v1/proofs/resolve-proof
func (h *Handlers) ResolveProof(c *fiber.Ctx) error {
	var body struct {
		ProofID  string  `json:"proof_id"`
		Decision string  `json:"decision"`
		Reason   *string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	if body.ProofID == "" || body.Decision == "" {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	proofID, err := uuid.Parse(body.ProofID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for proof_id", 400, nil)
	}
	if body.Decision != domain.ProofApproved && body.Decision != domain.ProofRejected {
		return response.Error(c, "decision must be approved or rejected", 400, nil)
	}

	proof, err := h.Service.Resolve(c.Context(), middleware.GetRole(c), proofID, body.Decision, body.Reason)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			return response.Error(c, "Proof has already been reviewed", 400, nil)
		}
		return respondError(c, err)
	}
	return response.Success(c, "Proof "+proof.Status, proof, nil)
}

// ListDeliverableProofs GET /api/v1/proofs/get-deliverable-proofs/:deliverable_id
func (h *Handlers) ListDeliverableProofs(c *fiber.Ctx) error {
	deliverableID, err := uuid.Parse(c.Params("deliverable_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for deliverable_id", 400, nil)
	}
	proofs, err := h.Service.ListByDeliverable(c.Context(), deliverableID)
	if err != nil {
		return response.Error(c, "Internal Server Error", 500, nil)
	}
	return response.Success(c, "Proofs fetched successfully", proofs, nil)
}

type proofActor struct {
	UserID string
	Email  string
	Role   string
}

func getActor(c *fiber.Ctx) *proofActor {
	u := middleware.GetUser(c)
	if u == nil {
		return nil
	}
	m, ok := u.(map[string]interface{})
	if !ok {
		return nil
	}
	userID, _ := m["user_id"].(string)
	email, _ := m["email"].(string)
	role, _ := m["role"].(string)
	return &proofActor{UserID: userID, Email: email, Role: role}
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
