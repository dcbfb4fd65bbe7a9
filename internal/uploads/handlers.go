package uploads

import (
	"sponsorhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles upload handlers with the service.
type Handlers struct {
	Service *Service
}

type uploadRequest struct {
	FileName string `json:"file_name"`
}

// UploadProofFile POST /api/v1/uploads/proof-file
func (h *Handlers) UploadProofFile(c *fiber.Ctx) error {
	return h.signedURL(c, ProofBucket)
}

// UploadDeliverableFile POST /api/v1/uploads/deliverable-file
func (h *Handlers) UploadDeliverableFile(c *fiber.Ctx) error {
	return h.signedURL(c, DeliverableBucket)
}

// UploadMouDoc POST /api/v1/uploads/mou-doc
func (h *Handlers) UploadMouDoc(c *fiber.Ctx) error {
	return h.signedURL(c, MouBucket)
}

func (h *Handlers) signedURL(c *fiber.Ctx, bucket string) error {
	var req uploadRequest
	if err := c.BodyParser(&req); err != nil || req.FileName == "" {
		return response.Error(c, "file_name is required", 400, nil)
	}

	res, err := h.Service.GetSignedUploadURL(c.Context(), bucket, req.FileName)
	if err != nil {
		return response.Error(c, "Failed to generate upload URL", 500, nil)
	}
	return response.Success(c, "Upload URL generated", res, nil)
}
