package uploads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	lastBucket string
	lastPath   string
	err        error
}

func (f *fakeClient) CreateSignedUploadURL(ctx context.Context, bucket, path string) (string, error) {
	f.lastBucket = bucket
	f.lastPath = path
	if f.err != nil {
		return "", f.err
	}
	return "https://example.com/upload", nil
}

func (f *fakeClient) RemoveObject(ctx context.Context, bucket, path string) error {
	return nil
}

func setupUploadTest(t *testing.T) (*Handlers, *fakeClient) {
	client := &fakeClient{}
	svc := &Service{
		Client:      client,
		SupabaseURL: "https://example.supabase.co",
	}
	h := &Handlers{Service: svc}
	return h, client
}

func TestUploadProofFile_MissingFileName(t *testing.T) {
	h, _ := setupUploadTest(t)
	app := fiber.New()
	app.Post("/api/v1/uploads/proof-file", h.UploadProofFile)

	body, _ := json.Marshal(map[string]string{})
	req := httptest.NewRequest("POST", "/api/v1/uploads/proof-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadProofFile_Success(t *testing.T) {
	h, client := setupUploadTest(t)
	app := fiber.New()
	app.Post("/api/v1/uploads/proof-file", h.UploadProofFile)

	body, _ := json.Marshal(map[string]string{"file_name": "screenshot.png"})
	req := httptest.NewRequest("POST", "/api/v1/uploads/proof-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "proof-files", client.lastBucket)
}

func TestUploadDeliverableFile_Success(t *testing.T) {
	h, client := setupUploadTest(t)
	app := fiber.New()
	app.Post("/api/v1/uploads/deliverable-file", h.UploadDeliverableFile)

	body, _ := json.Marshal(map[string]string{"file_name": "brief.pdf"})
	req := httptest.NewRequest("POST", "/api/v1/uploads/deliverable-file", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "deliverable-files", client.lastBucket)
}

func TestUploadMouDoc_Success(t *testing.T) {
	h, client := setupUploadTest(t)
	app := fiber.New()
	app.Post("/api/v1/uploads/mou-doc", h.UploadMouDoc)

	body, _ := json.Marshal(map[string]string{"file_name": "mou-signed.pdf"})
	req := httptest.NewRequest("POST", "/api/v1/uploads/mou-doc", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "mou-docs", client.lastBucket)
}
