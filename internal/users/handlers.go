package users

import (
	"sponsorhub-backend/internal/middleware"
	"sponsorhub-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
}

// CreateUser POST /api/v1/users/create-user
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var in CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Missing required fields", 400, nil)
	}
	u, err := h.Service.CreateUser(c.Context(), in)
	if err != nil {
		return respondUserError(c, err)
	}
	return response.SuccessCreated(c, "User created successfully", u, nil)
}

// UpdateUser PUT /api/v1/users/update-user/:id
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", 400, nil)
	}
	var in UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return response.Error(c, "Missing update fields", 400, nil)
	}
	u, err := h.Service.UpdateUser(c.Context(), userID, in)
	if err != nil {
		return respondUserError(c, err)
	}
	return response.Success(c, "User updated successfully", u, nil)
}

// ViewUser GET /api/v1/users/view-user/:id
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", 400, nil)
	}
	u, err := h.Service.GetUser(c.Context(), userID)
	if err != nil {
		return respondUserError(c, err)
	}
	return response.Success(c, "User fetched successfully", u, nil)
}

// UpdateRole PATCH /api/v1/users/update-role
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
		Role   string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" || body.Role == "" {
		return response.Error(c, "user_id and role are required", 400, nil)
	}
	targetID, err := uuid.Parse(body.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", 400, nil)
	}
	actor, _ := middleware.GetUser(c).(map[string]interface{})
	actorID, _ := actor["user_id"].(string)

	u, err := h.Service.UpdateRole(c.Context(), actorID, targetID, body.Role)
	if err != nil {
		return respondUserError(c, err)
	}
	return response.Success(c, "Role updated successfully", u, nil)
}

// RemoveUser DELETE /api/v1/users/remove-user
func (h *Handlers) RemoveUser(c *fiber.Ctx) error {
	var body struct {
		UserID string `json:"user_id"`
	}
	if err := c.BodyParser(&body); err != nil || body.UserID == "" {
		return response.Error(c, "user_id is required", 400, nil)
	}
	targetID, err := uuid.Parse(body.UserID)
	if err != nil {
		return response.Error(c, "Invalid user ID format (must be a valid UUID)", 400, nil)
	}
	actor, _ := middleware.GetUser(c).(map[string]interface{})
	actorID, _ := actor["user_id"].(string)

	if err := h.Service.RemoveUser(c.Context(), actorID, targetID); err != nil {
		return respondUserError(c, err)
	}
	return response.Success(c, "User removed successfully", nil, nil)
}

func respondUserError(c *fiber.Ctx, err error) error {
	switch err {
	case ErrUserNotFound:
		return response.Error(c, err.Error(), 404, nil)
	case ErrCannotModifyOwnRole, ErrMustKeepOneAdmin:
		return response.Error(c, err.Error(), 403, nil)
	case ErrEmailRegistered, ErrInvalidEmailFormat, ErrInvalidPassword, ErrInvalidFullname, ErrInvalidRole:
		return response.Error(c, err.Error(), 400, nil)
	}
	return response.Error(c, "Internal Server Error", 500, nil)
}
