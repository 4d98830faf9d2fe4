package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/model"
	authutil "github.com/gradtrack/gradtrack-api/utils/auth"
	"github.com/gradtrack/gradtrack-api/utils/middleware"
	"github.com/gradtrack/gradtrack-api/utils/response"
	"github.com/gradtrack/gradtrack-api/utils/validation"
)

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name string `json:"name,omitempty"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, userResponse(user))
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name != "" {
		user.Name = validation.SanitizeString(req.Name)
	}

	if err := h.db.Save(user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, userResponse(user))
}

// ChangeEmailRequest represents an email change request
type ChangeEmailRequest struct {
	NewEmail string `json:"new_email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangeEmail updates the user's email after re-verifying their password
func (h *AuthHandler) ChangeEmail(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangeEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.NewEmail == "" || req.Password == "" {
		return response.BadRequest(c, "New email and password are required")
	}
	if !validation.ValidateEmail(req.NewEmail) {
		return response.BadRequest(c, "Invalid email format")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return response.Unauthorized(c, "Password is incorrect")
	}

	// Email must stay unique
	var existing model.User
	if err := h.db.Where("email = ? AND id != ?", req.NewEmail, user.ID).First(&existing).Error; err == nil {
		return response.Conflict(c, "Email is already in use")
	}

	if err := h.db.Model(user).Update("email", req.NewEmail).Error; err != nil {
		return response.InternalServerError(c, "Failed to update email")
	}

	user.Email = req.NewEmail
	return response.Success(c, userResponse(user))
}
