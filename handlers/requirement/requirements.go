package requirement

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/services"
	"github.com/gradtrack/gradtrack-api/utils/middleware"
	"github.com/gradtrack/gradtrack-api/utils/response"
	"github.com/gradtrack/gradtrack-api/utils/validation"
	"gorm.io/gorm"
)

// RequirementHandler handles requirement checklist requests
type RequirementHandler struct {
	db                 *gorm.DB
	validator          *validation.Validator
	requirementService *services.RequirementService
}

// NewRequirementHandler creates a new requirement handler
func NewRequirementHandler(db *gorm.DB, requirementService *services.RequirementService) *RequirementHandler {
	return &RequirementHandler{
		db:                 db,
		validator:          validation.NewValidator(),
		requirementService: requirementService,
	}
}

func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Requirement not found")
	case errors.Is(err, services.ErrValidation):
		return response.ValidationError(c, err)
	default:
		return response.InternalServerError(c, fallback)
	}
}

// ListRequirements handles GET /api/v1/programs/:program_id/requirements
func (h *RequirementHandler) ListRequirements(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	programID, err := parseID(c, "program_id")
	if err != nil {
		return response.BadRequest(c, "Invalid program ID")
	}

	requirements, err := h.requirementService.ListByProgram(c.Context(), userID, programID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Program not found")
		}
		return response.InternalServerError(c, "Failed to fetch requirements")
	}

	return response.Success(c, requirements)
}

// CreateRequirementRequest represents a requirement creation request
type CreateRequirementRequest struct {
	Name  string `json:"name" validate:"required"`
	Notes string `json:"notes,omitempty"`
}

// CreateRequirement handles POST /api/v1/programs/:program_id/requirements
func (h *RequirementHandler) CreateRequirement(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	programID, err := parseID(c, "program_id")
	if err != nil {
		return response.BadRequest(c, "Invalid program ID")
	}

	var req CreateRequirementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	requirement, err := h.requirementService.Create(c.Context(), userID, programID, req.Name, req.Notes)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Program not found")
		}
		return serviceError(c, err, "Failed to create requirement")
	}

	return response.Created(c, requirement)
}

// UpdateRequirementRequest represents a partial requirement update
type UpdateRequirementRequest struct {
	Name      *string `json:"name,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// UpdateRequirement handles PUT /api/v1/requirements/:id
func (h *RequirementHandler) UpdateRequirement(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid requirement ID")
	}

	var req UpdateRequirementRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	requirement, err := h.requirementService.Update(c.Context(), userID, id, services.RequirementUpdates{
		Name:      req.Name,
		Completed: req.Completed,
		Notes:     req.Notes,
	})
	if err != nil {
		return serviceError(c, err, "Failed to update requirement")
	}

	return response.Success(c, requirement)
}

// DeleteRequirement handles DELETE /api/v1/requirements/:id
func (h *RequirementHandler) DeleteRequirement(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid requirement ID")
	}

	if err := h.requirementService.Delete(c.Context(), userID, id); err != nil {
		return serviceError(c, err, "Failed to delete requirement")
	}

	return response.NoContent(c)
}

// AttachDocumentRequest represents a document attach request
type AttachDocumentRequest struct {
	DocumentID uint `json:"document_id" validate:"required"`
}

// AttachDocument handles PUT /api/v1/requirements/:id/document.
// Attaching while a document is already attached replaces the reference.
func (h *RequirementHandler) AttachDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid requirement ID")
	}

	var req AttachDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.DocumentID == 0 {
		return response.BadRequest(c, "Document ID is required")
	}

	requirement, err := h.requirementService.AttachDocument(c.Context(), userID, id, req.DocumentID)
	if err != nil {
		return serviceError(c, err, "Failed to attach document")
	}

	return response.Success(c, requirement)
}

// DetachDocument handles DELETE /api/v1/requirements/:id/document
func (h *RequirementHandler) DetachDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid requirement ID")
	}

	requirement, err := h.requirementService.DetachDocument(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, err, "Failed to detach document")
	}

	return response.Success(c, requirement)
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
