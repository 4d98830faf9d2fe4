package document

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/model"
	"github.com/gradtrack/gradtrack-api/services"
	"github.com/gradtrack/gradtrack-api/utils/middleware"
	"github.com/gradtrack/gradtrack-api/utils/response"
	"github.com/gradtrack/gradtrack-api/utils/validation"
	"gorm.io/gorm"
)

// DocumentHandler handles document-related requests
type DocumentHandler struct {
	db              *gorm.DB
	validator       *validation.Validator
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(db *gorm.DB, documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		db:              db,
		validator:       validation.NewValidator(),
		documentService: documentService,
	}
}

func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Document not found")
	case errors.Is(err, services.ErrValidation):
		return response.ValidationError(c, err)
	default:
		return response.InternalServerError(c, fallback)
	}
}

// ListDocuments handles GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	docType := model.DocumentType(c.Query("type", ""))
	if docType != "" && !docType.Valid() {
		return response.BadRequest(c, "Invalid type. Must be one of: sop, ps, cv, writing-sample, custom")
	}
	status := model.DocumentStatus(c.Query("status", ""))
	if status != "" && !status.Valid() {
		return response.BadRequest(c, "Invalid status. Must be draft or final")
	}

	documents, err := h.documentService.List(c.Context(), userID, docType, status)
	if err != nil {
		return serviceError(c, err, "Failed to fetch documents")
	}

	return response.Success(c, documents)
}

// GetDocument handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	document, err := h.documentService.Get(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch document")
	}

	return response.Success(c, document)
}

// CreateDocumentRequest represents a document creation request
type CreateDocumentRequest struct {
	Name               string `json:"name" validate:"required"`
	Type               string `json:"type" validate:"required"`
	Status             string `json:"status,omitempty"`
	WordCount          *int   `json:"word_count,omitempty"`
	AssignedProgramIDs []uint `json:"assigned_program_ids,omitempty"`
}

// CreateDocument handles POST /api/v1/documents
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	docType := model.DocumentType(req.Type)
	if !docType.Valid() {
		return response.BadRequest(c, "Invalid type. Must be one of: sop, ps, cv, writing-sample, custom")
	}
	status := model.DocumentStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		return response.BadRequest(c, "Invalid status. Must be draft or final")
	}
	if req.WordCount != nil && *req.WordCount < 0 {
		return response.BadRequest(c, "Word count must not be negative")
	}

	document := model.Document{
		Name:      validation.SanitizeString(req.Name),
		Type:      docType,
		Status:    status,
		WordCount: req.WordCount,
	}

	info, err := h.documentService.Create(c.Context(), userID, &document, req.AssignedProgramIDs)
	if err != nil {
		return serviceError(c, err, "Failed to create document")
	}

	return response.Created(c, info)
}

// UpdateDocumentRequest represents a partial document update.
// assigned_program_ids replaces the full assignment set when present;
// omitting it leaves the assignments untouched.
type UpdateDocumentRequest struct {
	Name               *string `json:"name,omitempty"`
	Type               *string `json:"type,omitempty"`
	Status             *string `json:"status,omitempty"`
	WordCount          *int    `json:"word_count,omitempty"`
	AssignedProgramIDs *[]uint `json:"assigned_program_ids,omitempty"`
}

// UpdateDocument handles PUT /api/v1/documents/:id
func (h *DocumentHandler) UpdateDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	var req UpdateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.WordCount != nil && *req.WordCount < 0 {
		return response.BadRequest(c, "Word count must not be negative")
	}

	updates := services.DocumentUpdates{
		Name:               req.Name,
		WordCount:          req.WordCount,
		AssignedProgramIDs: req.AssignedProgramIDs,
	}
	if req.Type != nil {
		docType := model.DocumentType(*req.Type)
		updates.Type = &docType
	}
	if req.Status != nil {
		status := model.DocumentStatus(*req.Status)
		updates.Status = &status
	}

	info, err := h.documentService.Update(c.Context(), userID, id, updates)
	if err != nil {
		return serviceError(c, err, "Failed to update document")
	}

	return response.Success(c, info)
}

// DeleteDocument handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	if err := h.documentService.Delete(c.Context(), userID, id); err != nil {
		return serviceError(c, err, "Failed to delete document")
	}

	return response.NoContent(c)
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
