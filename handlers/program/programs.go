package program

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/model"
	"github.com/gradtrack/gradtrack-api/services"
	"github.com/gradtrack/gradtrack-api/utils/deadline"
	"github.com/gradtrack/gradtrack-api/utils/middleware"
	"github.com/gradtrack/gradtrack-api/utils/response"
	"github.com/gradtrack/gradtrack-api/utils/validation"
	"gorm.io/gorm"
)

// ProgramHandler handles program-related requests
type ProgramHandler struct {
	db             *gorm.DB
	validator      *validation.Validator
	programService *services.ProgramService
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(db *gorm.DB, programService *services.ProgramService) *ProgramHandler {
	return &ProgramHandler{
		db:             db,
		validator:      validation.NewValidator(),
		programService: programService,
	}
}

// ProgramResponse is a program row plus the computed deadline urgency
type ProgramResponse struct {
	model.Program
	DeadlineUrgency deadline.Urgency `json:"deadline_urgency"`
}

func programResponse(p model.Program, now time.Time) ProgramResponse {
	return ProgramResponse{
		Program:         p,
		DeadlineUrgency: deadline.Classify(p.Deadline, now),
	}
}

func serviceError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return response.NotFound(c, "Program not found")
	case errors.Is(err, services.ErrValidation):
		return response.ValidationError(c, err)
	default:
		return response.InternalServerError(c, fallback)
	}
}

// ListPrograms handles GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	status := model.ProgramStatus(c.Query("status", ""))
	if status != "" && !status.Valid() {
		return response.BadRequest(c, "Invalid status. Must be one of: researching, applying, submitted, decision")
	}

	programs, err := h.programService.List(c.Context(), userID, status)
	if err != nil {
		return serviceError(c, err, "Failed to fetch programs")
	}

	now := time.Now()
	res := make([]ProgramResponse, len(programs))
	for i, p := range programs {
		res[i] = programResponse(p, now)
	}
	return response.Success(c, res)
}

// GetProgram handles GET /api/v1/programs/:id
func (h *ProgramHandler) GetProgram(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid program ID")
	}

	program, err := h.programService.Get(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, err, "Failed to fetch program")
	}

	return response.Success(c, programResponse(*program, time.Now()))
}

// CreateProgramRequest represents a program creation request
type CreateProgramRequest struct {
	University string   `json:"university" validate:"required"`
	Department string   `json:"department" validate:"required"`
	Deadline   string   `json:"deadline" validate:"required"` // RFC3339
	Status     string   `json:"status,omitempty"`
	Fee        *float64 `json:"fee,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// CreateProgram handles POST /api/v1/programs
func (h *ProgramHandler) CreateProgram(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CreateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	parsedDeadline, err := time.Parse(time.RFC3339, req.Deadline)
	if err != nil {
		return response.BadRequest(c, "Invalid deadline. Must be an RFC3339 timestamp")
	}

	status := model.ProgramStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		return response.BadRequest(c, "Invalid status. Must be one of: researching, applying, submitted, decision")
	}
	if req.Fee != nil && *req.Fee < 0 {
		return response.BadRequest(c, "Fee must not be negative")
	}

	program := model.Program{
		University: validation.SanitizeString(req.University),
		Department: validation.SanitizeString(req.Department),
		Deadline:   parsedDeadline,
		Status:     status,
		Fee:        req.Fee,
		Notes:      req.Notes,
	}

	if err := h.programService.Create(c.Context(), userID, &program); err != nil {
		return serviceError(c, err, "Failed to create program")
	}

	return response.Created(c, programResponse(program, time.Now()))
}

// UpdateProgramRequest represents a partial program update
type UpdateProgramRequest struct {
	University *string  `json:"university,omitempty"`
	Department *string  `json:"department,omitempty"`
	Deadline   *string  `json:"deadline,omitempty"`
	Status     *string  `json:"status,omitempty"`
	Fee        *float64 `json:"fee,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
}

// UpdateProgram handles PUT /api/v1/programs/:id
func (h *ProgramHandler) UpdateProgram(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid program ID")
	}

	var req UpdateProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updates := map[string]interface{}{}
	if req.University != nil {
		university := validation.SanitizeString(*req.University)
		if university == "" {
			return response.BadRequest(c, "University must not be empty")
		}
		updates["university"] = university
	}
	if req.Department != nil {
		department := validation.SanitizeString(*req.Department)
		if department == "" {
			return response.BadRequest(c, "Department must not be empty")
		}
		updates["department"] = department
	}
	if req.Deadline != nil {
		parsedDeadline, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			return response.BadRequest(c, "Invalid deadline. Must be an RFC3339 timestamp")
		}
		updates["deadline"] = parsedDeadline
	}
	if req.Status != nil {
		status := model.ProgramStatus(*req.Status)
		if !status.Valid() {
			return response.BadRequest(c, "Invalid status. Must be one of: researching, applying, submitted, decision")
		}
		updates["status"] = status
	}
	if req.Fee != nil {
		if *req.Fee < 0 {
			return response.BadRequest(c, "Fee must not be negative")
		}
		updates["fee"] = *req.Fee
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	program, err := h.programService.Update(c.Context(), userID, id, updates)
	if err != nil {
		return serviceError(c, err, "Failed to update program")
	}

	return response.Success(c, programResponse(*program, time.Now()))
}

// DeleteProgram handles DELETE /api/v1/programs/:id
func (h *ProgramHandler) DeleteProgram(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid program ID")
	}

	if err := h.programService.Delete(c.Context(), userID, id); err != nil {
		return serviceError(c, err, "Failed to delete program")
	}

	return response.NoContent(c)
}

// RecountProgram handles POST /api/v1/programs/:id/recount.
// It re-derives the requirement counters from the requirement rows,
// repairing any staleness left behind by a failed recomputation.
func (h *ProgramHandler) RecountProgram(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid program ID")
	}

	program, err := h.programService.Recount(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, err, "Failed to recount requirements")
	}

	return response.SuccessWithMessage(c, "Requirement counters recomputed", programResponse(*program, time.Now()))
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
