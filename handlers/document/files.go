package document

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/utils/middleware"
	"github.com/gradtrack/gradtrack-api/utils/response"
)

// UploadFile handles POST /api/v1/documents/:id/file
func (h *DocumentHandler) UploadFile(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}

	fileContent, err := file.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to open file")
	}
	defer fileContent.Close()

	content, err := io.ReadAll(fileContent)
	if err != nil {
		return response.InternalServerError(c, "Failed to read file")
	}

	result, err := h.documentService.UploadFile(c.Context(), userID, id, file.Filename, content)
	if err != nil {
		return serviceError(c, err, "Failed to upload file")
	}

	return response.SuccessWithMessage(c, "File uploaded successfully", result)
}

// GetDownloadURL handles GET /api/v1/documents/:id/file.
// Returns a short-lived presigned URL instead of streaming the bytes.
func (h *DocumentHandler) GetDownloadURL(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid document ID")
	}

	url, err := h.documentService.DownloadURL(c.Context(), userID, id)
	if err != nil {
		return serviceError(c, err, "Failed to generate download URL")
	}

	return response.Success(c, fiber.Map{"download_url": url, "expires_in": 15 * 60})
}
