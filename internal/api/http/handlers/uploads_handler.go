package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// UploadsHandler stores attachment files ahead of complaint creation.
type UploadsHandler struct {
	uploads *service.UploadService
}

// NewUploadsHandler constructs handler.
func NewUploadsHandler(uploadService *service.UploadService) *UploadsHandler {
	return &UploadsHandler{uploads: uploadService}
}

// Upload POST /uploads. Accepts multipart form files under "files".
func (h *UploadsHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewValidationError("multipart form required", nil)
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["files[]"]
	}
	if len(headers) == 0 {
		return apperrors.NewValidationError("no files provided", nil)
	}

	inputs := make([]service.UploadFileInput, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		content := make([]byte, header.Size)
		if _, err := io.ReadFull(file, content); err != nil {
			file.Close()
			return apperrors.NewInternalError(err)
		}
		file.Close()

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		inputs = append(inputs, service.UploadFileInput{
			Name:        header.Filename,
			ContentType: contentType,
			Content:     content,
		})
	}

	uploaded, err := h.uploads.UploadAll(c.Context(), inputs)
	if err != nil {
		return err
	}
	items := make([]dto.UploadedFileResponse, 0, len(uploaded))
	for _, u := range uploaded {
		items = append(items, dto.UploadedFileResponse{
			FileURL:  u.FileURL,
			FileType: u.FileType,
			FileName: u.FileName,
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": items})
}
