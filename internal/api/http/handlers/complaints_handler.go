package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/api/dto"
	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ComplaintsHandler manages complaint endpoints for every role.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	}
	for _, att := range req.Attachments {
		input.Attachments = append(input.Attachments, service.AttachmentInput{
			FileURL:  att.FileURL,
			FileType: att.FileType,
			FileName: att.FileName,
		})
	}

	complaint, err := h.service.CreateComplaint(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// List GET /complaints. Customers are pinned to their own complaints;
// agents and admins may filter freely.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	filter := repository.ComplaintFilter{}
	switch principal.User.Role {
	case domain.RoleCustomer:
		userID := principal.User.ID
		filter.UserID = &userID
	case domain.RoleAgent, domain.RoleAdmin:
		if v := c.Query("user_id"); v != "" {
			filter.UserID = &v
		}
		if v := c.Query("assigned_to"); v != "" {
			if v == "me" {
				v = principal.User.ID
			}
			filter.AssignedTo = &v
		}
	}
	if v := c.Query("status"); v != "" {
		status := domain.ComplaintStatus(v)
		if !status.Valid() {
			return apperrors.NewValidationError("invalid status filter", map[string]any{"status": v})
		}
		filter.Status = &status
	}

	complaints, err := h.service.ListComplaints(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, dto.NewComplaintResponse(&complaints[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.GetComplaint(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if principal.User.Role == domain.RoleCustomer && complaint.UserID != principal.User.ID {
		return apperrors.NewForbidden("access denied")
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}

// Update PATCH /complaints/:id. Agent and admin only; the route guard
// enforces that.
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == nil && req.AssignedTo == nil && req.Priority == nil {
		return apperrors.NewValidationError("nothing to update", nil)
	}

	complaint, err := h.service.UpdateComplaint(c.Context(), principal.User.ID, c.Params("id"), service.ComplaintUpdate{
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
		Priority:   req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewComplaintResponse(complaint)})
}
