package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// ReportsHandler exposes dashboard aggregations and the CSV export.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// AdminDashboard GET /admin/reports/dashboard. Aggregates across all complaints.
func (h *ReportsHandler) AdminDashboard(c *fiber.Ctx) error {
	stats, err := h.reports.GlobalStats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// AgentDashboard GET /agent/reports/dashboard. Scoped to the caller's assignments.
func (h *ReportsHandler) AgentDashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	stats, err := h.reports.AgentStats(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// ExportCSV GET /admin/complaints/export. Streams the full complaint list as CSV.
func (h *ReportsHandler) ExportCSV(c *fiber.Ctx) error {
	csv, err := h.reports.ExportCSV(c.Context())
	if err != nil {
		return err
	}
	filename := fmt.Sprintf("complaints-%s.csv", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Status(http.StatusOK).SendString(csv)
}
