package controller

import (
	"push-notifications-relay/internal/model"
	"push-notifications-relay/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportController interface {
	ReportDelivery(c *fiber.Ctx) error
	ReportOpen(c *fiber.Ctx) error
}

// reportController exposes HTTP handlers for the report ingestion endpoints.
type reportController struct {
	reportService service.ReportService
}

// NewReportController builds a ReportController.
func NewReportController(svc service.ReportService) ReportController {
	return &reportController{reportService: svc}
}

// ReportDelivery accepts notification delivery reports.
func (h *reportController) ReportDelivery(c *fiber.Ctx) error {
	var req model.DeliveryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	event, err := h.reportService.BuildDeliveryEvent(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.reportService.Report(c.Context(), event)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to queue report")
	}

	return c.Status(fiber.StatusAccepted).JSON(result)
}

// ReportOpen accepts notification open reports.
func (h *reportController) ReportOpen(c *fiber.Ctx) error {
	var req model.OpenRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json payload")
	}

	event, err := h.reportService.BuildOpenEvent(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	result, err := h.reportService.Report(c.Context(), event)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to queue report")
	}

	return c.Status(fiber.StatusAccepted).JSON(result)
}
