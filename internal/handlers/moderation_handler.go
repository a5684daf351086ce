package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/jobs"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	scheduler         *jobs.SweepScheduler
}

func NewModerationHandler(moderationService *services.ModerationService, scheduler *jobs.SweepScheduler) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, scheduler: scheduler}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	report, err := h.moderationService.CreateReport(c.UserContext(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrReportedContent):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrInvalidContentType),
			errors.Is(err, services.ErrContentIDRequired),
			errors.Is(err, services.ErrReasonRequired),
			errors.Is(err, services.ErrPostIDRequired),
			errors.Is(err, services.ErrSelfReport):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create report",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	status := c.Query("status", "")
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	reports, total, err := h.moderationService.ListReports(c.UserContext(), status, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reports",
		})
	}

	return c.JSON(fiber.Map{
		"reports": reports,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// RunSweep triggers an enforcement sweep outside the schedule.
func (h *ModerationHandler) RunSweep(c *fiber.Ctx) error {
	result, err := h.scheduler.RunOnce(c.UserContext())
	if err != nil {
		if errors.Is(err, jobs.ErrSweepInProgress) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Enforcement sweep failed",
		})
	}
	return c.JSON(result)
}
