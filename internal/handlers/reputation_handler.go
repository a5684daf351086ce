package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/runmate-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxBatchUsers = 500

type ReputationHandler struct {
	reputationService *services.ReputationService
}

func NewReputationHandler(reputationService *services.ReputationService) *ReputationHandler {
	return &ReputationHandler{reputationService: reputationService}
}

func (h *ReputationHandler) Recompute(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	result, err := h.reputationService.Recompute(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to recompute manner distance",
		})
	}
	return c.JSON(result)
}

func (h *ReputationHandler) RecomputeBatch(c *fiber.Ctx) error {
	var req dto.RecomputeBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if len(req.UserIDs) == 0 || len(req.UserIDs) > maxBatchUsers {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "user_ids must contain between 1 and 500 ids",
		})
	}

	return c.JSON(h.reputationService.RecomputeMany(c.UserContext(), req.UserIDs))
}

// DeleteEvaluation removes an evaluation and recomputes everyone it rated.
func (h *ReputationHandler) DeleteEvaluation(c *fiber.Ctx) error {
	evaluationID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid evaluation ID",
		})
	}

	result, err := h.reputationService.DeleteEvaluation(c.UserContext(), evaluationID)
	if err != nil {
		if errors.Is(err, repository.ErrEvaluationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to delete evaluation",
		})
	}
	return c.JSON(result)
}
