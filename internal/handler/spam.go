package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Producdevity/EmuReady-sub005/internal/middleware"
	"github.com/Producdevity/EmuReady-sub005/internal/model"
	"github.com/Producdevity/EmuReady-sub005/internal/service"
)

type SpamHandler struct {
	svc *service.SpamService
}

func NewSpamHandler(svc *service.SpamService) *SpamHandler {
	return &SpamHandler{svc: svc}
}

// Check handles POST /api/spam/check
func (h *SpamHandler) Check(c fiber.Ctx) error {
	var req model.SpamCheckRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	userID, errMsg := middleware.ValidateUUID("userId", req.UserID, true)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.UserID = userID

	entityType, errMsg := middleware.ValidateEntityType(string(req.EntityType))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.EntityType = entityType

	if _, errMsg := middleware.ValidateContent(req.Content); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	return c.JSON(h.svc.DetectSpam(c.Context(), req))
}
