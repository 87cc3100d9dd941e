package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/Producdevity/EmuReady-sub005/internal/middleware"
	"github.com/Producdevity/EmuReady-sub005/internal/service"
)

type ScoreHandler struct {
	svc *service.CompatibilityService
}

func NewScoreHandler(svc *service.CompatibilityService) *ScoreHandler {
	return &ScoreHandler{svc: svc}
}

// Emulators handles GET /api/scores/emulators?gameId=X&systemId=Y
func (h *ScoreHandler) Emulators(c fiber.Ctx) error {
	gameID, errMsg := middleware.ValidateUUID("gameId", fiber.Query[string](c, "gameId"), false)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}
	systemID, errMsg := middleware.ValidateUUID("systemId", fiber.Query[string](c, "systemId"), false)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	scores, err := h.svc.EmulatorScores(c.Context(), gameID, systemID)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("emulator scores failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute emulator scores")
	}
	return c.JSON(scores)
}

// Systems handles GET /api/scores/systems
func (h *ScoreHandler) Systems(c fiber.Ctx) error {
	scores, err := h.svc.SystemScores(c.Context(), "")
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("system scores failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute system scores")
	}
	return c.JSON(scores)
}

// Overview handles GET /api/scores/overview?systemId=X
func (h *ScoreHandler) Overview(c fiber.Ctx) error {
	systemID, errMsg := middleware.ValidateUUID("systemId", fiber.Query[string](c, "systemId"), false)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	resp, err := h.svc.Overview(c.Context(), systemID)
	if err != nil {
		middleware.Logger.Error().Err(err).Msg("score overview failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute score overview")
	}
	return c.JSON(resp)
}

// Listing handles GET /api/scores/listings/:listingId
func (h *ScoreHandler) Listing(c fiber.Ctx) error {
	listingID, errMsg := middleware.ValidateUUID("listingId", c.Params("listingId"), true)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", errMsg)
	}

	resp, err := h.svc.ListingScore(c.Context(), listingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Listing not found")
		}
		middleware.Logger.Error().Err(err).Str("listing_id", listingID).Msg("listing score failed")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to score listing")
	}
	return c.JSON(resp)
}
