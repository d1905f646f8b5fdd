package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-progress-api/internal/dto"
	"github.com/noah-isme/gema-progress-api/internal/middleware"
	"github.com/noah-isme/gema-progress-api/internal/progress"
	"github.com/noah-isme/gema-progress-api/internal/service"
	"github.com/noah-isme/gema-progress-api/internal/utils"
)

// ProgressHandler exposes progress block endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler constructs a progress handler.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register wires progress routes.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/courses/:courseId/blocks", h.listBlocks)
	router.Get("/blocks/:blockId/summary", h.getSummary)
	router.Get("/blocks/:blockId/bar", h.getBar)
	router.Get("/blocks/:blockId/overview",
		middleware.RateLimit("progress-overview", 30, time.Minute),
		middleware.WithAuth(h.getOverview, middleware.AuthOptions{Role: middleware.AuthRoleStaff}),
	)
	router.Post("/blocks/:blockId/remap", middleware.RequireRole("admin", "manager"), h.remap)
}

func (h *ProgressHandler) listBlocks(c *fiber.Ctx) error {
	courseID, err := parseParamUint(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.ListBlocks(withRequestContext(c), courseID)
	if err != nil {
		return h.fail(c, err, "failed to list progress blocks")
	}

	return utils.SendSuccess(c, "progress blocks retrieved", result)
}

func (h *ProgressHandler) getSummary(c *fiber.Ctx) error {
	blockID, err := parseParamUint(c, "blockId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid block id")
	}
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}
	if userID == 0 {
		userID = userIDFromContext(c)
	}

	req := dto.ProgressSummaryRequest{BlockID: blockID, CourseID: courseID, UserID: userID}
	result, err := h.service.GetSummary(withRequestContext(c), req)
	if err != nil {
		return h.fail(c, err, "failed to compute progress")
	}

	return utils.SendSuccess(c, "progress summary retrieved", result)
}

func (h *ProgressHandler) getBar(c *fiber.Ctx) error {
	blockID, err := parseParamUint(c, "blockId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid block id")
	}
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	userID, err := parseQueryUint(c, "user_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	viewerID := userIDFromContext(c)
	if userID == 0 {
		userID = viewerID
	}

	req := dto.ProgressBarRequest{BlockID: blockID, CourseID: courseID, UserID: userID, ViewerID: viewerID}
	result, err := h.service.GetBar(withRequestContext(c), req)
	if err != nil {
		return h.fail(c, err, "failed to render progress bar")
	}

	return utils.SendSuccess(c, "progress bar retrieved", result)
}

func (h *ProgressHandler) getOverview(c *fiber.Ctx) error {
	blockID, err := parseParamUint(c, "blockId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid block id")
	}
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	req := dto.ProgressOverviewRequest{
		BlockID:  blockID,
		CourseID: courseID,
		ViewerID: userIDFromContext(c),
		Sort:     c.Query("sort"),
	}
	result, err := h.service.GetOverview(withRequestContext(c), req)
	if err != nil {
		return h.fail(c, err, "failed to build progress overview")
	}

	meta := fiber.Map{
		"sort":      result.Sort,
		"numevents": result.NumEvents,
		"outcome":   result.Outcome,
	}
	return utils.OK(c, result.Rows, "progress overview retrieved", meta)
}

func (h *ProgressHandler) remap(c *fiber.Ctx) error {
	blockID, err := parseParamUint(c, "blockId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid block id")
	}

	var req dto.ProgressRemapRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	req.BlockID = blockID

	result, err := h.service.RemapInstances(withRequestContext(c), req)
	if err != nil {
		return h.fail(c, err, "failed to remap block instances")
	}

	return utils.SendSuccess(c, "progress block remapped", result)
}

// fail maps service errors onto HTTP responses.
func (h *ProgressHandler) fail(c *fiber.Ctx, err error, message string) error {
	var notFound *progress.NotFoundError
	switch {
	case isValidationError(err):
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", validationDetails(err))
	case errors.Is(err, service.ErrInvalidRequest):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	case errors.As(err, &notFound):
		return utils.SendError(c, fiber.StatusNotFound, notFound.Error())
	case errors.Is(err, progress.ErrNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "not found")
	case progress.IsConfigurationError(err):
		requestLogger(h.logger, c).Error().Err(err).Msg("progress configuration error")
		return utils.SendError(c, fiber.StatusInternalServerError, "progress configuration error")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(message)
		return utils.SendError(c, fiber.StatusInternalServerError, message)
	}
}
