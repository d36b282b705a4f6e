package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cachelock-service/internal/app/service"
	"cachelock-service/internal/transport/httpserver/dto"
	"cachelock-service/internal/transport/httpserver/middleware"
	"cachelock-service/internal/validator"
)

// CacheHandler handles cache-related HTTP requests.
type CacheHandler struct {
	service   *service.CacheService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewCacheHandler creates a new CacheHandler.
func NewCacheHandler(svc *service.CacheService, v *validator.Validator, logger *zap.Logger) *CacheHandler {
	return &CacheHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// Get handles GET /api/v1/cache/:key
func (h *CacheHandler) Get(c *fiber.Ctx) error {
	key, err := keyParam(c, h.validator)
	if err != nil {
		return validationError(c, err)
	}

	value, found, err := h.service.Get(c.UserContext(), middleware.TraceID(c), key)
	if err != nil {
		return writeError(c, err)
	}

	if !found {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error:   "key not found",
			Code:    "NOT_FOUND",
			TraceID: middleware.TraceID(c),
		})
	}

	return c.JSON(dto.CacheValueResponse{Key: key, Value: value})
}

// Put handles PUT /api/v1/cache/:key
func (h *CacheHandler) Put(c *fiber.Ctx) error {
	key, err := keyParam(c, h.validator)
	if err != nil {
		return validationError(c, err)
	}

	var req dto.StoreRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.validator.Validate(&req); err != nil {
		return validationError(c, err)
	}

	ttl, err := h.service.Put(c.UserContext(), middleware.TraceID(c), key, req.Value, req.TTL())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(dto.StoreResponse{Key: key, TTLMs: ttl.Milliseconds()})
}

// Delete handles DELETE /api/v1/cache/:key
func (h *CacheHandler) Delete(c *fiber.Ctx) error {
	key, err := keyParam(c, h.validator)
	if err != nil {
		return validationError(c, err)
	}

	removed, err := h.service.Delete(c.UserContext(), middleware.TraceID(c), key)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(dto.RemoveResponse{Key: key, Removed: removed})
}

// Clear handles DELETE /api/v1/cache
func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	h.logger.Info("cache clear requested", zap.String("trace_id", middleware.TraceID(c)))

	if err := h.service.Clear(c.UserContext(), middleware.TraceID(c)); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
