package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"cachelock-service/internal/app/service"
	"cachelock-service/internal/transport/httpserver/dto"
	"cachelock-service/internal/transport/httpserver/middleware"
	"cachelock-service/internal/validator"
)

// LockHandler handles lock-related HTTP requests.
type LockHandler struct {
	service   *service.LockService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewLockHandler creates a new LockHandler.
func NewLockHandler(svc *service.LockService, v *validator.Validator, logger *zap.Logger) *LockHandler {
	return &LockHandler{
		service:   svc,
		validator: v,
		logger:    logger,
	}
}

// TryAcquire handles POST /api/v1/locks/:key/try
func (h *LockHandler) TryAcquire(c *fiber.Ctx) error {
	key, req, err := h.parse(c)
	if err != nil {
		return badRequest(c, err)
	}

	acquired, err := h.service.TryLock(c.UserContext(), middleware.TraceID(c), key, req.TTL())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(dto.LockResponse{Key: key, Acquired: acquired})
}

// Acquire handles POST /api/v1/locks/:key
func (h *LockHandler) Acquire(c *fiber.Ctx) error {
	key, req, err := h.parse(c)
	if err != nil {
		return badRequest(c, err)
	}

	if err := h.service.Lock(c.UserContext(), middleware.TraceID(c), key, req.TTL(), req.Wait()); err != nil {
		return writeError(c, err)
	}

	return c.JSON(dto.LockResponse{Key: key, Acquired: true})
}

// Release handles DELETE /api/v1/locks/:key
func (h *LockHandler) Release(c *fiber.Ctx) error {
	key, err := keyParam(c, h.validator)
	if err != nil {
		return validationError(c, err)
	}

	if err := h.service.Unlock(c.UserContext(), middleware.TraceID(c), key); err != nil {
		return writeError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parse reads the key and the optional body.
func (h *LockHandler) parse(c *fiber.Ctx) (string, dto.LockRequest, error) {
	var req dto.LockRequest

	key, err := keyParam(c, h.validator)
	if err != nil {
		return "", req, err
	}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return "", req, errInvalidBody
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		return "", req, err
	}

	return key, req, nil
}
