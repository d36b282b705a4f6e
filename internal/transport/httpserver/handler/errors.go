// Package handler provides HTTP handlers for the API.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"cachelock-service/internal/transport/httpserver/dto"
	"cachelock-service/internal/transport/httpserver/middleware"
	"cachelock-service/internal/validator"
	"cachelock-service/pkg/storeerr"
)

// StatusOf maps a component error to an HTTP status code.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, storeerr.ErrState):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, storeerr.ErrAcquisitionTimeout):
		return fiber.StatusConflict
	case errors.Is(err, storeerr.ErrTransport):
		return fiber.StatusBadGateway
	case errors.Is(err, storeerr.ErrSerialization), errors.Is(err, storeerr.ErrConfiguration):
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err as an ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	code := storeerr.CodeOf(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	return c.Status(StatusOf(err)).JSON(dto.ErrorResponse{
		Error:   err.Error(),
		Code:    code,
		TraceID: middleware.TraceID(c),
	})
}

// keyParam returns the validated :key path parameter.
func keyParam(c *fiber.Ctx, v *validator.Validator) (string, error) {
	param := dto.KeyParam{Key: c.Params("key")}
	if err := v.Validate(&param); err != nil {
		return "", err
	}

	return param.Key, nil
}

func validationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "validation failed",
		Code:    "VALIDATION_ERROR",
		TraceID: middleware.TraceID(c),
		Details: err,
	})
}

var errInvalidBody = errors.New("invalid request body")

// badRequest renders a request parsing or validation failure.
func badRequest(c *fiber.Ctx, err error) error {
	if errors.Is(err, errInvalidBody) {
		return invalidBody(c)
	}
	return validationError(c, err)
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error:   "invalid request body",
		Code:    "INVALID_BODY",
		TraceID: middleware.TraceID(c),
	})
}
