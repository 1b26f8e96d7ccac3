package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"staffingapi/internal/http/middleware"
	"staffingapi/internal/service"
)

// Error codes of the failure envelope.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeRateLimited        = "RATE_LIMITED"
	CodeDatabase           = "DATABASE_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
// - details: optional structured context such as field errors or an existing resource id
func writeError(c *fiber.Ctx, status int, code, message string, details map[string]any) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps a service error onto the envelope. Internal causes
// go to the request log only.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
		validation *service.ValidationError
		dbErr      *service.DBError
	)
	switch {
	case errors.As(err, &validation):
		return writeError(c, fiber.StatusBadRequest, CodeValidation, "validation failed",
			map[string]any{validation.Field: validation.Message})
	case errors.As(err, &notFound):
		return writeError(c, fiber.StatusNotFound, CodeNotFound, notFound.Error(), nil)
	case errors.As(err, &conflict):
		return writeError(c, fiber.StatusConflict, CodeConflict, conflict.Message, conflict.Details)
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, CodeForbidden, "you do not have access to this resource", nil)
	case errors.Is(err, service.ErrStorageUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, CodeServiceUnavailable, "document storage is unavailable", nil)
	case errors.As(err, &dbErr):
		c.Locals(middleware.ErrorLocalKey, err.Error())
		return writeError(c, fiber.StatusInternalServerError, CodeDatabase, "database error", nil)
	default:
		c.Locals(middleware.ErrorLocalKey, err.Error())
		return writeError(c, fiber.StatusInternalServerError, CodeInternal, "internal server error", nil)
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, CodeBadRequest, "bad request", nil)
		case fiber.StatusUnauthorized:
			return writeError(c, status, CodeUnauthorized, "authentication required", nil)
		case fiber.StatusForbidden:
			return writeError(c, status, CodeForbidden, "forbidden", nil)
		case fiber.StatusNotFound:
			return writeError(c, status, CodeNotFound, "resource not found", nil)
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, CodeMethodNotAllowed, "method not allowed", nil)
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, CodeBadRequest, "request body too large", nil)
		case fiber.StatusTooManyRequests:
			return writeError(c, status, CodeRateLimited, "too many requests, slow down", nil)
		case fiber.StatusServiceUnavailable:
			return writeError(c, status, CodeServiceUnavailable, "dependency unavailable", nil)
		default:
			c.Locals(middleware.ErrorLocalKey, err.Error())
			return writeError(c, fiber.StatusInternalServerError, CodeInternal, "internal server error", nil)
		}
	}
}
