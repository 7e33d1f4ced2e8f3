package response

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Brokwise/brokwise-developer/internal/pkg/apperrors"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

func send(c *fiber.Ctx, code int, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(code).JSON(SuccessBody{
		Status:   "success",
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Success sends 200 OK in the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusOK, message, data, metadata)
}

// SuccessCreated sends 201 Created in the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	return send(c, fiber.StatusCreated, message, data, metadata)
}

// Error sends the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: "error",
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 in the same shape as other errors, so auth
// middleware replies stay consistent with handler replies.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// FromError maps the service error taxonomy to HTTP: validation errors reply
// 400 with {field: message} details, not-found 404, everything else 500.
func FromError(c *fiber.Ctx, err error) error {
	if ve, ok := apperrors.IsValidation(err); ok {
		return Error(c, "Validation failed", fiber.StatusBadRequest, ve.Details())
	}
	if nf, ok := apperrors.IsNotFound(err); ok {
		return Error(c, nf.Error(), fiber.StatusNotFound, nil)
	}
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
