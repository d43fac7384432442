// Package response writes the JSON error envelope shared by every route.
package response

import (
	"errors"
	"fmt"

	"task-manager/internal/auth"
	"task-manager/internal/service"
	"task-manager/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	CodeBadRequest      = "bad_request"
	CodeValidation      = "validation_error"
	CodeInternal        = "internal_error"
	CodeNotFound        = "not_found"
	CodeRateLimited     = "rate_limited"
	CodeUpgradeRequired = "upgrade_required"
)

type mapping struct {
	target  error
	status  int
	code    string
	message string
}

// Urutan penting: error yang membungkus lebih dari satu sentinel dicocokkan
// dengan entri pertama.
var mappings = []mapping{
	{auth.ErrDuplicateIdentity, fiber.StatusBadRequest, "duplicate_identity", "Email already registered"},
	{auth.ErrInvalidCredentials, fiber.StatusUnauthorized, "invalid_credentials", "Incorrect email or password"},
	{auth.ErrTokenInvalid, fiber.StatusUnauthorized, "token_invalid", "Could not validate credentials"},
	{auth.ErrTokenExpired, fiber.StatusUnauthorized, "token_expired", "Token has expired"},
	{auth.ErrTokenKindMismatch, fiber.StatusUnauthorized, "token_kind_mismatch", "Invalid token type"},
	{auth.ErrTokenRevoked, fiber.StatusUnauthorized, "token_revoked", "Token has been revoked"},
	{auth.ErrIdentityNotFound, fiber.StatusUnauthorized, "identity_not_found", "User not found"},
	{auth.ErrIdentityInactive, fiber.StatusUnauthorized, "identity_inactive", "Inactive user"},
	{service.ErrNotFound, fiber.StatusNotFound, CodeNotFound, "Task not found"},
	{service.ErrPermissionDenied, fiber.StatusForbidden, "permission_denied", "Not enough permissions"},
}

// Fail menulis envelope error standar.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	if status == fiber.StatusUnauthorized {
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   code,
		"success": false,
		"status":  status,
	})
}

// Error memetakan error domain ke status HTTP. Error yang tidak dikenal
// menjadi 500 tanpa membocorkan pesannya.
func Error(c *fiber.Ctx, err error) error {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return Fail(c, m.status, m.code, m.message)
		}
	}
	logger.ErrorLogger.Error("Unhandled error",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return Fail(c, fiber.StatusInternalServerError, CodeInternal, "Internal server error")
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, CodeBadRequest, message)
}

// Validation menjawab 422 dengan pesan per field.
func Validation(c *fiber.Ctx, err error) error {
	fields := fiber.Map{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Validation error",
		"error":   CodeValidation,
		"errors":  fields,
		"success": false,
		"status":  fiber.StatusUnprocessableEntity,
	})
}

// FieldError dipakai untuk aturan yang tidak bisa diekspresikan lewat tag.
func FieldError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"message": "Validation error",
		"error":   CodeValidation,
		"errors":  fiber.Map{field: message},
		"success": false,
		"status":  fiber.StatusUnprocessableEntity,
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// FiberErrorHandler dipasang di fiber.Config supaya error dari handler,
// route yang tidak ada, dan body yang rusak memakai envelope yang sama.
func FiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return Fail(c, fe.Code, httpCode(fe.Code), fe.Message)
	}
	return Error(c, err)
}

func httpCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return CodeBadRequest
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusUpgradeRequired:
		return CodeUpgradeRequired
	case fiber.StatusTooManyRequests:
		return CodeRateLimited
	case fiber.StatusUnprocessableEntity:
		return CodeValidation
	}
	if status >= fiber.StatusInternalServerError {
		return CodeInternal
	}
	return "http_error"
}
