// FILE: internal/pkg/serverutils/response.go
package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"ai-reader-be/pkg/outline"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) ErrorBody {
	return ErrorBody{
		Success: false,
		Code:    code,
		Message: message,
	}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and flattens the failures into a
// single readable error message.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return err
		}
		var msgs []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed on '%s'", fieldErr.Field(), fieldErr.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

// ErrorHandlerMiddleware catches errors that escape the handlers and maps the
// known domain error types to HTTP statuses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		code := statusForError(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

func statusForError(err error) int {
	var (
		anchorErr *outline.AnchorNotFoundError
		rangeErr  *outline.InvalidRangeError
		valErr    *outline.ValidationError
		genErr    *outline.GenerationError
		chunkErr  *outline.ChunkProcessingError
		retryErr  *outline.RetryExhaustedError
	)
	switch {
	case errors.As(err, &anchorErr), errors.As(err, &rangeErr), errors.As(err, &valErr):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &genErr), errors.As(err, &chunkErr):
		return fiber.StatusBadGateway
	case errors.As(err, &retryErr):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
