package serverutils

import (
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/llm"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware recovers panics and maps errors that escaped the
// controllers to a consistent JSON envelope. Provider failures become 502
// so callers can tell an upstream model outage from a bug in this service.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse(500, "internal server error"))
			}
		}()

		err = ctx.Next()
		if err == nil {
			return nil
		}

		var embErr *embedding.EmbeddingError
		var compErr *llm.CompletionError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &embErr), errors.As(err, &compErr):
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(fiber.StatusBadGateway, err.Error()))
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		default:
			return ctx.Status(fiber.StatusInternalServerError).
				JSON(ErrorResponse(500, err.Error()))
		}
	}
}
