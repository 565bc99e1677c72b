package controller

import (
	"errors"

	"agentic-rag-be/internal/config"
	"agentic-rag-be/internal/dto"
	"agentic-rag-be/internal/pkg/serverutils"
	"agentic-rag-be/internal/service"
	"agentic-rag-be/pkg/embedding"
	"agentic-rag-be/pkg/llm"
	"agentic-rag-be/pkg/rag/engine"

	"github.com/gofiber/fiber/v2"
)

type IRagController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	GetRun(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type ragController struct {
	service service.IRagService
	cfg     *config.Config
}

func NewRagController(svc service.IRagService, cfg *config.Config) IRagController {
	return &ragController{service: svc, cfg: cfg}
}

func (c *ragController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/rag/v1")
	h.Post("/ask", c.Ask)
	h.Get("/runs/:id", c.GetRun)
	h.Get("/health", c.Health)
}

func (c *ragController) Ask(ctx *fiber.Ctx) error {
	req := new(dto.AskRagRequest)
	if err := ctx.BodyParser(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Ask(ctx.UserContext(), req)
	if err != nil {
		return c.mapAskError(ctx, err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Workflow completed", res))
}

func (c *ragController) GetRun(ctx *fiber.Ctx) error {
	runID := ctx.Params("id")
	record, found := c.service.GetRun(runID)
	if !found {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Run not found or expired"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Run found", record))
}

func (c *ragController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", dto.HealthResponse{
		Status:      "healthy",
		Environment: c.cfg.App.Environment,
		Version:     "1.0.0",
	}))
}

func (c *ragController) mapAskError(ctx *fiber.Ctx, err error) error {
	var embErr *embedding.EmbeddingError
	var compErr *llm.CompletionError

	switch {
	case errors.Is(err, service.ErrEmptyDocumentSet):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, err.Error()))
	case errors.Is(err, engine.ErrRewriteBudgetExhausted):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	case errors.As(err, &embErr), errors.As(err, &compErr):
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
}
