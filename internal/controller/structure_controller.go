package controller

import (
	"ai-reader-be/internal/dto"
	"ai-reader-be/internal/pkg/serverutils"
	"ai-reader-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IStructureController interface {
	RegisterRoutes(r fiber.Router)
	Build(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	SectionText(ctx *fiber.Ctx) error
}

type structureController struct {
	structureService service.IStructureService
}

func NewStructureController(structureService service.IStructureService) IStructureController {
	return &structureController{
		structureService: structureService,
	}
}

func (c *structureController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/structure/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("build", c.Build)
	h.Get("document/:id", c.Show)
	h.Get("node/:id/text", c.SectionText)
}

func (c *structureController) Build(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.BuildStructureRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.structureService.Build(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Document not found"))
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Structuring started", res))
}

func (c *structureController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.structureService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Document not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show structure", res))
}

func (c *structureController) SectionText(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.structureService.SectionText(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Node not found"))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show section text", res))
}
