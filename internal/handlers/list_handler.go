package handlers

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ListHandler struct {
	schemaService    *services.SchemaService
	workspaceService *services.WorkspaceService
}

func NewListHandler(schemaService *services.SchemaService, workspaceService *services.WorkspaceService) *ListHandler {
	return &ListHandler{schemaService: schemaService, workspaceService: workspaceService}
}

func (h *ListHandler) FieldTypes(c *fiber.Ctx) error {
	return c.JSON(h.schemaService.FieldTypes())
}

func (h *ListHandler) ListLists(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	lists, err := h.workspaceService.ListLists(c.UserContext(), ws)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListsResponse{Success: true, Lists: lists})
}

func (h *ListHandler) CreateList(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var req dto.CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	list, err := h.schemaService.DefineSchema(c.UserContext(), ws, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ListEnvelope{Success: true, List: *list})
}

func (h *ListHandler) GetList(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	list, err := h.schemaService.GetList(c.UserContext(), ws)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListEnvelope{Success: true, List: *list})
}

func (h *ListHandler) UpdateList(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var req dto.UpdateListRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	list, err := h.schemaService.UpdateSchema(c.UserContext(), ws, &req)
	if err != nil {
		return err
	}
	return c.JSON(dto.ListEnvelope{Success: true, List: *list})
}

func (h *ListHandler) ArchiveList(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.workspaceService.ArchiveList(c.UserContext(), ws); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
