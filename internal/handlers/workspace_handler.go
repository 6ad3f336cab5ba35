package handlers

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/services"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

func (h *WorkspaceHandler) ListOrganizations(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	orgs, err := h.workspaceService.ListOrganizations(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OrganizationListResponse{Success: true, Organizations: orgs})
}

func (h *WorkspaceHandler) CreateOrganization(c *fiber.Ctx) error {
	userID, err := tenant.GetUserID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	org, err := h.workspaceService.CreateOrganization(c.UserContext(), userID, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "organization": org})
}

func (h *WorkspaceHandler) GetOrganization(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "organization": h.workspaceService.GetOrganization(ws)})
}

func (h *WorkspaceHandler) UpdateOrganization(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var req dto.UpdateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	org, err := h.workspaceService.UpdateOrganization(c.UserContext(), ws, &req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "organization": org})
}

func (h *WorkspaceHandler) ArchiveOrganization(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.workspaceService.ArchiveOrganization(c.UserContext(), ws); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *WorkspaceHandler) ListApps(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	apps, err := h.workspaceService.ListApps(c.UserContext(), ws)
	if err != nil {
		return err
	}
	return c.JSON(dto.AppListResponse{Success: true, Apps: apps})
}

func (h *WorkspaceHandler) CreateApp(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var req dto.CreateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	app, err := h.workspaceService.CreateApp(c.UserContext(), ws, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "app": app})
}

func (h *WorkspaceHandler) GetApp(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "app": h.workspaceService.GetApp(ws)})
}

func (h *WorkspaceHandler) UpdateApp(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var req dto.UpdateAppRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	app, err := h.workspaceService.UpdateApp(c.UserContext(), ws, &req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "app": app})
}

func (h *WorkspaceHandler) ArchiveApp(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.workspaceService.ArchiveApp(c.UserContext(), ws); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
