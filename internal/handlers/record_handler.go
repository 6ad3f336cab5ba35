package handlers

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/services"
	"github.com/gofiber/fiber/v2"
)

type RecordHandler struct {
	recordService *services.RecordService
}

func NewRecordHandler(recordService *services.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

func (h *RecordHandler) ListRecords(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var page dto.PageQuery
	if err := c.QueryParser(&page); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid paging parameters")
	}

	records, err := h.recordService.ListRecords(c.UserContext(), ws, page)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

// SaveRecord creates a record, or updates the one named by recordId.
func (h *RecordHandler) SaveRecord(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	var req dto.SaveRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody()
	}

	resp, err := h.recordService.SaveRecord(c.UserContext(), ws, &req)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if resp.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(resp)
}

func (h *RecordHandler) GetRecord(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}

	record, err := h.recordService.RecordWithValues(c.UserContext(), ws)
	if err != nil {
		return err
	}
	return c.JSON(dto.RecordEnvelope{Success: true, Record: *record})
}

func (h *RecordHandler) ArchiveRecord(c *fiber.Ctx) error {
	ws, err := middleware.GetWorkspace(c)
	if err != nil {
		return err
	}
	if err := h.recordService.ArchiveRecord(c.UserContext(), ws); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}
