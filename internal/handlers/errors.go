package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/tenant"
	"github.com/cockroachdb/errors"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the Fiber error handler. Domain errors map to their status
// and client message; anything else is a 500 whose details stay in the logs.
func ErrorHandler(c *fiber.Ctx, err error) error {
	resp := dto.ErrorResponse{Error: true}
	code := apperr.HTTPStatus(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		resp.Message = fe.Message
	} else {
		resp.Message = apperr.Message(err)
		resp.Code = apperr.Code(err)
		if code < fiber.StatusInternalServerError {
			resp.Details = apperr.Details(err)
		}
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", tenant.GetRequestID(c),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		if resp.Code == "" {
			resp.Code = apperr.CodeInternal
		}
	}

	return c.Status(code).JSON(resp)
}

func invalidBody() error {
	return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
}
