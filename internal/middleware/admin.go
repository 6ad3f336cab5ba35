package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// AdminRequired lets the request through only when the caller holds the admin
// role on the innermost resolved organization or app. It must run after
// WorkspaceAccess.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ws, err := GetWorkspace(c)
		if err != nil {
			return err
		}
		if err := ws.RequireAdmin(); err != nil {
			return err
		}
		return c.Next()
	}
}
