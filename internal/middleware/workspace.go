package middleware

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/services"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const workspaceKey = "workspace"

// route params resolved by WorkspaceAccess, outermost first
var scopeParams = []struct {
	name     string
	resource string
}{
	{"org_id", "organization"},
	{"app_id", "app"},
	{"list_id", "list"},
	{"record_id", "record"},
}

// WorkspaceAccess resolves :org_id, :app_id, :list_id and :record_id from the
// route and stores the resulting Workspace in Locals. Every workspace route
// goes through it, so no handler reaches an entity the caller cannot see.
func WorkspaceAccess(access *services.AccessService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := tenant.GetUserID(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		ids := make([]uuid.UUID, len(scopeParams))
		for i, p := range scopeParams {
			raw := c.Params(p.name)
			if raw == "" {
				continue
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return apperr.NotFound(p.resource)
			}
			ids[i] = id
		}

		ws, err := access.Resolve(c.UserContext(), userID, services.Scope{
			OrganizationID: ids[0],
			AppID:          ids[1],
			ListID:         ids[2],
			RecordID:       ids[3],
		})
		if err != nil {
			return err
		}

		c.Locals(workspaceKey, ws)
		return c.Next()
	}
}

// GetWorkspace returns the Workspace stored by WorkspaceAccess.
func GetWorkspace(c *fiber.Ctx) (*services.Workspace, error) {
	ws, ok := c.Locals(workspaceKey).(*services.Workspace)
	if !ok || ws == nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "workspace not resolved")
	}
	return ws, nil
}
