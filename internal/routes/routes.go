package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/config"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	access *services.AccessService,
	healthHandler *handlers.HealthHandler,
	workspaceHandler *handlers.WorkspaceHandler,
	listHandler *handlers.ListHandler,
	recordHandler *handlers.RecordHandler,
) {
	api := app.Group("/api")

	// General API rate limiter, per IP
	if cfg.RateLimit > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:               cfg.RateLimit,
			Expiration:        1 * time.Minute,
			LimiterMiddleware: limiter.SlidingWindow{},
			KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		}))
	}

	// Health (no auth)
	api.Get("/health", healthHandler.Check)

	jwt := middleware.JWTProtected(cfg)
	scoped := middleware.WorkspaceAccess(access)
	admin := middleware.AdminRequired()

	api.Get("/field-types", jwt, listHandler.FieldTypes)

	// Organizations
	orgs := api.Group("/organizations", jwt)
	orgs.Get("/", workspaceHandler.ListOrganizations)
	orgs.Post("/", workspaceHandler.CreateOrganization)
	orgs.Get("/:org_id", scoped, workspaceHandler.GetOrganization)
	orgs.Put("/:org_id", scoped, admin, workspaceHandler.UpdateOrganization)
	orgs.Post("/:org_id/archive", scoped, admin, workspaceHandler.ArchiveOrganization)

	// Apps
	const appPath = "/:org_id/apps/:app_id"
	orgs.Get("/:org_id/apps", scoped, workspaceHandler.ListApps)
	orgs.Post("/:org_id/apps", scoped, workspaceHandler.CreateApp)
	orgs.Get(appPath, scoped, workspaceHandler.GetApp)
	orgs.Put(appPath, scoped, admin, workspaceHandler.UpdateApp)
	orgs.Post(appPath+"/archive", scoped, admin, workspaceHandler.ArchiveApp)

	// Lists and their schema
	const listPath = appPath + "/lists/:list_id"
	orgs.Get(appPath+"/lists", scoped, listHandler.ListLists)
	orgs.Post(appPath+"/lists", scoped, listHandler.CreateList)
	orgs.Get(listPath, scoped, listHandler.GetList)
	orgs.Put(listPath, scoped, listHandler.UpdateList)
	orgs.Post(listPath+"/archive", scoped, listHandler.ArchiveList)

	// Records
	const recordPath = listPath + "/records/:record_id"
	orgs.Get(listPath+"/records", scoped, recordHandler.ListRecords)
	orgs.Post(listPath+"/records", scoped, recordHandler.SaveRecord)
	orgs.Get(recordPath, scoped, recordHandler.GetRecord)
	orgs.Post(recordPath+"/archive", scoped, recordHandler.ArchiveRecord)
}
