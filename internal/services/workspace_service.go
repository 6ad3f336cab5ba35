package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// WorkspaceService manages organizations, apps and the list index of an app.
type WorkspaceService struct {
	repo repository.Repository
}

func NewWorkspaceService(repo repository.Repository) *WorkspaceService {
	return &WorkspaceService{repo: repo}
}

// checkTransition returns an InvalidTransition error unless from may move to to.
func checkTransition(resource string, from, to models.Status) error {
	if !from.CanTransitionTo(to) {
		return apperr.InvalidTransition(resource, string(from), string(to))
	}
	return nil
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("Name is required", map[string]any{"name": "is required"})
	}
	return name, nil
}

// --- organizations ---

func (s *WorkspaceService) CreateOrganization(ctx context.Context, userID uuid.UUID, req *dto.CreateOrganizationRequest) (*dto.OrganizationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}

	org := &models.Organization{
		ID:            uuid.New(),
		Name:          name,
		Status:        models.StatusActive,
		CreatedUserID: userID,
	}
	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.CreateOrganization(ctx, org); err != nil {
			return err
		}
		return tx.CreateOrganizationUser(ctx, &models.OrganizationUser{
			OrganizationID: org.ID,
			UserID:         userID,
			Role:           models.RoleAdmin,
			Status:         models.StatusActive,
		})
	})
	if err != nil {
		slog.Error("organization create failed", "user_id", userID.String(), "action", "organization.create", "error", err)
		return nil, err
	}

	slog.Info("organization created", "organization_id", org.ID.String(), "user_id", userID.String(), "action", "organization.create")
	resp := organizationResponse(org, models.RoleAdmin)
	return &resp, nil
}

func (s *WorkspaceService) ListOrganizations(ctx context.Context, userID uuid.UUID) ([]dto.OrganizationResponse, error) {
	orgs, err := s.repo.ListVisibleOrganizations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return lo.Map(orgs, func(org models.Organization, _ int) dto.OrganizationResponse {
		return organizationResponse(&org, "")
	}), nil
}

func (s *WorkspaceService) GetOrganization(ws *Workspace) *dto.OrganizationResponse {
	resp := organizationResponse(ws.Organization, ws.OrganizationRole)
	return &resp
}

func (s *WorkspaceService) UpdateOrganization(ctx context.Context, ws *Workspace, req *dto.UpdateOrganizationRequest) (*dto.OrganizationResponse, error) {
	if err := ws.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}

	org := *ws.Organization
	org.Name = name
	if err := s.repo.UpdateOrganization(ctx, &org); err != nil {
		return nil, err
	}

	slog.Info("organization updated", append(ws.LogAttrs(), "action", "organization.update")...)
	resp := organizationResponse(&org, ws.OrganizationRole)
	return &resp, nil
}

// ArchiveOrganization hides the organization. Its apps keep their own status
// but become unreachable through it.
func (s *WorkspaceService) ArchiveOrganization(ctx context.Context, ws *Workspace) error {
	if err := ws.RequireAdmin(); err != nil {
		return err
	}
	org := *ws.Organization
	if err := checkTransition("organization", org.Status, models.StatusArchived); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, repository.EntityOrganization, org.ID, org.Status, models.StatusArchived); err != nil {
		return err
	}

	slog.Info("organization archived", append(ws.LogAttrs(), "action", "organization.archive")...)
	return nil
}

// --- apps ---

func (s *WorkspaceService) CreateApp(ctx context.Context, ws *Workspace, req *dto.CreateAppRequest) (*dto.AppResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}

	app := &models.App{
		ID:             uuid.New(),
		OrganizationID: ws.Organization.ID,
		Name:           name,
		Description:    strings.TrimSpace(req.Description),
		Status:         models.StatusActive,
		CreatedUserID:  ws.UserID,
	}
	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.CreateApp(ctx, app); err != nil {
			return err
		}
		return tx.CreateAppUser(ctx, &models.AppUser{
			AppID:  app.ID,
			UserID: ws.UserID,
			Role:   models.RoleAdmin,
			Status: models.StatusActive,
		})
	})
	if err != nil {
		slog.Error("app create failed", append(ws.LogAttrs(), "action", "app.create", "error", err)...)
		return nil, err
	}

	slog.Info("app created", append(ws.LogAttrs(), "app_id", app.ID.String(), "action", "app.create")...)
	resp := appResponse(app, models.RoleAdmin)
	return &resp, nil
}

func (s *WorkspaceService) ListApps(ctx context.Context, ws *Workspace) ([]dto.AppResponse, error) {
	apps, err := s.repo.ListVisibleApps(ctx, ws.UserID, ws.Organization.ID)
	if err != nil {
		return nil, err
	}
	return lo.Map(apps, func(app models.App, _ int) dto.AppResponse {
		return appResponse(&app, "")
	}), nil
}

func (s *WorkspaceService) GetApp(ws *Workspace) *dto.AppResponse {
	resp := appResponse(ws.App, ws.AppRole)
	return &resp
}

func (s *WorkspaceService) UpdateApp(ctx context.Context, ws *Workspace, req *dto.UpdateAppRequest) (*dto.AppResponse, error) {
	if err := ws.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}

	app := *ws.App
	app.Name = name
	if req.Description != nil {
		app.Description = strings.TrimSpace(*req.Description)
	}
	if err := s.repo.UpdateApp(ctx, &app); err != nil {
		return nil, err
	}

	slog.Info("app updated", append(ws.LogAttrs(), "action", "app.update")...)
	resp := appResponse(&app, ws.AppRole)
	return &resp, nil
}

func (s *WorkspaceService) ArchiveApp(ctx context.Context, ws *Workspace) error {
	if err := ws.RequireAdmin(); err != nil {
		return err
	}
	app := *ws.App
	if err := checkTransition("app", app.Status, models.StatusArchived); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, repository.EntityApp, app.ID, app.Status, models.StatusArchived); err != nil {
		return err
	}

	slog.Info("app archived", append(ws.LogAttrs(), "action", "app.archive")...)
	return nil
}

// --- lists ---

func (s *WorkspaceService) ListLists(ctx context.Context, ws *Workspace) ([]dto.ListResponse, error) {
	lists, err := s.repo.ListActiveLists(ctx, ws.App.ID)
	if err != nil {
		return nil, err
	}
	return lo.Map(lists, func(list models.List, _ int) dto.ListResponse {
		return listResponse(&list, nil)
	}), nil
}

func (s *WorkspaceService) ArchiveList(ctx context.Context, ws *Workspace) error {
	list := *ws.List
	if err := checkTransition("list", list.Status, models.StatusArchived); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, repository.EntityList, list.ID, list.Status, models.StatusArchived); err != nil {
		return err
	}

	slog.Info("list archived", append(ws.LogAttrs(), "action", "list.archive")...)
	return nil
}

func organizationResponse(org *models.Organization, role string) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		Status:    string(org.Status),
		Role:      role,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

func appResponse(app *models.App, role string) dto.AppResponse {
	return dto.AppResponse{
		ID:             app.ID,
		OrganizationID: app.OrganizationID,
		Name:           app.Name,
		Description:    app.Description,
		Status:         string(app.Status),
		Role:           role,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}
