package services

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/repository"
	"github.com/google/uuid"
)

// Scope names the chain of entities a request touches. Zero ids end the
// chain: a scope with only OrganizationID set resolves the organization.
type Scope struct {
	OrganizationID uuid.UUID
	AppID          uuid.UUID
	ListID         uuid.UUID
	RecordID       uuid.UUID
}

// Workspace is a resolved Scope: every entity in it is active, belongs to its
// parent, and is visible to UserID.
type Workspace struct {
	UserID           uuid.UUID
	Organization     *models.Organization
	OrganizationRole string
	App              *models.App
	AppRole          string
	List             *models.List
	Record           *models.Record
}

func (w *Workspace) IsOrganizationAdmin() bool {
	return w.Organization != nil && w.OrganizationRole == models.RoleAdmin
}

func (w *Workspace) IsAppAdmin() bool {
	return w.App != nil && w.AppRole == models.RoleAdmin
}

// RequireAdmin checks the admin role on the innermost of organization or app.
func (w *Workspace) RequireAdmin() error {
	if w.App != nil {
		if !w.IsAppAdmin() {
			return apperr.PermissionDenied("App admin role required")
		}
		return nil
	}
	if !w.IsOrganizationAdmin() {
		return apperr.PermissionDenied("Organization admin role required")
	}
	return nil
}

// LogAttrs returns the slog attributes identifying the workspace.
func (w *Workspace) LogAttrs() []any {
	attrs := []any{"user_id", w.UserID.String()}
	if w.Organization != nil {
		attrs = append(attrs, "organization_id", w.Organization.ID.String())
	}
	if w.App != nil {
		attrs = append(attrs, "app_id", w.App.ID.String())
	}
	if w.List != nil {
		attrs = append(attrs, "list_id", w.List.ID.String())
	}
	return attrs
}

// AccessService is the single place that decides whether a user can reach an
// entity.
type AccessService struct {
	repo repository.Repository
}

func NewAccessService(repo repository.Repository) *AccessService {
	return &AccessService{repo: repo}
}

// Resolve walks organization -> app -> list -> record. A missing or inactive
// entity, or one that does not belong to its parent, is NotFound. A missing or
// inactive membership is PermissionDenied.
func (s *AccessService) Resolve(ctx context.Context, userID uuid.UUID, scope Scope) (*Workspace, error) {
	ws := &Workspace{UserID: userID}

	org, err := s.repo.GetOrganization(ctx, scope.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !org.Status.IsActive() {
		return nil, apperr.NotFound("organization")
	}
	orgMember, err := s.repo.GetOrganizationUser(ctx, org.ID, userID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if orgMember == nil || !orgMember.Status.IsActive() {
		slog.Warn("organization access denied", "organization_id", org.ID.String(), "user_id", userID.String())
		return nil, apperr.PermissionDenied("You are not a member of this organization")
	}
	ws.Organization, ws.OrganizationRole = org, orgMember.Role

	if scope.AppID == uuid.Nil {
		return ws, nil
	}
	app, err := s.repo.GetApp(ctx, scope.AppID)
	if err != nil {
		return nil, err
	}
	if app.OrganizationID != org.ID || !app.Status.IsActive() {
		return nil, apperr.NotFound("app")
	}
	appMember, err := s.repo.GetAppUser(ctx, app.ID, userID)
	if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	if appMember == nil || !appMember.Status.IsActive() {
		slog.Warn("app access denied", "organization_id", org.ID.String(), "app_id", app.ID.String(), "user_id", userID.String())
		return nil, apperr.PermissionDenied("You are not a member of this app")
	}
	ws.App, ws.AppRole = app, appMember.Role

	if scope.ListID == uuid.Nil {
		return ws, nil
	}
	list, err := s.repo.GetList(ctx, scope.ListID)
	if err != nil {
		return nil, err
	}
	if list.AppID != app.ID || !list.Status.IsActive() {
		return nil, apperr.NotFound("list")
	}
	ws.List = list

	if scope.RecordID == uuid.Nil {
		return ws, nil
	}
	record, err := s.repo.GetRecord(ctx, scope.RecordID)
	if err != nil {
		return nil, err
	}
	if record.ListID != list.ID || !record.Status.IsActive() {
		return nil, apperr.NotFound("record")
	}
	ws.Record = record

	return ws, nil
}
