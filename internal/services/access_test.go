package services

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/google/uuid"
)

func (s *ServiceSuite) TestResolveRejectsOutsider() {
	appWS := s.appWorkspace()

	_, err := s.access.Resolve(s.ctx, uuid.New(), Scope{OrganizationID: appWS.Organization.ID})
	s.True(apperr.IsPermissionDenied(err))
}

func (s *ServiceSuite) TestResolveUnknownOrganization() {
	_, err := s.access.Resolve(s.ctx, s.owner, Scope{OrganizationID: uuid.New()})
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceSuite) TestResolveNeedsAppMembership() {
	appWS := s.appWorkspace()
	member := uuid.New()
	s.Require().NoError(s.repo.CreateOrganizationUser(s.ctx, &models.OrganizationUser{
		OrganizationID: appWS.Organization.ID,
		UserID:         member,
		Role:           models.RoleMember,
		Status:         models.StatusActive,
	}))

	orgWS, err := s.access.Resolve(s.ctx, member, Scope{OrganizationID: appWS.Organization.ID})
	s.Require().NoError(err)
	s.False(orgWS.IsOrganizationAdmin())

	_, err = s.access.Resolve(s.ctx, member, Scope{OrganizationID: appWS.Organization.ID, AppID: appWS.App.ID})
	s.True(apperr.IsPermissionDenied(err))
}

func (s *ServiceSuite) TestResolveInactiveMembership() {
	appWS := s.appWorkspace()
	member := uuid.New()
	s.Require().NoError(s.repo.CreateOrganizationUser(s.ctx, &models.OrganizationUser{
		OrganizationID: appWS.Organization.ID,
		UserID:         member,
		Role:           models.RoleMember,
		Status:         models.StatusDeleted,
	}))

	_, err := s.access.Resolve(s.ctx, member, Scope{OrganizationID: appWS.Organization.ID})
	s.True(apperr.IsPermissionDenied(err))
}

func (s *ServiceSuite) TestResolveChecksParentChain() {
	first := s.appWorkspace()
	second := s.appWorkspace()

	_, err := s.access.Resolve(s.ctx, s.owner, Scope{OrganizationID: first.Organization.ID, AppID: second.App.ID})
	s.True(apperr.IsNotFound(err))

	listWS := s.defineList(second, "Contacts", textField("name", "Name", 0))
	_, err = s.access.Resolve(s.ctx, s.owner, Scope{
		OrganizationID: first.Organization.ID,
		AppID:          first.App.ID,
		ListID:         listWS.List.ID,
	})
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceSuite) TestArchivedParentHidesChildren() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Contacts", textField("name", "Name", 0))
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: []dto.FieldValueRequest{{FieldID: "name", FieldValue: dto.Value("Ada")}},
	})
	s.Require().NoError(err)

	s.Require().NoError(s.workspaces.ArchiveApp(s.ctx, appWS))

	_, err = s.access.Resolve(s.ctx, s.owner, Scope{
		OrganizationID: appWS.Organization.ID,
		AppID:          appWS.App.ID,
		ListID:         listWS.List.ID,
		RecordID:       saved.Record.ID,
	})
	s.True(apperr.IsNotFound(err))

	// the list itself keeps its status
	list, err := s.repo.GetList(s.ctx, listWS.List.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, list.Status)
}

func (s *ServiceSuite) TestRequireAdmin() {
	ws := &Workspace{
		Organization:     &models.Organization{},
		OrganizationRole: models.RoleAdmin,
		App:              &models.App{},
		AppRole:          models.RoleMember,
	}
	s.True(apperr.IsPermissionDenied(ws.RequireAdmin()))

	ws.App = nil
	s.NoError(ws.RequireAdmin())
}
