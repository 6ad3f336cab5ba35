package services

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/google/uuid"
)

func (s *ServiceSuite) TestCreateOrganizationMakesCreatorAdmin() {
	org, err := s.workspaces.CreateOrganization(s.ctx, s.owner, &dto.CreateOrganizationRequest{Name: "  Acme  "})
	s.Require().NoError(err)
	s.Equal("Acme", org.Name)
	s.Equal(models.RoleAdmin, org.Role)

	member, err := s.repo.GetOrganizationUser(s.ctx, org.ID, s.owner)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, member.Role)
	s.Equal(models.StatusActive, member.Status)
}

func (s *ServiceSuite) TestCreateOrganizationRequiresName() {
	_, err := s.workspaces.CreateOrganization(s.ctx, s.owner, &dto.CreateOrganizationRequest{Name: "   "})
	s.True(apperr.IsValidation(err))
	s.Equal(0, s.repo.CountRows()["organizations"])
}

func (s *ServiceSuite) TestListOrganizationsOrderedAndActive() {
	for _, name := range []string{"Zulu", "Alpha", "Mike"} {
		_, err := s.workspaces.CreateOrganization(s.ctx, s.owner, &dto.CreateOrganizationRequest{Name: name})
		s.Require().NoError(err)
	}
	_, err := s.workspaces.CreateOrganization(s.ctx, uuid.New(), &dto.CreateOrganizationRequest{Name: "Someone else"})
	s.Require().NoError(err)

	orgs, err := s.workspaces.ListOrganizations(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(orgs, 3)
	s.Equal("Alpha", orgs[0].Name)
	s.Equal("Mike", orgs[1].Name)
	s.Equal("Zulu", orgs[2].Name)

	ws := s.resolve(s.owner, Scope{OrganizationID: orgs[1].ID})
	s.Require().NoError(s.workspaces.ArchiveOrganization(s.ctx, ws))

	orgs, err = s.workspaces.ListOrganizations(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Len(orgs, 2)

	_, err = s.access.Resolve(s.ctx, s.owner, Scope{OrganizationID: ws.Organization.ID})
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceSuite) TestUpdateOrganizationNeedsAdmin() {
	appWS := s.appWorkspace()
	member := uuid.New()
	s.Require().NoError(s.repo.CreateOrganizationUser(s.ctx, &models.OrganizationUser{
		OrganizationID: appWS.Organization.ID, UserID: member, Role: models.RoleMember, Status: models.StatusActive,
	}))
	memberWS := s.resolve(member, Scope{OrganizationID: appWS.Organization.ID})

	_, err := s.workspaces.UpdateOrganization(s.ctx, memberWS, &dto.UpdateOrganizationRequest{Name: "Hijacked"})
	s.True(apperr.IsPermissionDenied(err))
	s.True(apperr.IsPermissionDenied(s.workspaces.ArchiveOrganization(s.ctx, memberWS)))

	ownerWS := s.resolve(s.owner, Scope{OrganizationID: appWS.Organization.ID})
	org, err := s.workspaces.UpdateOrganization(s.ctx, ownerWS, &dto.UpdateOrganizationRequest{Name: "Acme Inc"})
	s.Require().NoError(err)
	s.Equal("Acme Inc", org.Name)
}

func (s *ServiceSuite) TestAppsVisibleToMembersOnly() {
	appWS := s.appWorkspace()
	orgWS := s.resolve(s.owner, Scope{OrganizationID: appWS.Organization.ID})

	_, err := s.workspaces.CreateApp(s.ctx, orgWS, &dto.CreateAppRequest{Name: "Billing", Description: "invoices"})
	s.Require().NoError(err)

	apps, err := s.workspaces.ListApps(s.ctx, orgWS)
	s.Require().NoError(err)
	s.Len(apps, 2)
	s.Equal("Billing", apps[0].Name)
	s.Equal("CRM", apps[1].Name)

	member := uuid.New()
	s.Require().NoError(s.repo.CreateOrganizationUser(s.ctx, &models.OrganizationUser{
		OrganizationID: orgWS.Organization.ID, UserID: member, Role: models.RoleMember, Status: models.StatusActive,
	}))
	s.Require().NoError(s.repo.CreateAppUser(s.ctx, &models.AppUser{
		AppID: appWS.App.ID, UserID: member, Role: models.RoleMember, Status: models.StatusActive,
	}))
	memberApps, err := s.workspaces.ListApps(s.ctx, s.resolve(member, Scope{OrganizationID: orgWS.Organization.ID}))
	s.Require().NoError(err)
	s.Len(memberApps, 1)
	s.Equal(appWS.App.ID, memberApps[0].ID)
}

func (s *ServiceSuite) TestUpdateAndArchiveApp() {
	appWS := s.appWorkspace()

	desc := "customer records"
	app, err := s.workspaces.UpdateApp(s.ctx, appWS, &dto.UpdateAppRequest{Name: "CRM 2", Description: &desc})
	s.Require().NoError(err)
	s.Equal("CRM 2", app.Name)
	s.Equal(desc, app.Description)

	s.Require().NoError(s.workspaces.ArchiveApp(s.ctx, appWS))
	stored, err := s.repo.GetApp(s.ctx, appWS.App.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusArchived, stored.Status)
}

func (s *ServiceSuite) TestListListsAndArchive() {
	appWS := s.appWorkspace()
	s.defineList(appWS, "Tasks", textField("t", "Title", 0))
	contacts := s.defineList(appWS, "Contacts", textField("n", "Name", 0))

	lists, err := s.workspaces.ListLists(s.ctx, appWS)
	s.Require().NoError(err)
	s.Len(lists, 2)
	s.Equal("Contacts", lists[0].Name)
	s.Empty(lists[0].Fields)

	s.Require().NoError(s.workspaces.ArchiveList(s.ctx, contacts))
	lists, err = s.workspaces.ListLists(s.ctx, appWS)
	s.Require().NoError(err)
	s.Len(lists, 1)
	s.Equal("Tasks", lists[0].Name)
}

func (s *ServiceSuite) TestCheckTransition() {
	s.NoError(checkTransition("list", models.StatusActive, models.StatusArchived))
	err := checkTransition("list", models.StatusArchived, models.StatusActive)
	s.True(apperr.Is(err, apperr.ErrInvalidTransition))
}
