package services

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/samber/lo"
)

func (s *ServiceSuite) TestUpdateOrganizationAfterArchive() {
	appWS := s.appWorkspace()
	orgWS := s.resolve(s.owner, Scope{OrganizationID: appWS.Organization.ID})

	s.Require().NoError(s.workspaces.ArchiveOrganization(s.ctx, orgWS))
	_, err := s.workspaces.UpdateOrganization(s.ctx, orgWS, &dto.UpdateOrganizationRequest{Name: "Renamed"})
	s.True(apperr.IsConflict(err))

	stored, err := s.repo.GetOrganization(s.ctx, orgWS.Organization.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusArchived, stored.Status)
	s.Equal("Acme", stored.Name)
}

func (s *ServiceSuite) TestUpdateAppAfterArchive() {
	appWS := s.appWorkspace()

	s.Require().NoError(s.workspaces.ArchiveApp(s.ctx, appWS))
	_, err := s.workspaces.UpdateApp(s.ctx, appWS, &dto.UpdateAppRequest{Name: "CRM 2"})
	s.True(apperr.IsConflict(err))

	stored, err := s.repo.GetApp(s.ctx, appWS.App.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusArchived, stored.Status)
	s.Equal("CRM", stored.Name)
}

func (s *ServiceSuite) TestUpdateSchemaAfterArchive() {
	listWS := s.defineList(s.appWorkspace(), "Tasks", textField("title", "Title", 0))

	s.Require().NoError(s.workspaces.ArchiveList(s.ctx, listWS))
	_, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Name:   "Renamed",
		Fields: []dto.SchemaField{textField("owner", "Owner", 1)},
	})
	s.True(apperr.IsConflict(err))

	stored, err := s.repo.GetList(s.ctx, listWS.List.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusArchived, stored.Status)
	s.Equal("Tasks", stored.Name)
	s.Equal(1, stored.SchemaVersion)

	_, err = s.repo.GetActiveListField(s.ctx, listWS.List.ID, "owner")
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceSuite) TestArchiveRecordTwice() {
	listWS := s.contactsList()
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{FieldValues: values("name", "Ada")})
	s.Require().NoError(err)
	recordWS := s.withRecord(listWS, saved.Record.ID)

	s.Require().NoError(s.records.ArchiveRecord(s.ctx, recordWS))
	s.True(apperr.IsConflict(s.records.ArchiveRecord(s.ctx, recordWS)))

	stored, err := s.repo.GetRecord(s.ctx, saved.Record.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusArchived, stored.Status)
}

func (s *ServiceSuite) TestSaveRecordAfterArchive() {
	listWS := s.contactsList()
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{FieldValues: values("name", "Ada")})
	s.Require().NoError(err)
	recordWS := s.withRecord(listWS, saved.Record.ID)
	s.Require().NoError(s.records.ArchiveRecord(s.ctx, recordWS))

	cells := s.repo.CountRows()["record_fields"]
	id := saved.Record.ID.String()
	_, err = s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		RecordID:    &id,
		FieldValues: values("name", "Grace", "email", "grace@example.com"),
	})
	s.True(apperr.IsNotFound(err))
	s.Equal(cells, s.repo.CountRows()["record_fields"])

	s.Require().NoError(s.workspaces.ArchiveList(s.ctx, listWS))
	_, err = s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{FieldValues: values("name", "Linus")})
	s.True(apperr.IsConflict(err))
	s.Equal(1, s.repo.CountRows()["records"])
	s.Equal(cells, s.repo.CountRows()["record_fields"])
}

func (s *ServiceSuite) TestOverlappingSchemaUpdates() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Tasks",
		textField("title", "Title", 0),
		textField("estimate", "Estimate", 1),
	)
	first := s.refresh(listWS)
	second := s.refresh(listWS)
	s.Require().Equal(1, first.List.SchemaVersion)
	s.Require().Equal(1, second.List.SchemaVersion)

	won, err := s.schemas.UpdateSchema(s.ctx, first, &dto.UpdateListRequest{
		Fields: []dto.SchemaField{{ID: "estimate", FieldLabel: "Points", FieldType: "number", Order: 1}},
	})
	s.Require().NoError(err)
	s.Equal(2, won.SchemaVersion)

	_, err = s.schemas.UpdateSchema(s.ctx, second, &dto.UpdateListRequest{
		Name:    "Lost",
		Fields:  []dto.SchemaField{textField("owner", "Owner", 2)},
		Removed: []string{"estimate"},
	})
	s.Require().True(apperr.IsConflict(err))

	fresh := s.refresh(listWS)
	s.Equal(2, fresh.List.SchemaVersion)
	s.Equal(won.SchemaHash, fresh.List.SchemaHash)
	s.Equal("Tasks", fresh.List.Name)

	for i := 0; i < 2; i++ {
		schema, err := s.schemas.GetSchema(s.ctx, fresh.List)
		s.Require().NoError(err)
		s.Equal([]string{"title", "estimate"}, lo.Map(schema, func(f models.ListField, _ int) string { return f.FieldID }))
		s.EqualValues("number", schema[1].FieldType)
		s.Equal("Points", schema[1].FieldLabel)
	}

	_, err = s.repo.GetActiveListField(s.ctx, listWS.List.ID, "owner")
	s.True(apperr.IsNotFound(err))
}
