package services

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

func values(pairs ...string) []dto.FieldValueRequest {
	var out []dto.FieldValueRequest
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dto.FieldValueRequest{FieldID: pairs[i], FieldValue: dto.Value(pairs[i+1])})
	}
	return out
}

func valueOf(record dto.RecordResponse, fieldID string) *string {
	v, _ := lo.Find(record.Values, func(v dto.RecordValue) bool { return v.FieldID == fieldID })
	return v.Value
}

func (s *ServiceSuite) contactsList() *Workspace {
	appWS := s.appWorkspace()
	return s.defineList(appWS, "Contacts",
		textField("name", "Name", 0),
		dto.SchemaField{ID: "age", FieldLabel: "Age", FieldType: "number", Order: 1},
		textField("email", "Email", 2),
	)
}

func (s *ServiceSuite) TestSaveNewRecord() {
	listWS := s.contactsList()

	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "age", "36.0"),
	})
	s.Require().NoError(err)
	s.True(saved.Success)
	s.True(saved.Created)
	s.Empty(saved.Warnings)

	s.Require().Len(saved.Record.Values, 3)
	s.Equal([]string{"name", "age", "email"}, lo.Map(saved.Record.Values, func(v dto.RecordValue, _ int) string { return v.FieldID }))
	s.Equal("Ada", *valueOf(saved.Record, "name"))
	s.Equal("36", *valueOf(saved.Record, "age"))
	s.Nil(valueOf(saved.Record, "email"))
	s.Equal("Ada", *saved.Record.Title)
}

func (s *ServiceSuite) TestSaveNewRecordNeedsRequiredFields() {
	listWS := s.contactsList()

	_, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("email", "ada@example.com"),
	})
	s.Require().True(apperr.IsValidation(err))
	s.Contains(apperr.Details(err), "fieldValues.name")
	s.Equal(0, s.repo.CountRows()["records"])
	s.Equal(0, s.repo.CountRows()["record_fields"])
}

func (s *ServiceSuite) TestSaveRecordInvalidNumberWritesNothing() {
	listWS := s.contactsList()

	_, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "age", "thirty"),
	})
	s.Require().True(apperr.IsValidation(err))
	s.Contains(apperr.Details(err), "fieldValues[1].fieldValue")
	s.Equal(0, s.repo.CountRows()["records"])
}

func (s *ServiceSuite) TestNullSkipsAndEmptyClears() {
	listWS := s.contactsList()
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "age", "36", "email", "ada@example.com"),
	})
	s.Require().NoError(err)
	recordID := saved.Record.ID.String()

	updated, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		RecordID: &recordID,
		FieldValues: []dto.FieldValueRequest{
			{FieldID: "age"},
			{FieldID: "email", FieldValue: dto.Value("")},
		},
	})
	s.Require().NoError(err)
	s.False(updated.Created)
	s.Equal("36", *valueOf(updated.Record, "age"))
	s.Nil(valueOf(updated.Record, "email"))

	cells, err := s.repo.ListActiveRecordFields(s.ctx, []uuid.UUID{saved.Record.ID})
	s.Require().NoError(err)
	s.Len(cells, 2)
}

func (s *ServiceSuite) TestCannotClearRequiredField() {
	listWS := s.contactsList()
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{FieldValues: values("name", "Ada")})
	s.Require().NoError(err)
	recordID := saved.Record.ID.String()

	_, err = s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		RecordID:    &recordID,
		FieldValues: values("name", ""),
	})
	s.True(apperr.IsValidation(err))
}

func (s *ServiceSuite) TestRepeatedSavesKeepOneActiveCell() {
	listWS := s.contactsList()
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{FieldValues: values("name", "Ada")})
	s.Require().NoError(err)
	recordID := saved.Record.ID.String()

	for _, name := range []string{"Grace", "Grace", "Linus"} {
		_, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
			RecordID:    &recordID,
			FieldValues: values("name", name),
		})
		s.Require().NoError(err)
	}

	cells, err := s.repo.ListActiveRecordFields(s.ctx, []uuid.UUID{saved.Record.ID})
	s.Require().NoError(err)
	s.Require().Len(cells, 1)
	s.Equal("Linus", cells[0].Value)
	s.Equal(1, s.repo.CountRows()["records"])
}

func (s *ServiceSuite) TestUnknownFieldIsWarning() {
	listWS := s.contactsList()

	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "ghost", "boo"),
	})
	s.Require().NoError(err)
	s.Require().Len(saved.Warnings, 1)
	s.Equal("ghost", saved.Warnings[0].FieldID)
	s.Equal(apperr.CodeStaleReference, saved.Warnings[0].Code)
	s.Equal("Ada", *valueOf(saved.Record, "name"))
}

func (s *ServiceSuite) TestRemovedFieldBecomesStale() {
	listWS := s.contactsList()
	saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "email", "ada@example.com"),
	})
	s.Require().NoError(err)

	_, err = s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{Removed: []string{"email"}})
	s.Require().NoError(err)
	listWS = s.refresh(listWS)

	recordID := saved.Record.ID.String()
	updated, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		RecordID:    &recordID,
		FieldValues: values("email", "new@example.com"),
	})
	s.Require().NoError(err)
	s.Len(updated.Warnings, 1)
	s.Len(updated.Record.Values, 2)
	s.Nil(valueOf(updated.Record, "email"))
}

func (s *ServiceSuite) TestRecordFromOtherListIsNotFound() {
	listWS := s.contactsList()
	other := s.defineList(&Workspace{
		UserID:           listWS.UserID,
		Organization:     listWS.Organization,
		OrganizationRole: listWS.OrganizationRole,
		App:              listWS.App,
		AppRole:          listWS.AppRole,
	}, "Companies", textField("name", "Name", 0))

	saved, err := s.records.SaveRecord(s.ctx, other, &dto.SaveRecordRequest{FieldValues: values("name", "Initech")})
	s.Require().NoError(err)

	recordID := saved.Record.ID.String()
	_, err = s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		RecordID:    &recordID,
		FieldValues: values("name", "Ada"),
	})
	s.True(apperr.IsNotFound(err))

	garbage := "not-a-uuid"
	_, err = s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{RecordID: &garbage})
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceSuite) TestOptionValuesMustExist() {
	appWS := s.appWorkspace()
	statuses := s.defineList(appWS, "Statuses", textField("label", "Label", 0))
	open, err := s.records.SaveRecord(s.ctx, statuses, &dto.SaveRecordRequest{FieldValues: values("label", "Open")})
	s.Require().NoError(err)
	done, err := s.records.SaveRecord(s.ctx, statuses, &dto.SaveRecordRequest{FieldValues: values("label", "Done")})
	s.Require().NoError(err)

	statusListID := statuses.List.ID.String()
	tasks := s.defineList(appWS, "Tasks",
		textField("title", "Title", 0),
		dto.SchemaField{ID: "status", FieldLabel: "Status", FieldType: "choose-from-list", Order: 1, FieldList: &statusListID},
		dto.SchemaField{ID: "tags", FieldLabel: "Tags", FieldType: "choose-multiple-from-list", Order: 2, FieldList: &statusListID},
	)

	saved, err := s.records.SaveRecord(s.ctx, tasks, &dto.SaveRecordRequest{
		FieldValues: values(
			"title", "Ship it",
			"status", open.Record.ID.String(),
			"tags", done.Record.ID.String()+","+open.Record.ID.String()+","+done.Record.ID.String(),
		),
	})
	s.Require().NoError(err)
	s.Equal(open.Record.ID.String(), *valueOf(saved.Record, "status"))
	s.Equal(done.Record.ID.String()+","+open.Record.ID.String(), *valueOf(saved.Record, "tags"))

	_, err = s.records.SaveRecord(s.ctx, tasks, &dto.SaveRecordRequest{
		FieldValues: values("title", "Broken", "status", uuid.NewString()),
	})
	s.Require().True(apperr.IsValidation(err))
	s.Contains(apperr.Details(err), "fieldValues[1].fieldValue")

	s.Require().NoError(s.records.ArchiveRecord(s.ctx, s.withRecord(statuses, done.Record.ID)))
	_, err = s.records.SaveRecord(s.ctx, tasks, &dto.SaveRecordRequest{
		FieldValues: values("title", "Late", "tags", done.Record.ID.String()),
	})
	s.True(apperr.IsValidation(err))
}

func (s *ServiceSuite) TestDuplicateFieldValues() {
	listWS := s.contactsList()

	_, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "name", "Grace"),
	})
	s.Require().True(apperr.IsValidation(err))
	s.Contains(apperr.Details(err), "fieldValues[1].fieldId")
}

func (s *ServiceSuite) TestListRecordsAndArchive() {
	listWS := s.contactsList()
	var ids []uuid.UUID
	for _, name := range []string{"Ada", "Grace", "Linus"} {
		saved, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{FieldValues: values("name", name)})
		s.Require().NoError(err)
		ids = append(ids, saved.Record.ID)
	}

	page, err := s.records.ListRecords(s.ctx, listWS, dto.PageQuery{Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), page.Total)
	s.Require().Len(page.Records, 2)
	s.Equal("Linus", *page.Records[0].Title)
	s.Equal("Grace", *page.Records[1].Title)

	recordWS := s.withRecord(listWS, ids[0])
	got, err := s.records.RecordWithValues(s.ctx, recordWS)
	s.Require().NoError(err)
	s.Equal("Ada", *got.Title)

	s.Require().NoError(s.records.ArchiveRecord(s.ctx, recordWS))
	_, err = s.access.Resolve(s.ctx, s.owner, Scope{
		OrganizationID: listWS.Organization.ID,
		AppID:          listWS.App.ID,
		ListID:         listWS.List.ID,
		RecordID:       ids[0],
	})
	s.True(apperr.IsNotFound(err))

	page, err = s.records.ListRecords(s.ctx, listWS, dto.PageQuery{})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)
}
