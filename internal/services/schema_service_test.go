package services

import (
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/samber/lo"
)

func (s *ServiceSuite) TestDefineSchemaFirstFieldIsPrimary() {
	appWS := s.appWorkspace()
	hidden := false

	list, err := s.schemas.DefineSchema(s.ctx, appWS, &dto.CreateListRequest{
		Name: "Tasks",
		Fields: []dto.SchemaField{
			{FieldLabel: "Title", FieldType: "text", Order: 5, Visible: &hidden},
			{ID: "due", FieldLabel: "Due", FieldType: "text", Order: 1},
			{ID: "notes", FieldLabel: "Notes", FieldType: "text", Order: 1, Primary: lo.ToPtr(true)},
		},
	})
	s.Require().NoError(err)

	s.Equal(1, list.SchemaVersion)
	s.Len(list.SchemaHash, 64)
	s.Require().Len(list.Fields, 3)

	s.Equal("due", list.Fields[0].ID)
	s.Equal("notes", list.Fields[1].ID)
	title := list.Fields[2]
	s.Equal("Title", title.FieldLabel)
	s.NotEmpty(title.ID)
	s.True(title.Primary)
	s.True(title.Required)
	s.True(title.Visible)

	for i, f := range list.Fields {
		s.Equal(i, f.Order)
	}
	s.Equal(1, lo.CountBy(list.Fields, func(f dto.ListFieldResponse) bool { return f.Primary }))
}

func (s *ServiceSuite) TestDefineSchemaRejectsBadFields() {
	appWS := s.appWorkspace()

	_, err := s.schemas.DefineSchema(s.ctx, appWS, &dto.CreateListRequest{
		Name: "Broken",
		Fields: []dto.SchemaField{
			textField("a", "A", 0),
			{ID: "b", FieldLabel: "B", FieldType: "rating"},
			{ID: "a", FieldLabel: "Again", FieldType: "text"},
			{ID: "c", FieldLabel: "   ", FieldType: "text"},
			{ID: "d", FieldLabel: "Owner", FieldType: "choose-from-list"},
		},
	})
	s.Require().True(apperr.IsValidation(err))

	details := apperr.Details(err)
	s.Contains(details, "fields[1].fieldType")
	s.Contains(details, "fields[2].id")
	s.Contains(details, "fields[3].fieldLabel")
	s.Contains(details, "fields[4].fieldList")

	s.Equal(0, s.repo.CountRows()["lists"])
	s.Equal(0, s.repo.CountRows()["list_fields"])
}

func (s *ServiceSuite) TestDefineSchemaRejectsTwoPrimaries() {
	appWS := s.appWorkspace()

	_, err := s.schemas.DefineSchema(s.ctx, appWS, &dto.CreateListRequest{
		Name: "Tasks",
		Fields: []dto.SchemaField{
			{ID: "a", FieldLabel: "A", FieldType: "text", Primary: lo.ToPtr(true)},
			{ID: "b", FieldLabel: "B", FieldType: "text", Primary: lo.ToPtr(true)},
		},
	})
	s.True(apperr.IsValidation(err))
}

func (s *ServiceSuite) TestSelectListMustBeInSameApp() {
	appWS := s.appWorkspace()
	otherApp := s.appWorkspace()
	foreign := s.defineList(otherApp, "Statuses", textField("s", "Status", 0))
	local := s.defineList(appWS, "Statuses", textField("s", "Status", 0))

	foreignID := foreign.List.ID.String()
	_, err := s.schemas.DefineSchema(s.ctx, appWS, &dto.CreateListRequest{
		Name: "Tasks",
		Fields: []dto.SchemaField{
			textField("t", "Title", 0),
			{ID: "st", FieldLabel: "Status", FieldType: "choose-from-list", FieldList: &foreignID},
		},
	})
	s.Require().True(apperr.IsValidation(err))
	s.Contains(apperr.Details(err), "fields[1].fieldList")

	localID := local.List.ID.String()
	list, err := s.schemas.DefineSchema(s.ctx, appWS, &dto.CreateListRequest{
		Name: "Tasks",
		Fields: []dto.SchemaField{
			textField("t", "Title", 0),
			{ID: "st", FieldLabel: "Status", FieldType: "choose-from-list", FieldList: &localID},
		},
	})
	s.Require().NoError(err)
	s.Equal(local.List.ID, *list.Fields[1].FieldList)

	s.Require().NoError(s.workspaces.ArchiveList(s.ctx, local))
	_, err = s.schemas.DefineSchema(s.ctx, appWS, &dto.CreateListRequest{
		Name: "More tasks",
		Fields: []dto.SchemaField{
			{ID: "st", FieldLabel: "Status", FieldType: "choose-from-list", FieldList: &localID},
		},
	})
	s.True(apperr.IsValidation(err))
}

func (s *ServiceSuite) TestUpdateSchemaPartialChange() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Tasks",
		textField("title", "Title", 0),
		textField("estimate", "Estimate", 1),
		textField("notes", "Notes", 2),
	)
	before := listWS.List.SchemaHash

	list, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Name: "Work items",
		Fields: []dto.SchemaField{
			{ID: "estimate", FieldLabel: "Points", FieldType: "number", Order: 1},
			{ID: "owner", FieldLabel: "Owner", FieldType: "text", Order: 9},
		},
		Removed: []string{"notes", "never-existed"},
	})
	s.Require().NoError(err)

	s.Equal("Work items", list.Name)
	s.Equal(2, list.SchemaVersion)
	s.NotEqual(before, list.SchemaHash)
	s.Equal([]string{"title", "estimate", "owner"}, fieldIDs(list.Fields))
	s.Equal("number", list.Fields[1].FieldType)
	s.Equal("Points", list.Fields[1].FieldLabel)
	s.True(list.Fields[0].Primary)

	// the type change is persisted, not just echoed back
	stored, err := s.repo.GetActiveListField(s.ctx, listWS.List.ID, "estimate")
	s.Require().NoError(err)
	s.EqualValues("number", stored.FieldType)

	_, err = s.repo.GetActiveListField(s.ctx, listWS.List.ID, "notes")
	s.True(apperr.IsNotFound(err))

	schema, err := s.schemas.GetSchema(s.ctx, s.refresh(listWS).List)
	s.Require().NoError(err)
	s.Len(schema, 3)
}

func (s *ServiceSuite) TestUpdateSchemaPromotesWhenPrimaryRemoved() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Tasks",
		textField("title", "Title", 0),
		textField("b", "B", 1),
		textField("a", "A", 2),
	)

	list, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{Removed: []string{"title"}})
	s.Require().NoError(err)

	s.Equal([]string{"b", "a"}, fieldIDs(list.Fields))
	s.True(list.Fields[0].Primary)
	s.True(list.Fields[0].Required)
	s.False(list.Fields[1].Primary)
	s.Equal(0, list.Fields[0].Order)
	s.Equal(1, list.Fields[1].Order)
}

func (s *ServiceSuite) TestUpdateSchemaMovesPrimary() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Tasks",
		textField("title", "Title", 0),
		textField("code", "Code", 1),
	)

	list, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Fields: []dto.SchemaField{{ID: "code", FieldLabel: "Code", FieldType: "text", Order: 1, Primary: lo.ToPtr(true)}},
	})
	s.Require().NoError(err)

	primaries := lo.Filter(list.Fields, func(f dto.ListFieldResponse, _ int) bool { return f.Primary })
	s.Require().Len(primaries, 1)
	s.Equal("code", primaries[0].ID)

	title, err := s.repo.GetActiveListField(s.ctx, listWS.List.ID, "title")
	s.Require().NoError(err)
	s.False(title.Primary)
}

func (s *ServiceSuite) TestUpdateSchemaKeepsPrimaryWhenOmitted() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Tasks",
		textField("title", "Title", 0),
		textField("code", "Code", 1),
	)
	_, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Fields: []dto.SchemaField{{ID: "code", FieldLabel: "Code", FieldType: "text", Order: 1, Primary: lo.ToPtr(true)}},
	})
	s.Require().NoError(err)

	list, err := s.schemas.UpdateSchema(s.ctx, s.refresh(listWS), &dto.UpdateListRequest{
		Fields: []dto.SchemaField{{ID: "code", FieldLabel: "Code 2", FieldType: "text", Order: 1}},
	})
	s.Require().NoError(err)

	primaries := lo.Filter(list.Fields, func(f dto.ListFieldResponse, _ int) bool { return f.Primary })
	s.Require().Len(primaries, 1)
	s.Equal("code", primaries[0].ID)
	s.Equal("Code 2", primaries[0].FieldLabel)

	code, err := s.repo.GetActiveListField(s.ctx, listWS.List.ID, "code")
	s.Require().NoError(err)
	s.True(code.Primary)
	title, err := s.repo.GetActiveListField(s.ctx, listWS.List.ID, "title")
	s.Require().NoError(err)
	s.False(title.Primary)
}

func (s *ServiceSuite) TestUpdateSchemaRejectsTypeChangeWithValues() {
	listWS := s.contactsList()
	_, err := s.records.SaveRecord(s.ctx, listWS, &dto.SaveRecordRequest{
		FieldValues: values("name", "Ada", "email", "ada@example.com"),
	})
	s.Require().NoError(err)

	_, err = s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Fields: []dto.SchemaField{{ID: "email", FieldLabel: "Email", FieldType: "number", Order: 2}},
	})
	s.Require().True(apperr.IsValidation(err))
	s.Contains(apperr.Details(err), "fields[0].fieldType")

	email, err := s.repo.GetActiveListField(s.ctx, listWS.List.ID, "email")
	s.Require().NoError(err)
	s.EqualValues("text", email.FieldType)
	s.Equal(1, s.refresh(listWS).List.SchemaVersion)

	// age has no stored values yet
	list, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Fields: []dto.SchemaField{{ID: "age", FieldLabel: "Age", FieldType: "text", Order: 1}},
	})
	s.Require().NoError(err)
	s.Equal("text", list.Fields[1].FieldType)
}

func (s *ServiceSuite) TestUpdateSchemaRejections() {
	appWS := s.appWorkspace()
	listWS := s.defineList(appWS, "Tasks", textField("title", "Title", 0), textField("b", "B", 1))

	_, err := s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{Removed: []string{"title", "b"}})
	s.True(apperr.IsValidation(err))

	_, err = s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Fields:  []dto.SchemaField{textField("b", "B", 1)},
		Removed: []string{"b"},
	})
	s.True(apperr.IsValidation(err))

	_, err = s.schemas.UpdateSchema(s.ctx, listWS, &dto.UpdateListRequest{
		Fields: []dto.SchemaField{
			{ID: "title", FieldLabel: "Title", FieldType: "text", Primary: lo.ToPtr(true)},
			{ID: "b", FieldLabel: "B", FieldType: "text", Primary: lo.ToPtr(true)},
		},
	})
	s.True(apperr.IsValidation(err))

	list, err := s.repo.GetList(s.ctx, listWS.List.ID)
	s.Require().NoError(err)
	s.Equal(1, list.SchemaVersion)
	fields, err := s.repo.ListActiveListFields(s.ctx, listWS.List.ID)
	s.Require().NoError(err)
	s.Len(fields, 2)
}

func (s *ServiceSuite) TestSchemaFingerprintStable() {
	a := []*models.ListField{{FieldID: "x", FieldType: "text", FieldLabel: "X", Primary: true}}
	b := []*models.ListField{{FieldID: "x", FieldType: "text", FieldLabel: "X", Primary: true}}
	s.Equal(schemaFingerprint(a), schemaFingerprint(b))

	b[0].FieldLabel = "Y"
	s.NotEqual(schemaFingerprint(a), schemaFingerprint(b))
}

func (s *ServiceSuite) TestFieldTypes() {
	resp := s.schemas.FieldTypes()
	s.True(resp.Success)
	s.Len(resp.Types, 4)
}
