package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/repository"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// RecordService saves and reads records against the current list schema.
type RecordService struct {
	repo    repository.Repository
	schemas *SchemaService
}

func NewRecordService(repo repository.Repository, schemas *SchemaService) *RecordService {
	return &RecordService{repo: repo, schemas: schemas}
}

type cellWrite struct {
	field *models.ListField
	value string
	clear bool
}

// SaveRecord creates a record, or updates the one named by req.RecordID, and
// writes its values in one transaction. A null value is skipped and an empty
// value clears the cell. Values for fields that are no longer in the schema
// are dropped and reported as warnings.
func (s *RecordService) SaveRecord(ctx context.Context, ws *Workspace, req *dto.SaveRecordRequest) (*dto.SaveRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fields, err := s.schemas.GetSchema(ctx, ws.List)
	if err != nil {
		return nil, err
	}
	byFieldID := make(map[string]*models.ListField, len(fields))
	for i := range fields {
		byFieldID[fields[i].FieldID] = &fields[i]
	}

	record, err := s.targetRecord(ctx, ws.List, req.RecordID)
	if err != nil {
		return nil, err
	}
	isNew := record == nil

	var (
		writes   []cellWrite
		warnings []dto.Warning
		details  = make(map[string]any)
		given    = make(map[string]int, len(req.FieldValues))
	)
	for i, fv := range req.FieldValues {
		key := fmt.Sprintf("fieldValues[%d]", i)
		fieldID := strings.TrimSpace(fv.FieldID)

		if prev, dup := given[fieldID]; dup {
			details[key+".fieldId"] = fmt.Sprintf("duplicates fieldValues[%d].fieldId", prev)
			continue
		}
		given[fieldID] = i

		field, ok := byFieldID[fieldID]
		if !ok {
			warnings = append(warnings, dto.Warning{
				Code:    apperr.CodeStaleReference,
				FieldID: fieldID,
				Message: "Field is not part of this list and was ignored",
			})
			continue
		}
		if !fv.FieldValue.Valid {
			continue
		}

		if strings.TrimSpace(fv.FieldValue.String) == "" {
			if field.Required {
				details[key+".fieldValue"] = fmt.Sprintf("%s is required", field.FieldLabel)
				continue
			}
			writes = append(writes, cellWrite{field: field, clear: true})
			continue
		}

		value, err := catalog.NormalizeValue(field.FieldType, fv.FieldValue.String)
		if err != nil {
			details[key+".fieldValue"] = err.Error()
			continue
		}
		problem, err := s.checkOptions(ctx, field, value)
		if err != nil {
			return nil, err
		}
		if problem != "" {
			details[key+".fieldValue"] = problem
			continue
		}
		writes = append(writes, cellWrite{field: field, value: value})
	}

	if isNew {
		setNow := lo.SliceToMap(writes, func(w cellWrite) (string, bool) {
			return w.field.FieldID, !w.clear
		})
		for _, f := range fields {
			if f.Required && !setNow[f.FieldID] {
				if _, reported := given[f.FieldID]; reported && hasDetailFor(details, given[f.FieldID]) {
					continue
				}
				details["fieldValues."+f.FieldID] = fmt.Sprintf("%s is required", f.FieldLabel)
			}
		}
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Invalid record values", details)
	}

	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		list, err := tx.GetList(ctx, ws.List.ID)
		if err != nil {
			return err
		}
		if !list.Status.IsActive() {
			return apperr.Conflict("list")
		}
		if isNew {
			record = &models.Record{
				ID:            uuid.New(),
				ListID:        ws.List.ID,
				Status:        models.StatusActive,
				CreatedUserID: ws.UserID,
			}
			if err := tx.CreateRecord(ctx, record); err != nil {
				return err
			}
		} else if err := tx.UpdateRecord(ctx, record); err != nil {
			return err
		}

		for _, w := range writes {
			if err := writeCell(ctx, tx, ws.UserID, record.ID, w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("record save failed", append(ws.LogAttrs(), "action", "record.save", "error", err)...)
		return nil, err
	}

	if len(warnings) > 0 {
		slog.Warn("record save ignored unknown fields", append(ws.LogAttrs(),
			"record_id", record.ID.String(), "action", "record.save", "ignored", len(warnings))...)
	}
	slog.Info("record saved", append(ws.LogAttrs(),
		"record_id", record.ID.String(), "action", "record.save", "created", isNew, "cells", len(writes))...)

	resp, err := s.recordWithValues(ctx, fields, record)
	if err != nil {
		return nil, err
	}
	return &dto.SaveRecordResponse{
		Success:  true,
		Created:  isNew,
		Record:   *resp,
		Warnings: warnings,
	}, nil
}

// RecordWithValues returns the record with one entry per active field.
func (s *RecordService) RecordWithValues(ctx context.Context, ws *Workspace) (*dto.RecordResponse, error) {
	fields, err := s.schemas.GetSchema(ctx, ws.List)
	if err != nil {
		return nil, err
	}
	return s.recordWithValues(ctx, fields, ws.Record)
}

// ListRecords pages the active records of a list, newest first. Each record
// carries its primary field value as title.
func (s *RecordService) ListRecords(ctx context.Context, ws *Workspace, page dto.PageQuery) (*dto.RecordListResponse, error) {
	page.Normalize()

	fields, err := s.schemas.GetSchema(ctx, ws.List)
	if err != nil {
		return nil, err
	}
	records, total, err := s.repo.ListActiveRecords(ctx, ws.List.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}

	titles := map[uuid.UUID]string{}
	if primary, ok := lo.Find(fields, func(f models.ListField) bool { return f.Primary }); ok && len(records) > 0 {
		cells, err := s.repo.ListActiveRecordFields(ctx, lo.Map(records, func(r models.Record, _ int) uuid.UUID { return r.ID }))
		if err != nil {
			return nil, err
		}
		for _, c := range cells {
			if c.ListFieldID == primary.ID {
				titles[c.RecordID] = c.Value
			}
		}
	}

	resp := &dto.RecordListResponse{
		Success: true,
		Records: make([]dto.RecordResponse, 0, len(records)),
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	for _, r := range records {
		item := recordResponse(&r)
		if title, ok := titles[r.ID]; ok {
			item.Title = lo.ToPtr(title)
		}
		resp.Records = append(resp.Records, item)
	}
	return resp, nil
}

func (s *RecordService) ArchiveRecord(ctx context.Context, ws *Workspace) error {
	record := *ws.Record
	if err := checkTransition("record", record.Status, models.StatusArchived); err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, repository.EntityRecord, record.ID, record.Status, models.StatusArchived); err != nil {
		return err
	}

	slog.Info("record archived", append(ws.LogAttrs(), "record_id", record.ID.String(), "action", "record.archive")...)
	return nil
}

// targetRecord loads the record being updated, or returns nil for a new one.
func (s *RecordService) targetRecord(ctx context.Context, list *models.List, raw *string) (*models.Record, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperr.NotFound("record")
	}
	record, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.ListID != list.ID || !record.Status.IsActive() {
		return nil, apperr.NotFound("record")
	}
	return record, nil
}

// checkOptions verifies that every id in an option value is an active record
// of the field's option list.
func (s *RecordService) checkOptions(ctx context.Context, field *models.ListField, value string) (string, error) {
	ids := catalog.OptionIDs(field.FieldType, value)
	if len(ids) == 0 {
		return "", nil
	}
	if field.SelectListID == nil {
		return "field has no option list", nil
	}
	count, err := s.repo.CountActiveRecords(ctx, *field.SelectListID, ids)
	if err != nil {
		return "", err
	}
	if count != int64(len(ids)) {
		return "references a record that is not in the option list", nil
	}
	return "", nil
}

func (s *RecordService) recordWithValues(ctx context.Context, fields []models.ListField, record *models.Record) (*dto.RecordResponse, error) {
	cells, err := s.repo.ListActiveRecordFields(ctx, []uuid.UUID{record.ID})
	if err != nil {
		return nil, err
	}
	byField := lo.SliceToMap(cells, func(c models.RecordField) (uuid.UUID, string) {
		return c.ListFieldID, c.Value
	})

	resp := recordResponse(record)
	resp.Values = make([]dto.RecordValue, 0, len(fields))
	for _, f := range fields {
		v := dto.RecordValue{
			FieldID:    f.FieldID,
			FieldLabel: f.FieldLabel,
			FieldType:  string(f.FieldType),
			Visible:    f.Visible,
			Primary:    f.Primary,
		}
		if value, ok := byField[f.ID]; ok {
			v.Value = lo.ToPtr(value)
			if f.Primary {
				resp.Title = v.Value
			}
		}
		resp.Values = append(resp.Values, v)
	}
	return &resp, nil
}

func writeCell(ctx context.Context, tx repository.Repository, userID, recordID uuid.UUID, w cellWrite) error {
	cell, err := tx.GetActiveRecordField(ctx, recordID, w.field.ID)
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}

	switch {
	case w.clear && cell == nil:
		return nil
	case w.clear:
		cell.Status = models.StatusDeleted
		return tx.UpdateRecordField(ctx, cell)
	case cell == nil:
		return tx.CreateRecordField(ctx, &models.RecordField{
			ID:            uuid.New(),
			RecordID:      recordID,
			ListFieldID:   w.field.ID,
			Value:         w.value,
			Status:        models.StatusActive,
			CreatedUserID: userID,
		})
	case cell.Value == w.value:
		return nil
	default:
		cell.Value = w.value
		return tx.UpdateRecordField(ctx, cell)
	}
}

func hasDetailFor(details map[string]any, index int) bool {
	prefix := fmt.Sprintf("fieldValues[%d].", index)
	for k := range details {
		if strings.HasPrefix(k, prefix) {
			return true
		}
	}
	return false
}

func recordResponse(record *models.Record) dto.RecordResponse {
	return dto.RecordResponse{
		ID:        record.ID,
		ListID:    record.ListID,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
