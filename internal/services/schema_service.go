package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/cache"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/dto"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/repository"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"
	"golang.org/x/crypto/blake2b"
)

// SchemaService defines and evolves list schemas.
type SchemaService struct {
	repo  repository.Repository
	cache cache.Cache
}

func NewSchemaService(repo repository.Repository, c cache.Cache) *SchemaService {
	if c == nil {
		c = cache.Noop{}
	}
	return &SchemaService{repo: repo, cache: c}
}

// DefineSchema creates a list and its fields. The first submitted field
// becomes the primary field.
func (s *SchemaService) DefineSchema(ctx context.Context, ws *Workspace, req *dto.CreateListRequest) (*dto.ListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}

	drafts, details, err := s.prepareFields(ctx, ws.App, req.Fields)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Invalid list schema", details)
	}

	fields := make([]*models.ListField, len(drafts))
	for i := range drafts {
		fields[i] = &drafts[i]
	}
	primaryID := drafts[0].FieldID
	normalizeOrder(fields)
	settlePrimary(fields, primaryID)

	list := &models.List{
		ID:            uuid.New(),
		AppID:         ws.App.ID,
		Name:          name,
		Status:        models.StatusActive,
		SchemaVersion: 1,
		SchemaHash:    schemaFingerprint(fields),
		CreatedUserID: ws.UserID,
	}

	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		if err := tx.CreateList(ctx, list); err != nil {
			return err
		}
		for _, f := range fields {
			f.ID = uuid.New()
			f.ListID = list.ID
			f.CreatedUserID = ws.UserID
			if err := tx.CreateListField(ctx, f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("list define failed", append(ws.LogAttrs(), "action", "list.define", "error", err)...)
		return nil, err
	}

	slog.Info("list defined", append(ws.LogAttrs(), "list_id", list.ID.String(), "action", "list.define", "fields", len(fields))...)
	resp := listResponse(list, derefFields(fields))
	return &resp, nil
}

// UpdateSchema applies a partial schema change: submitted fields are updated
// by id or created, removed ids are soft-deleted, everything else is kept.
// Order is renumbered and exactly one primary field remains afterwards.
func (s *SchemaService) UpdateSchema(ctx context.Context, ws *Workspace, req *dto.UpdateListRequest) (*dto.ListResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	list := *ws.List
	if name := strings.TrimSpace(req.Name); name != "" {
		list.Name = name
	}

	existing, err := s.repo.ListActiveListFields(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	drafts, details, err := s.prepareFields(ctx, ws.App, req.Fields)
	if err != nil {
		return nil, err
	}

	removed := make(map[string]struct{}, len(req.Removed))
	for _, id := range req.Removed {
		if id = strings.TrimSpace(id); id != "" {
			removed[id] = struct{}{}
		}
	}
	current := lo.SliceToMap(existing, func(f models.ListField) (string, models.ListField) {
		return f.FieldID, f
	})
	for i, d := range drafts {
		if _, ok := removed[d.FieldID]; ok {
			details[fmt.Sprintf("fields[%d].id", i)] = "is also listed in removed"
		}
		prev, ok := current[d.FieldID]
		if !ok || d.FieldType == "" || prev.FieldType == d.FieldType {
			continue
		}
		stored, err := s.repo.CountActiveRecordFields(ctx, prev.ID)
		if err != nil {
			return nil, err
		}
		if stored > 0 {
			details[fmt.Sprintf("fields[%d].fieldType", i)] = "cannot change the type of a field that already has values"
		}
	}
	if len(details) > 0 {
		return nil, apperr.Validation("Invalid list schema", details)
	}

	var (
		working   []*models.ListField
		primaryID string
		submitted = make(map[string]struct{}, len(drafts))
	)
	for i := range drafts {
		d := drafts[i]
		submitted[d.FieldID] = struct{}{}
		if d.Primary && primaryID == "" {
			primaryID = d.FieldID
		}
		if prev, ok := current[d.FieldID]; ok {
			prev.FieldLabel = d.FieldLabel
			prev.FieldType = d.FieldType
			prev.Required = d.Required
			prev.Visible = d.Visible
			if req.Fields[i].Primary != nil {
				prev.Primary = d.Primary
			}
			prev.Order = d.Order
			prev.SelectListID = d.SelectListID
			working = append(working, &prev)
			continue
		}
		working = append(working, &d)
	}
	for _, f := range existing {
		if _, ok := submitted[f.FieldID]; ok {
			continue
		}
		if _, ok := removed[f.FieldID]; ok {
			continue
		}
		working = append(working, &f)
	}
	if len(working) == 0 {
		return nil, apperr.Validation("A list needs at least one field", map[string]any{
			"removed": "would remove every field",
		})
	}

	normalizeOrder(working)
	settlePrimary(working, primaryID)

	list.SchemaVersion++
	list.SchemaHash = schemaFingerprint(working)

	var created, changed, deleted int
	err = s.repo.WithTx(ctx, func(tx repository.Repository) error {
		// claims the version first so a concurrent update fails before any
		// field is touched
		if err := tx.UpdateList(ctx, &list, ws.List.SchemaVersion); err != nil {
			return err
		}
		for _, f := range existing {
			if _, ok := removed[f.FieldID]; !ok {
				continue
			}
			if err := checkTransition("field", f.Status, models.StatusDeleted); err != nil {
				return err
			}
			f.Status = models.StatusDeleted
			if err := tx.UpdateListField(ctx, &f); err != nil {
				return err
			}
			deleted++
		}
		for _, f := range working {
			if f.ID == uuid.Nil {
				f.ID = uuid.New()
				f.ListID = list.ID
				f.CreatedUserID = ws.UserID
				if err := tx.CreateListField(ctx, f); err != nil {
					return err
				}
				created++
				continue
			}
			if sameField(current[f.FieldID], *f) {
				continue
			}
			if err := tx.UpdateListField(ctx, f); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		slog.Error("list update failed", append(ws.LogAttrs(), "action", "list.update", "error", err)...)
		return nil, err
	}
	s.cache.Delete(ctx, schemaCacheKey(ws.List))

	slog.Info("list updated", append(ws.LogAttrs(),
		"action", "list.update",
		"schema_version", list.SchemaVersion,
		"created", created, "changed", changed, "deleted", deleted)...)
	resp := listResponse(&list, derefFields(working))
	return &resp, nil
}

// GetSchema returns the active fields of list ordered by order. Entries are
// cached per schema version, so a write never serves a stale schema to a
// reader that has already seen the new version.
func (s *SchemaService) GetSchema(ctx context.Context, list *models.List) ([]models.ListField, error) {
	key := schemaCacheKey(list)
	var fields []models.ListField
	if s.cache.Get(ctx, key, &fields) {
		return fields, nil
	}

	fields, err := s.repo.ListActiveListFields(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, fields, 0)
	return fields, nil
}

func (s *SchemaService) GetList(ctx context.Context, ws *Workspace) (*dto.ListResponse, error) {
	fields, err := s.GetSchema(ctx, ws.List)
	if err != nil {
		return nil, err
	}
	resp := listResponse(ws.List, fields)
	return &resp, nil
}

func (s *SchemaService) FieldTypes() dto.FieldTypesResponse {
	types := lo.Map(catalog.Types(), func(def catalog.Definition, _ int) dto.FieldTypeResponse {
		return dto.FieldTypeResponse{
			Type:               string(def.Type),
			Label:              def.Label,
			Domain:             string(def.Domain),
			RequiresSelectList: def.RequiresSelectList,
			Multiple:           def.Multiple,
		}
	})
	return dto.FieldTypesResponse{Success: true, CatalogVersion: catalog.Version, Types: types}
}

// prepareFields checks every submitted field and turns it into a draft row.
// Problems are collected into details keyed by the json path of the field;
// only store failures are returned as err.
func (s *SchemaService) prepareFields(ctx context.Context, app *models.App, submitted []dto.SchemaField) ([]models.ListField, map[string]any, error) {
	details := make(map[string]any)
	drafts := make([]models.ListField, 0, len(submitted))
	seen := make(map[string]int, len(submitted))
	primaries := 0

	for i, f := range submitted {
		key := fmt.Sprintf("fields[%d]", i)

		fieldID := strings.TrimSpace(f.ID)
		if fieldID == "" {
			fieldID = newFieldID()
		}
		if prev, dup := seen[fieldID]; dup {
			details[key+".id"] = fmt.Sprintf("duplicates fields[%d].id", prev)
		}
		seen[fieldID] = i

		label := strings.TrimSpace(f.FieldLabel)
		if label == "" {
			details[key+".fieldLabel"] = "is required"
		}

		fieldType, err := catalog.Parse(strings.TrimSpace(f.FieldType))
		if err != nil {
			details[key+".fieldType"] = "unknown field type"
		}

		var selectListID *uuid.UUID
		if err == nil && fieldType.RequiresSelectList() {
			id, problem, err := s.resolveSelectList(ctx, app, f.FieldList)
			if err != nil {
				return nil, nil, err
			}
			if problem != "" {
				details[key+".fieldList"] = problem
			} else {
				selectListID = &id
			}
		}

		if f.IsPrimary() {
			primaries++
		}

		drafts = append(drafts, models.ListField{
			FieldID:      fieldID,
			FieldLabel:   label,
			FieldType:    fieldType,
			Required:     f.Required,
			Visible:      f.IsVisible(),
			Primary:      f.IsPrimary(),
			Order:        f.Order,
			SelectListID: selectListID,
			Status:       models.StatusActive,
		})
	}

	if primaries > 1 {
		details["fields"] = "only one field can be primary"
	}
	return drafts, details, nil
}

// resolveSelectList returns the option list id, or a problem description when
// raw does not name an active list of the same app.
func (s *SchemaService) resolveSelectList(ctx context.Context, app *models.App, raw *string) (uuid.UUID, string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return uuid.Nil, "is required for this field type", nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return uuid.Nil, "must be a list id", nil
	}
	list, err := s.repo.GetList(ctx, id)
	if err != nil {
		if apperr.IsNotFound(err) {
			return uuid.Nil, "must reference an active list in this app", nil
		}
		return uuid.Nil, "", err
	}
	if list.AppID != app.ID || !list.Status.IsActive() {
		return uuid.Nil, "must reference an active list in this app", nil
	}
	return id, "", nil
}

func newFieldID() string {
	return strings.ToLower(ulid.Make().String())
}

// normalizeOrder sorts fields by order, keeping the incoming sequence for
// ties, and renumbers them 0..n-1.
func normalizeOrder(fields []*models.ListField) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})
	for i, f := range fields {
		f.Order = i
	}
}

// settlePrimary leaves exactly one primary field. preferred wins when set;
// otherwise the first field already marked primary, otherwise the first field.
// The primary field is always required and visible.
func settlePrimary(fields []*models.ListField, preferred string) {
	primary := preferred
	if primary == "" {
		for _, f := range fields {
			if f.Primary {
				primary = f.FieldID
				break
			}
		}
	}
	if primary == "" && len(fields) > 0 {
		primary = fields[0].FieldID
	}
	for _, f := range fields {
		f.Primary = f.FieldID == primary
		if f.Primary {
			f.Required = true
			f.Visible = true
		}
	}
}

// schemaFingerprint hashes the active schema in order. Two lists with the same
// fingerprint accept exactly the same record values.
func schemaFingerprint(fields []*models.ListField) string {
	h, _ := blake2b.New256(nil)
	for _, f := range fields {
		selectList := ""
		if f.SelectListID != nil {
			selectList = f.SelectListID.String()
		}
		fmt.Fprintf(h, "%s\x1f%s\x1f%s\x1f%t\x1f%t\x1f%t\x1f%d\x1f%s\x1e",
			f.FieldID, f.FieldType, f.FieldLabel, f.Required, f.Visible, f.Primary, f.Order, selectList)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sameField(a, b models.ListField) bool {
	return a.FieldLabel == b.FieldLabel &&
		a.FieldType == b.FieldType &&
		a.Required == b.Required &&
		a.Visible == b.Visible &&
		a.Primary == b.Primary &&
		a.Order == b.Order &&
		lo.FromPtr(a.SelectListID) == lo.FromPtr(b.SelectListID)
}

func schemaCacheKey(list *models.List) string {
	return cache.GenerateKey(cache.PrefixSchema, list.ID, list.SchemaVersion)
}

func derefFields(fields []*models.ListField) []models.ListField {
	return lo.Map(fields, func(f *models.ListField, _ int) models.ListField { return *f })
}

func listResponse(list *models.List, fields []models.ListField) dto.ListResponse {
	resp := dto.ListResponse{
		ID:             list.ID,
		AppID:          list.AppID,
		Name:           list.Name,
		Status:         string(list.Status),
		SchemaVersion:  list.SchemaVersion,
		SchemaHash:     list.SchemaHash,
		CatalogVersion: catalog.Version,
		CreatedAt:      list.CreatedAt,
		UpdatedAt:      list.UpdatedAt,
	}
	for _, f := range fields {
		resp.Fields = append(resp.Fields, dto.ListFieldResponse{
			ID:         f.FieldID,
			FieldLabel: f.FieldLabel,
			FieldType:  string(f.FieldType),
			Required:   f.Required,
			Visible:    f.Visible,
			Primary:    f.Primary,
			Order:      f.Order,
			FieldList:  f.SelectListID,
		})
	}
	return resp
}
