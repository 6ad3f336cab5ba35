package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRepository is the Postgres-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
	return apperr.Transaction(err)
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) create(ctx context.Context, value any, op string) error {
	if err := r.db.WithContext(ctx).Create(value).Error; err != nil {
		return apperr.Database(err, op)
	}
	return nil
}

func (r *GormRepository) save(ctx context.Context, value any, op string) error {
	if err := r.db.WithContext(ctx).Save(value).Error; err != nil {
		return apperr.Database(err, op)
	}
	return nil
}

// guardedUpdate writes values to the rows of model matched by where. Zero
// affected rows means the row changed after the caller read it.
func (r *GormRepository) guardedUpdate(ctx context.Context, model any, resource, op string, values map[string]any, where string, args ...any) error {
	res := r.db.WithContext(ctx).Model(model).Where(where, args...).Updates(values)
	if res.Error != nil {
		return apperr.Database(res.Error, op)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict(resource)
	}
	return nil
}

var statusModels = map[Entity]func() any{
	EntityOrganization: func() any { return &models.Organization{} },
	EntityApp:          func() any { return &models.App{} },
	EntityList:         func() any { return &models.List{} },
	EntityRecord:       func() any { return &models.Record{} },
}

func (r *GormRepository) SetStatus(ctx context.Context, entity Entity, id uuid.UUID, from, to models.Status) error {
	model, ok := statusModels[entity]
	if !ok {
		return apperr.Database(errors.New("unknown entity "+string(entity)), "set status")
	}
	return r.guardedUpdate(ctx, model(), string(entity), "set "+string(entity)+" status",
		map[string]any{"status": to, "updated_at": time.Now()},
		"id = ? AND status = ?", id, from)
}

func notFoundOr(err error, resource, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return apperr.Database(err, op)
}

// --- organizations ---

func (r *GormRepository) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return r.create(ctx, org, "create organization")
}

func (r *GormRepository) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()
	return r.guardedUpdate(ctx, &models.Organization{}, "organization", "update organization",
		map[string]any{"name": org.Name, "updated_at": org.UpdatedAt},
		"id = ? AND status = ?", org.ID, models.StatusActive)
}

func (r *GormRepository) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "organization", "get organization")
	}
	return &org, nil
}

func (r *GormRepository) CreateOrganizationUser(ctx context.Context, member *models.OrganizationUser) error {
	return r.create(ctx, member, "create organization user")
}

func (r *GormRepository) GetOrganizationUser(ctx context.Context, organizationID, userID uuid.UUID) (*models.OrganizationUser, error) {
	var member models.OrganizationUser
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error
	if err != nil {
		return nil, notFoundOr(err, "organization membership", "get organization user")
	}
	return &member, nil
}

func (r *GormRepository) ListVisibleOrganizations(ctx context.Context, userID uuid.UUID) ([]models.Organization, error) {
	var orgs []models.Organization
	err := r.db.WithContext(ctx).
		Joins("JOIN organization_users ON organization_users.organization_id = organizations.id").
		Where("organization_users.user_id = ?", userID).
		Scopes(tenant.Active("organization_users"), tenant.Active("organizations")).
		Order("organizations.name ASC").
		Find(&orgs).Error
	if err != nil {
		return nil, apperr.Database(err, "list visible organizations")
	}
	return orgs, nil
}

// --- apps ---

func (r *GormRepository) CreateApp(ctx context.Context, app *models.App) error {
	return r.create(ctx, app, "create app")
}

func (r *GormRepository) UpdateApp(ctx context.Context, app *models.App) error {
	app.UpdatedAt = time.Now()
	return r.guardedUpdate(ctx, &models.App{}, "app", "update app",
		map[string]any{"name": app.Name, "description": app.Description, "updated_at": app.UpdatedAt},
		"id = ? AND status = ?", app.ID, models.StatusActive)
}

func (r *GormRepository) GetApp(ctx context.Context, id uuid.UUID) (*models.App, error) {
	var app models.App
	if err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "app", "get app")
	}
	return &app, nil
}

func (r *GormRepository) CreateAppUser(ctx context.Context, member *models.AppUser) error {
	return r.create(ctx, member, "create app user")
}

func (r *GormRepository) GetAppUser(ctx context.Context, appID, userID uuid.UUID) (*models.AppUser, error) {
	var member models.AppUser
	err := r.db.WithContext(ctx).
		Where("app_id = ? AND user_id = ?", appID, userID).
		First(&member).Error
	if err != nil {
		return nil, notFoundOr(err, "app membership", "get app user")
	}
	return &member, nil
}

func (r *GormRepository) ListVisibleApps(ctx context.Context, userID, organizationID uuid.UUID) ([]models.App, error) {
	var apps []models.App
	err := r.db.WithContext(ctx).
		Joins("JOIN app_users ON app_users.app_id = apps.id").
		Where("app_users.user_id = ? AND apps.organization_id = ?", userID, organizationID).
		Scopes(tenant.Active("app_users"), tenant.Active("apps")).
		Order("apps.name ASC").
		Find(&apps).Error
	if err != nil {
		return nil, apperr.Database(err, "list visible apps")
	}
	return apps, nil
}

// --- lists ---

func (r *GormRepository) CreateList(ctx context.Context, list *models.List) error {
	return r.create(ctx, list, "create list")
}

func (r *GormRepository) UpdateList(ctx context.Context, list *models.List, fromVersion int) error {
	list.UpdatedAt = time.Now()
	return r.guardedUpdate(ctx, &models.List{}, "list", "update list",
		map[string]any{
			"name":           list.Name,
			"schema_version": list.SchemaVersion,
			"schema_hash":    list.SchemaHash,
			"updated_at":     list.UpdatedAt,
		},
		"id = ? AND status = ? AND schema_version = ?", list.ID, models.StatusActive, fromVersion)
}

func (r *GormRepository) GetList(ctx context.Context, id uuid.UUID) (*models.List, error) {
	var list models.List
	if err := r.db.WithContext(ctx).First(&list, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "list", "get list")
	}
	return &list, nil
}

func (r *GormRepository) ListActiveLists(ctx context.Context, appID uuid.UUID) ([]models.List, error) {
	var lists []models.List
	err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Scopes(tenant.Active("lists")).
		Order("name ASC").
		Find(&lists).Error
	if err != nil {
		return nil, apperr.Database(err, "list lists")
	}
	return lists, nil
}

// --- list fields ---

func (r *GormRepository) CreateListField(ctx context.Context, field *models.ListField) error {
	return r.create(ctx, field, "create list field")
}

func (r *GormRepository) UpdateListField(ctx context.Context, field *models.ListField) error {
	return r.save(ctx, field, "update list field")
}

func (r *GormRepository) GetActiveListField(ctx context.Context, listID uuid.UUID, fieldID string) (*models.ListField, error) {
	var field models.ListField
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForList(listID), tenant.Active("list_fields")).
		Where("field_id = ?", fieldID).
		First(&field).Error
	if err != nil {
		return nil, notFoundOr(err, "field", "get list field")
	}
	return &field, nil
}

func (r *GormRepository) ListActiveListFields(ctx context.Context, listID uuid.UUID) ([]models.ListField, error) {
	var fields []models.ListField
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForList(listID), tenant.Active("list_fields")).
		Order("sort_order ASC").
		Order("created_at ASC").
		Find(&fields).Error
	if err != nil {
		return nil, apperr.Database(err, "list list fields")
	}
	return fields, nil
}

// --- records ---

func (r *GormRepository) CreateRecord(ctx context.Context, record *models.Record) error {
	return r.create(ctx, record, "create record")
}

func (r *GormRepository) UpdateRecord(ctx context.Context, record *models.Record) error {
	record.UpdatedAt = time.Now()
	return r.guardedUpdate(ctx, &models.Record{}, "record", "update record",
		map[string]any{"updated_at": record.UpdatedAt},
		"id = ? AND status = ?", record.ID, models.StatusActive)
}

func (r *GormRepository) GetRecord(ctx context.Context, id uuid.UUID) (*models.Record, error) {
	var record models.Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "record", "get record")
	}
	return &record, nil
}

func (r *GormRepository) ListActiveRecords(ctx context.Context, listID uuid.UUID, limit, offset int) ([]models.Record, int64, error) {
	var records []models.Record
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Record{}).
		Scopes(tenant.ForList(listID), tenant.Active("records"))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Database(err, "count records")
	}
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error; err != nil {
		return nil, 0, apperr.Database(err, "list records")
	}
	return records, total, nil
}

func (r *GormRepository) CountActiveRecords(ctx context.Context, listID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Record{}).
		Scopes(tenant.ForList(listID), tenant.Active("records")).
		Where("id IN ?", ids).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Database(err, "count records")
	}
	return count, nil
}

// --- record fields ---

func (r *GormRepository) CreateRecordField(ctx context.Context, cell *models.RecordField) error {
	return r.create(ctx, cell, "create record field")
}

func (r *GormRepository) UpdateRecordField(ctx context.Context, cell *models.RecordField) error {
	return r.save(ctx, cell, "update record field")
}

func (r *GormRepository) CountActiveRecordFields(ctx context.Context, listFieldID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RecordField{}).
		Scopes(tenant.Active("record_fields")).
		Where("list_field_id = ?", listFieldID).
		Count(&count).Error
	if err != nil {
		return 0, apperr.Database(err, "count record fields")
	}
	return count, nil
}

func (r *GormRepository) GetActiveRecordField(ctx context.Context, recordID, listFieldID uuid.UUID) (*models.RecordField, error) {
	var cell models.RecordField
	err := r.db.WithContext(ctx).
		Scopes(tenant.Active("record_fields")).
		Where("record_id = ? AND list_field_id = ?", recordID, listFieldID).
		First(&cell).Error
	if err != nil {
		return nil, notFoundOr(err, "record field", "get record field")
	}
	return &cell, nil
}

func (r *GormRepository) ListActiveRecordFields(ctx context.Context, recordIDs []uuid.UUID) ([]models.RecordField, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	var cells []models.RecordField
	err := r.db.WithContext(ctx).
		Scopes(tenant.Active("record_fields")).
		Where("record_id IN ?", recordIDs).
		Find(&cells).Error
	if err != nil {
		return nil, apperr.Database(err, "list record fields")
	}
	return cells, nil
}
