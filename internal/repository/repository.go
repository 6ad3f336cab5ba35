// Package repository persists the workspace hierarchy and the dynamic-schema
// rows (lists, fields, records, cells).
package repository

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/google/uuid"
)

// Entity names a status-carrying table for SetStatus.
type Entity string

const (
	EntityOrganization Entity = "organization"
	EntityApp          Entity = "app"
	EntityList         Entity = "list"
	EntityRecord       Entity = "record"
)

// Repository is the persistence port used by the services. Get* methods
// resolve a row regardless of status and return an apperr NotFound error when
// it does not exist; GetActive*/List* methods only see status=active rows.
//
// Update* methods on organizations, apps, lists and records are guarded: they
// only touch a row that is still active (and, for lists, still at the schema
// version the caller read), write only the columns they own, and return an
// apperr Conflict error when the guard matches nothing.
type Repository interface {
	// WithTx runs fn inside one transaction. Every write fn makes through tx
	// commits together or not at all.
	WithTx(ctx context.Context, fn func(tx Repository) error) error

	CreateOrganization(ctx context.Context, org *models.Organization) error
	// UpdateOrganization writes the name of an active organization.
	UpdateOrganization(ctx context.Context, org *models.Organization) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	CreateOrganizationUser(ctx context.Context, member *models.OrganizationUser) error
	GetOrganizationUser(ctx context.Context, organizationID, userID uuid.UUID) (*models.OrganizationUser, error)
	// ListVisibleOrganizations returns active organizations the user is an
	// active member of, ordered by name.
	ListVisibleOrganizations(ctx context.Context, userID uuid.UUID) ([]models.Organization, error)

	CreateApp(ctx context.Context, app *models.App) error
	// UpdateApp writes the name and description of an active app.
	UpdateApp(ctx context.Context, app *models.App) error
	GetApp(ctx context.Context, id uuid.UUID) (*models.App, error)
	CreateAppUser(ctx context.Context, member *models.AppUser) error
	GetAppUser(ctx context.Context, appID, userID uuid.UUID) (*models.AppUser, error)
	// ListVisibleApps returns active apps of the organization the user is an
	// active member of, ordered by name.
	ListVisibleApps(ctx context.Context, userID, organizationID uuid.UUID) ([]models.App, error)

	CreateList(ctx context.Context, list *models.List) error
	// UpdateList writes the name and schema stamp of an active list whose
	// stored schema version is still fromVersion.
	UpdateList(ctx context.Context, list *models.List, fromVersion int) error
	GetList(ctx context.Context, id uuid.UUID) (*models.List, error)
	ListActiveLists(ctx context.Context, appID uuid.UUID) ([]models.List, error)

	CreateListField(ctx context.Context, field *models.ListField) error
	UpdateListField(ctx context.Context, field *models.ListField) error
	GetActiveListField(ctx context.Context, listID uuid.UUID, fieldID string) (*models.ListField, error)
	// ListActiveListFields returns the active schema ordered by order, then
	// creation time.
	ListActiveListFields(ctx context.Context, listID uuid.UUID) ([]models.ListField, error)

	CreateRecord(ctx context.Context, record *models.Record) error
	// UpdateRecord bumps updated_at of an active record.
	UpdateRecord(ctx context.Context, record *models.Record) error
	GetRecord(ctx context.Context, id uuid.UUID) (*models.Record, error)
	// ListActiveRecords pages active records of a list, newest first.
	ListActiveRecords(ctx context.Context, listID uuid.UUID, limit, offset int) ([]models.Record, int64, error)
	// CountActiveRecords counts how many of ids are active records of listID.
	CountActiveRecords(ctx context.Context, listID uuid.UUID, ids []uuid.UUID) (int64, error)

	CreateRecordField(ctx context.Context, cell *models.RecordField) error
	UpdateRecordField(ctx context.Context, cell *models.RecordField) error
	// CountActiveRecordFields counts the stored values of one list field.
	CountActiveRecordFields(ctx context.Context, listFieldID uuid.UUID) (int64, error)
	GetActiveRecordField(ctx context.Context, recordID, listFieldID uuid.UUID) (*models.RecordField, error)
	ListActiveRecordFields(ctx context.Context, recordIDs []uuid.UUID) ([]models.RecordField, error)

	// SetStatus moves one row from status from to status to. It returns a
	// Conflict error when the row is no longer in from.
	SetStatus(ctx context.Context, entity Entity, id uuid.UUID, from, to models.Status) error

	Ping(ctx context.Context) error
}
