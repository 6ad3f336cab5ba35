package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/models"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type memoryState struct {
	organizations     map[uuid.UUID]models.Organization
	organizationUsers map[uuid.UUID]models.OrganizationUser
	apps              map[uuid.UUID]models.App
	appUsers          map[uuid.UUID]models.AppUser
	lists             map[uuid.UUID]models.List
	listFields        map[uuid.UUID]models.ListField
	records           map[uuid.UUID]models.Record
	recordFields      map[uuid.UUID]models.RecordField
	// seq orders rows created in the same instant.
	seq map[uuid.UUID]int64
	n   int64
}

func newMemoryState() *memoryState {
	return &memoryState{
		organizations:     map[uuid.UUID]models.Organization{},
		organizationUsers: map[uuid.UUID]models.OrganizationUser{},
		apps:              map[uuid.UUID]models.App{},
		appUsers:          map[uuid.UUID]models.AppUser{},
		lists:             map[uuid.UUID]models.List{},
		listFields:        map[uuid.UUID]models.ListField{},
		records:           map[uuid.UUID]models.Record{},
		recordFields:      map[uuid.UUID]models.RecordField{},
		seq:               map[uuid.UUID]int64{},
	}
}

func (s *memoryState) clone() memoryState {
	return memoryState{
		organizations:     lo.Assign(s.organizations),
		organizationUsers: lo.Assign(s.organizationUsers),
		apps:              lo.Assign(s.apps),
		appUsers:          lo.Assign(s.appUsers),
		lists:             lo.Assign(s.lists),
		listFields:        lo.Assign(s.listFields),
		records:           lo.Assign(s.records),
		recordFields:      lo.Assign(s.recordFields),
		seq:               lo.Assign(s.seq),
		n:                 s.n,
	}
}

func (s *memoryState) stamp(id uuid.UUID) {
	s.n++
	s.seq[id] = s.n
}

// MemoryRepository keeps everything in process memory. It backs the test
// suites and DB_DRIVER=memory. Transactions hold the lock for their whole
// duration and restore a snapshot on error.
type MemoryRepository struct {
	mu    *sync.Mutex
	state *memoryState
	inTx  bool
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		mu:    &sync.Mutex{},
		state: newMemoryState(),
		now:   time.Now,
	}
}

func (m *MemoryRepository) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *MemoryRepository) WithTx(ctx context.Context, fn func(tx Repository) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	tx := &MemoryRepository{mu: m.mu, state: m.state, inTx: true, now: m.now}
	if err := ctx.Err(); err != nil {
		return apperr.Transaction(err)
	}
	if err := fn(tx); err != nil {
		*m.state = snapshot
		return apperr.Transaction(err)
	}
	return nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) SetStatus(_ context.Context, entity Entity, id uuid.UUID, from, to models.Status) error {
	defer m.lock()()
	now := m.now()
	switch entity {
	case EntityOrganization:
		return setStatus(m.state.organizations, id, from, to, now, "organization",
			func(o *models.Organization) (*models.Status, *time.Time) { return &o.Status, &o.UpdatedAt })
	case EntityApp:
		return setStatus(m.state.apps, id, from, to, now, "app",
			func(a *models.App) (*models.Status, *time.Time) { return &a.Status, &a.UpdatedAt })
	case EntityList:
		return setStatus(m.state.lists, id, from, to, now, "list",
			func(l *models.List) (*models.Status, *time.Time) { return &l.Status, &l.UpdatedAt })
	case EntityRecord:
		return setStatus(m.state.records, id, from, to, now, "record",
			func(r *models.Record) (*models.Status, *time.Time) { return &r.Status, &r.UpdatedAt })
	}
	return apperr.Database(errors.Newf("unknown entity %s", entity), "set status")
}

// setStatus applies a compare-and-set status change to one row of rows.
func setStatus[T any](rows map[uuid.UUID]T, id uuid.UUID, from, to models.Status, now time.Time, resource string, fields func(*T) (*models.Status, *time.Time)) error {
	row, ok := rows[id]
	if !ok {
		return apperr.Conflict(resource)
	}
	status, updatedAt := fields(&row)
	if *status != from {
		return apperr.Conflict(resource)
	}
	*status, *updatedAt = to, now
	rows[id] = row
	return nil
}

func (m *MemoryRepository) newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// --- organizations ---

func (m *MemoryRepository) CreateOrganization(_ context.Context, org *models.Organization) error {
	defer m.lock()()
	m.newID(&org.ID)
	org.CreatedAt, org.UpdatedAt = m.now(), m.now()
	m.state.organizations[org.ID] = *org
	m.state.stamp(org.ID)
	return nil
}

func (m *MemoryRepository) UpdateOrganization(_ context.Context, org *models.Organization) error {
	defer m.lock()()
	stored, ok := m.state.organizations[org.ID]
	if !ok || !stored.Status.IsActive() {
		return apperr.Conflict("organization")
	}
	org.UpdatedAt = m.now()
	stored.Name, stored.UpdatedAt = org.Name, org.UpdatedAt
	m.state.organizations[org.ID] = stored
	return nil
}

func (m *MemoryRepository) GetOrganization(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	defer m.lock()()
	org, ok := m.state.organizations[id]
	if !ok {
		return nil, apperr.NotFound("organization")
	}
	return &org, nil
}

func (m *MemoryRepository) CreateOrganizationUser(_ context.Context, member *models.OrganizationUser) error {
	defer m.lock()()
	for _, existing := range m.state.organizationUsers {
		if existing.OrganizationID == member.OrganizationID && existing.UserID == member.UserID {
			return apperr.Database(errDuplicate, "create organization user")
		}
	}
	m.newID(&member.ID)
	member.CreatedAt, member.UpdatedAt = m.now(), m.now()
	m.state.organizationUsers[member.ID] = *member
	m.state.stamp(member.ID)
	return nil
}

func (m *MemoryRepository) GetOrganizationUser(_ context.Context, organizationID, userID uuid.UUID) (*models.OrganizationUser, error) {
	defer m.lock()()
	for _, member := range m.state.organizationUsers {
		if member.OrganizationID == organizationID && member.UserID == userID {
			return &member, nil
		}
	}
	return nil, apperr.NotFound("organization membership")
}

func (m *MemoryRepository) ListVisibleOrganizations(_ context.Context, userID uuid.UUID) ([]models.Organization, error) {
	defer m.lock()()
	var orgs []models.Organization
	for _, member := range m.state.organizationUsers {
		if member.UserID != userID || !member.Status.IsActive() {
			continue
		}
		if org, ok := m.state.organizations[member.OrganizationID]; ok && org.Status.IsActive() {
			orgs = append(orgs, org)
		}
	}
	sort.SliceStable(orgs, func(i, j int) bool {
		if orgs[i].Name != orgs[j].Name {
			return orgs[i].Name < orgs[j].Name
		}
		return m.state.seq[orgs[i].ID] < m.state.seq[orgs[j].ID]
	})
	return orgs, nil
}

// --- apps ---

func (m *MemoryRepository) CreateApp(_ context.Context, app *models.App) error {
	defer m.lock()()
	m.newID(&app.ID)
	app.CreatedAt, app.UpdatedAt = m.now(), m.now()
	m.state.apps[app.ID] = *app
	m.state.stamp(app.ID)
	return nil
}

func (m *MemoryRepository) UpdateApp(_ context.Context, app *models.App) error {
	defer m.lock()()
	stored, ok := m.state.apps[app.ID]
	if !ok || !stored.Status.IsActive() {
		return apperr.Conflict("app")
	}
	app.UpdatedAt = m.now()
	stored.Name, stored.Description, stored.UpdatedAt = app.Name, app.Description, app.UpdatedAt
	m.state.apps[app.ID] = stored
	return nil
}

func (m *MemoryRepository) GetApp(_ context.Context, id uuid.UUID) (*models.App, error) {
	defer m.lock()()
	app, ok := m.state.apps[id]
	if !ok {
		return nil, apperr.NotFound("app")
	}
	return &app, nil
}

func (m *MemoryRepository) CreateAppUser(_ context.Context, member *models.AppUser) error {
	defer m.lock()()
	for _, existing := range m.state.appUsers {
		if existing.AppID == member.AppID && existing.UserID == member.UserID {
			return apperr.Database(errDuplicate, "create app user")
		}
	}
	m.newID(&member.ID)
	member.CreatedAt, member.UpdatedAt = m.now(), m.now()
	m.state.appUsers[member.ID] = *member
	m.state.stamp(member.ID)
	return nil
}

func (m *MemoryRepository) GetAppUser(_ context.Context, appID, userID uuid.UUID) (*models.AppUser, error) {
	defer m.lock()()
	for _, member := range m.state.appUsers {
		if member.AppID == appID && member.UserID == userID {
			return &member, nil
		}
	}
	return nil, apperr.NotFound("app membership")
}

func (m *MemoryRepository) ListVisibleApps(_ context.Context, userID, organizationID uuid.UUID) ([]models.App, error) {
	defer m.lock()()
	var apps []models.App
	for _, member := range m.state.appUsers {
		if member.UserID != userID || !member.Status.IsActive() {
			continue
		}
		app, ok := m.state.apps[member.AppID]
		if ok && app.OrganizationID == organizationID && app.Status.IsActive() {
			apps = append(apps, app)
		}
	}
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].Name != apps[j].Name {
			return apps[i].Name < apps[j].Name
		}
		return m.state.seq[apps[i].ID] < m.state.seq[apps[j].ID]
	})
	return apps, nil
}

// --- lists ---

func (m *MemoryRepository) CreateList(_ context.Context, list *models.List) error {
	defer m.lock()()
	m.newID(&list.ID)
	list.CreatedAt, list.UpdatedAt = m.now(), m.now()
	m.state.lists[list.ID] = *list
	m.state.stamp(list.ID)
	return nil
}

func (m *MemoryRepository) UpdateList(_ context.Context, list *models.List, fromVersion int) error {
	defer m.lock()()
	stored, ok := m.state.lists[list.ID]
	if !ok || !stored.Status.IsActive() || stored.SchemaVersion != fromVersion {
		return apperr.Conflict("list")
	}
	list.UpdatedAt = m.now()
	stored.Name = list.Name
	stored.SchemaVersion, stored.SchemaHash = list.SchemaVersion, list.SchemaHash
	stored.UpdatedAt = list.UpdatedAt
	m.state.lists[list.ID] = stored
	return nil
}

func (m *MemoryRepository) GetList(_ context.Context, id uuid.UUID) (*models.List, error) {
	defer m.lock()()
	list, ok := m.state.lists[id]
	if !ok {
		return nil, apperr.NotFound("list")
	}
	return &list, nil
}

func (m *MemoryRepository) ListActiveLists(_ context.Context, appID uuid.UUID) ([]models.List, error) {
	defer m.lock()()
	lists := lo.Filter(lo.Values(m.state.lists), func(l models.List, _ int) bool {
		return l.AppID == appID && l.Status.IsActive()
	})
	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].Name != lists[j].Name {
			return lists[i].Name < lists[j].Name
		}
		return m.state.seq[lists[i].ID] < m.state.seq[lists[j].ID]
	})
	return lists, nil
}

// --- list fields ---

func (m *MemoryRepository) CreateListField(_ context.Context, field *models.ListField) error {
	defer m.lock()()
	for _, existing := range m.state.listFields {
		if existing.ListID == field.ListID && existing.FieldID == field.FieldID &&
			existing.Status.IsActive() && field.Status.IsActive() {
			return apperr.Database(errDuplicate, "create list field")
		}
	}
	m.newID(&field.ID)
	field.CreatedAt, field.UpdatedAt = m.now(), m.now()
	m.state.listFields[field.ID] = *field
	m.state.stamp(field.ID)
	return nil
}

func (m *MemoryRepository) UpdateListField(_ context.Context, field *models.ListField) error {
	defer m.lock()()
	if _, ok := m.state.listFields[field.ID]; !ok {
		return apperr.NotFound("field")
	}
	field.UpdatedAt = m.now()
	m.state.listFields[field.ID] = *field
	return nil
}

func (m *MemoryRepository) GetActiveListField(_ context.Context, listID uuid.UUID, fieldID string) (*models.ListField, error) {
	defer m.lock()()
	for _, field := range m.state.listFields {
		if field.ListID == listID && field.FieldID == fieldID && field.Status.IsActive() {
			return &field, nil
		}
	}
	return nil, apperr.NotFound("field")
}

func (m *MemoryRepository) ListActiveListFields(_ context.Context, listID uuid.UUID) ([]models.ListField, error) {
	defer m.lock()()
	fields := lo.Filter(lo.Values(m.state.listFields), func(f models.ListField, _ int) bool {
		return f.ListID == listID && f.Status.IsActive()
	})
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Order != fields[j].Order {
			return fields[i].Order < fields[j].Order
		}
		return m.state.seq[fields[i].ID] < m.state.seq[fields[j].ID]
	})
	return fields, nil
}

// --- records ---

func (m *MemoryRepository) CreateRecord(_ context.Context, record *models.Record) error {
	defer m.lock()()
	m.newID(&record.ID)
	record.CreatedAt, record.UpdatedAt = m.now(), m.now()
	m.state.records[record.ID] = *record
	m.state.stamp(record.ID)
	return nil
}

func (m *MemoryRepository) UpdateRecord(_ context.Context, record *models.Record) error {
	defer m.lock()()
	stored, ok := m.state.records[record.ID]
	if !ok || !stored.Status.IsActive() {
		return apperr.Conflict("record")
	}
	record.UpdatedAt = m.now()
	stored.UpdatedAt = record.UpdatedAt
	m.state.records[record.ID] = stored
	return nil
}

func (m *MemoryRepository) GetRecord(_ context.Context, id uuid.UUID) (*models.Record, error) {
	defer m.lock()()
	record, ok := m.state.records[id]
	if !ok {
		return nil, apperr.NotFound("record")
	}
	return &record, nil
}

func (m *MemoryRepository) ListActiveRecords(_ context.Context, listID uuid.UUID, limit, offset int) ([]models.Record, int64, error) {
	defer m.lock()()
	records := lo.Filter(lo.Values(m.state.records), func(r models.Record, _ int) bool {
		return r.ListID == listID && r.Status.IsActive()
	})
	sort.SliceStable(records, func(i, j int) bool {
		return m.state.seq[records[i].ID] > m.state.seq[records[j].ID]
	})
	total := int64(len(records))
	if offset >= len(records) {
		return []models.Record{}, total, nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, total, nil
}

func (m *MemoryRepository) CountActiveRecords(_ context.Context, listID uuid.UUID, ids []uuid.UUID) (int64, error) {
	defer m.lock()()
	var count int64
	for _, id := range lo.Uniq(ids) {
		if r, ok := m.state.records[id]; ok && r.ListID == listID && r.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

// --- record fields ---

func (m *MemoryRepository) CreateRecordField(_ context.Context, cell *models.RecordField) error {
	defer m.lock()()
	for _, existing := range m.state.recordFields {
		if existing.RecordID == cell.RecordID && existing.ListFieldID == cell.ListFieldID &&
			existing.Status.IsActive() && cell.Status.IsActive() {
			return apperr.Database(errDuplicate, "create record field")
		}
	}
	m.newID(&cell.ID)
	cell.CreatedAt, cell.UpdatedAt = m.now(), m.now()
	m.state.recordFields[cell.ID] = *cell
	m.state.stamp(cell.ID)
	return nil
}

func (m *MemoryRepository) UpdateRecordField(_ context.Context, cell *models.RecordField) error {
	defer m.lock()()
	if _, ok := m.state.recordFields[cell.ID]; !ok {
		return apperr.NotFound("record field")
	}
	cell.UpdatedAt = m.now()
	m.state.recordFields[cell.ID] = *cell
	return nil
}

func (m *MemoryRepository) CountActiveRecordFields(_ context.Context, listFieldID uuid.UUID) (int64, error) {
	defer m.lock()()
	var count int64
	for _, cell := range m.state.recordFields {
		if cell.ListFieldID == listFieldID && cell.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) GetActiveRecordField(_ context.Context, recordID, listFieldID uuid.UUID) (*models.RecordField, error) {
	defer m.lock()()
	for _, cell := range m.state.recordFields {
		if cell.RecordID == recordID && cell.ListFieldID == listFieldID && cell.Status.IsActive() {
			return &cell, nil
		}
	}
	return nil, apperr.NotFound("record field")
}

func (m *MemoryRepository) ListActiveRecordFields(_ context.Context, recordIDs []uuid.UUID) ([]models.RecordField, error) {
	defer m.lock()()
	wanted := lo.SliceToMap(recordIDs, func(id uuid.UUID) (uuid.UUID, struct{}) {
		return id, struct{}{}
	})
	cells := lo.Filter(lo.Values(m.state.recordFields), func(c models.RecordField, _ int) bool {
		_, ok := wanted[c.RecordID]
		return ok && c.Status.IsActive()
	})
	sort.SliceStable(cells, func(i, j int) bool {
		return m.state.seq[cells[i].ID] < m.state.seq[cells[j].ID]
	})
	return cells, nil
}

// CountRows reports how many rows of each kind exist regardless of status.
// Tests use it to assert that a failed write left nothing behind.
func (m *MemoryRepository) CountRows() map[string]int {
	defer m.lock()()
	return map[string]int{
		"organizations":      len(m.state.organizations),
		"organization_users": len(m.state.organizationUsers),
		"apps":               len(m.state.apps),
		"app_users":          len(m.state.appUsers),
		"lists":              len(m.state.lists),
		"list_fields":        len(m.state.listFields),
		"records":            len(m.state.records),
		"record_fields":      len(m.state.recordFields),
	}
}

var errDuplicate = errors.New("duplicate key value violates unique constraint")
