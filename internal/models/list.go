package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/catalog"
	"github.com/google/uuid"
)

// List is a user-defined table inside an app.
type List struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AppID         uuid.UUID `gorm:"type:uuid;not null;index" json:"app_id"`
	Name          string    `gorm:"not null;size:200" json:"name"`
	Status        Status    `gorm:"size:25;not null;default:'active';index" json:"status"`
	SchemaVersion int       `gorm:"not null;default:0" json:"schema_version"`
	SchemaHash    string    `gorm:"size:64" json:"schema_hash"`
	CreatedUserID uuid.UUID `gorm:"type:uuid;index" json:"created_user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListField is one column of a list's schema. FieldID is the stable key that
// clients and record values refer to; ID is storage identity only.
type ListField struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListID        uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:idx_list_fields_active_key,where:status = 'active'" json:"list_id"`
	FieldID       string            `gorm:"size:64;not null;index;uniqueIndex:idx_list_fields_active_key,where:status = 'active'" json:"field_id"`
	FieldLabel    string            `gorm:"type:text;not null" json:"field_label"`
	FieldType     catalog.FieldType `gorm:"size:50;not null" json:"field_type"`
	Required      bool              `gorm:"not null;default:false" json:"required"`
	Visible       bool              `gorm:"not null;default:true" json:"visible"`
	Primary       bool              `gorm:"not null;default:false" json:"primary"`
	Order         int               `gorm:"column:sort_order;not null;default:0" json:"order"`
	SelectListID  *uuid.UUID        `gorm:"type:uuid;index" json:"select_list_id,omitempty"`
	Status        Status            `gorm:"size:25;not null;default:'active';index" json:"status"`
	CreatedUserID uuid.UUID         `gorm:"type:uuid" json:"created_user_id"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Record is a row of a list. Its values live in RecordField rows.
type Record struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListID        uuid.UUID `gorm:"type:uuid;not null;index" json:"list_id"`
	Status        Status    `gorm:"size:25;not null;default:'active';index" json:"status"`
	CreatedUserID uuid.UUID `gorm:"type:uuid" json:"created_user_id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RecordField holds one cell. At most one active row exists per
// (RecordID, ListFieldID).
type RecordField struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecordID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_record_fields_active_cell,where:status = 'active'" json:"record_id"`
	ListFieldID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_record_fields_active_cell,where:status = 'active'" json:"list_field_id"`
	Value         string    `gorm:"type:text;not null" json:"value"`
	Status        Status    `gorm:"size:25;not null;default:'active';index" json:"status"`
	CreatedUserID uuid.UUID `gorm:"type:uuid" json:"created_user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
