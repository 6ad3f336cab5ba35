package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/validator"
	"github.com/google/uuid"
)

// SchemaField is one column as the list designer submits it. ID is the
// client-visible field id; it is generated when empty.
type SchemaField struct {
	ID         string  `json:"id" validate:"max=64"`
	FieldLabel string  `json:"fieldLabel" validate:"required,max=255"`
	FieldType  string  `json:"fieldType" validate:"required"`
	Required   bool    `json:"required"`
	Visible    *bool   `json:"visible"`
	Primary    *bool   `json:"primary"`
	Order      int     `json:"order"`
	FieldList  *string `json:"fieldList,omitempty"`
}

// IsPrimary is false when the client leaves primary out.
func (f SchemaField) IsPrimary() bool {
	return f.Primary != nil && *f.Primary
}

// IsVisible defaults to true when the client leaves visible out.
func (f SchemaField) IsVisible() bool {
	return f.Visible == nil || *f.Visible
}

type CreateListRequest struct {
	Name   string        `json:"name" validate:"required,max=200"`
	Fields []SchemaField `json:"fields" validate:"required,min=1,dive"`
}

func (r *CreateListRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// UpdateListRequest replaces part of a schema. Fields not named in Fields or
// Removed are left as they are.
type UpdateListRequest struct {
	Name    string        `json:"name" validate:"max=200"`
	Fields  []SchemaField `json:"fields" validate:"dive"`
	Removed []string      `json:"removed"`
}

func (r *UpdateListRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ListFieldResponse struct {
	ID         string     `json:"id"`
	FieldLabel string     `json:"fieldLabel"`
	FieldType  string     `json:"fieldType"`
	Required   bool       `json:"required"`
	Visible    bool       `json:"visible"`
	Primary    bool       `json:"primary"`
	Order      int        `json:"order"`
	FieldList  *uuid.UUID `json:"fieldList,omitempty"`
}

type ListResponse struct {
	ID             uuid.UUID           `json:"id"`
	AppID          uuid.UUID           `json:"app_id"`
	Name           string              `json:"name"`
	Status         string              `json:"status"`
	SchemaVersion  int                 `json:"schema_version"`
	SchemaHash     string              `json:"schema_hash"`
	CatalogVersion int                 `json:"catalog_version"`
	Fields         []ListFieldResponse `json:"fields,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type ListEnvelope struct {
	Success bool         `json:"success"`
	List    ListResponse `json:"list"`
}

type ListsResponse struct {
	Success bool           `json:"success"`
	Lists   []ListResponse `json:"lists"`
}

type FieldTypeResponse struct {
	Type               string `json:"type"`
	Label              string `json:"label"`
	Domain             string `json:"domain"`
	RequiresSelectList bool   `json:"requiresSelectList"`
	Multiple           bool   `json:"multiple"`
}

type FieldTypesResponse struct {
	Success        bool                `json:"success"`
	CatalogVersion int                 `json:"catalog_version"`
	Types          []FieldTypeResponse `json:"types"`
}
