package dto

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/catalog"
	"github.com/ahmetcoskunkizilkaya/workspace-builder/internal/validator"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NullableValue is a submitted cell value. A null or missing value leaves the
// cell untouched; Valid is false in that case. Numbers, booleans and arrays
// of ids are accepted and turned into their stored text form.
type NullableValue struct {
	String string
	Valid  bool
}

func Value(s string) NullableValue {
	return NullableValue{String: s, Valid: true}
}

func (v *NullableValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = NullableValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value(s)
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			parts = append(parts, strings.TrimSpace(fmt.Sprint(item)))
		}
		*v = Value(catalog.JoinMulti(parts))
	case '{':
		return fmt.Errorf("fieldValue must be a string, number, boolean or array")
	default:
		// number or boolean literal, kept as written
		*v = Value(string(data))
	}
	return nil
}

func (v NullableValue) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.String)
}

type FieldValueRequest struct {
	FieldID    string        `json:"fieldId" validate:"required,max=64"`
	FieldValue NullableValue `json:"fieldValue"`
}

type SaveRecordRequest struct {
	RecordID    *string             `json:"recordId"`
	FieldValues []FieldValueRequest `json:"fieldValues" validate:"dive"`
}

func (r *SaveRecordRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// RecordValue is one cell of a record, in schema order. Value is nil when
// the record has nothing stored for the field.
type RecordValue struct {
	FieldID    string  `json:"fieldId"`
	FieldLabel string  `json:"fieldLabel"`
	FieldType  string  `json:"fieldType"`
	Visible    bool    `json:"visible"`
	Primary    bool    `json:"primary"`
	Value      *string `json:"value"`
}

type RecordResponse struct {
	ID        uuid.UUID     `json:"id"`
	ListID    uuid.UUID     `json:"list_id"`
	Status    string        `json:"status"`
	Title     *string       `json:"title"`
	Values    []RecordValue `json:"values,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type SaveRecordResponse struct {
	Success  bool           `json:"success"`
	Created  bool           `json:"created"`
	Record   RecordResponse `json:"record"`
	Warnings []Warning      `json:"warnings,omitempty"`
}

type RecordEnvelope struct {
	Success bool           `json:"success"`
	Record  RecordResponse `json:"record"`
}

type RecordListResponse struct {
	Success bool             `json:"success"`
	Records []RecordResponse `json:"records"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}
