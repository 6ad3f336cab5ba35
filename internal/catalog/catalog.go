// Package catalog defines the closed set of field types a list schema may use
// and the rules for the values stored against them.
package catalog

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Version is bumped whenever a type is added or its value rules change.
const Version = 1

// MultiValueSeparator joins the record ids of a choose-multiple-from-list value.
const MultiValueSeparator = ","

var (
	ErrUnknownType  = errors.New("unknown field type")
	ErrInvalidValue = errors.New("invalid field value")
)

type FieldType string

const (
	Text                   FieldType = "text"
	Number                 FieldType = "number"
	ChooseFromList         FieldType = "choose-from-list"
	ChooseMultipleFromList FieldType = "choose-multiple-from-list"
)

// ValueDomain says whether a value is free input or must come from an option set.
type ValueDomain string

const (
	DomainFree    ValueDomain = "free"
	DomainOptions ValueDomain = "options"
)

type Definition struct {
	Type               FieldType   `json:"type"`
	Label              string      `json:"label"`
	Domain             ValueDomain `json:"domain"`
	RequiresSelectList bool        `json:"requires_select_list"`
	Multiple           bool        `json:"multiple"`
}

var definitions = map[FieldType]Definition{
	Text: {
		Type: Text, Label: "Text", Domain: DomainFree,
	},
	Number: {
		Type: Number, Label: "Number", Domain: DomainFree,
	},
	ChooseFromList: {
		Type: ChooseFromList, Label: "Choose from list", Domain: DomainOptions,
		RequiresSelectList: true,
	},
	ChooseMultipleFromList: {
		Type: ChooseMultipleFromList, Label: "Choose multiple from list", Domain: DomainOptions,
		RequiresSelectList: true, Multiple: true,
	},
}

// Parse resolves a type tag. Tags are matched exactly.
func Parse(tag string) (FieldType, error) {
	t := FieldType(tag)
	if _, ok := definitions[t]; !ok {
		return "", errors.Errorf("%w: %q", ErrUnknownType, tag)
	}
	return t, nil
}

func Lookup(t FieldType) (Definition, bool) {
	def, ok := definitions[t]
	return def, ok
}

// Types returns every definition sorted by tag.
func Types() []Definition {
	defs := make([]Definition, 0, len(definitions))
	for _, def := range definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Type < defs[j].Type })
	return defs
}

func (t FieldType) Valid() bool {
	_, ok := definitions[t]
	return ok
}

func (t FieldType) RequiresSelectList() bool {
	return definitions[t].RequiresSelectList
}

func (t FieldType) Multiple() bool {
	return definitions[t].Multiple
}

func (t FieldType) Domain() ValueDomain {
	return definitions[t].Domain
}

// NormalizeValue checks raw against the rules of t and returns the canonical
// text to store. Option values are record ids; whether those records exist is
// the caller's concern.
func NormalizeValue(t FieldType, raw string) (string, error) {
	switch t {
	case Text:
		return raw, nil
	case Number:
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return "", errors.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
		}
		return d.String(), nil
	case ChooseFromList:
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return "", errors.Errorf("%w: %q is not a record id", ErrInvalidValue, raw)
		}
		return id.String(), nil
	case ChooseMultipleFromList:
		parts := SplitMulti(raw)
		if len(parts) == 0 {
			return "", errors.Errorf("%w: no record ids given", ErrInvalidValue)
		}
		ids := make([]string, 0, len(parts))
		seen := make(map[string]struct{}, len(parts))
		for _, p := range parts {
			id, err := uuid.Parse(p)
			if err != nil {
				return "", errors.Errorf("%w: %q is not a record id", ErrInvalidValue, p)
			}
			s := id.String()
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			ids = append(ids, s)
		}
		return JoinMulti(ids), nil
	}
	return "", errors.Errorf("%w: %q", ErrUnknownType, string(t))
}

// SplitMulti decodes a stored multi-select value, dropping empty segments.
func SplitMulti(value string) []string {
	var out []string
	for _, p := range strings.Split(value, MultiValueSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func JoinMulti(values []string) string {
	return strings.Join(values, MultiValueSeparator)
}

// OptionIDs returns the record ids referenced by a normalized option value.
func OptionIDs(t FieldType, value string) []uuid.UUID {
	if t.Domain() != DomainOptions {
		return nil
	}
	var ids []uuid.UUID
	for _, p := range SplitMulti(value) {
		if id, err := uuid.Parse(p); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
