package domain

import "fmt"

// FieldType is the closed set of declared field types. Every dispatch site
// (codec, group manager, filter compiler, sort planner) switches exhaustively
// over these values.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeLongText    FieldType = "longtext"
	FieldTypeRichText    FieldType = "richtext"
	FieldTypeSlug        FieldType = "slug"
	FieldTypeEmail       FieldType = "email"
	FieldTypePassword    FieldType = "password"
	FieldTypeNumber      FieldType = "number"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeColor       FieldType = "color"
	FieldTypeDate        FieldType = "date"
	FieldTypeTime        FieldType = "time"
	FieldTypeEnumeration FieldType = "enumeration"
	FieldTypeJSON        FieldType = "json"
	FieldTypeMedia       FieldType = "media"
	FieldTypeRelation    FieldType = "relation"
	FieldTypeGroup       FieldType = "group"
)

var allFieldTypes = map[FieldType]struct{}{
	FieldTypeText:        {},
	FieldTypeLongText:    {},
	FieldTypeRichText:    {},
	FieldTypeSlug:        {},
	FieldTypeEmail:       {},
	FieldTypePassword:    {},
	FieldTypeNumber:      {},
	FieldTypeBoolean:     {},
	FieldTypeColor:       {},
	FieldTypeDate:        {},
	FieldTypeTime:        {},
	FieldTypeEnumeration: {},
	FieldTypeJSON:        {},
	FieldTypeMedia:       {},
	FieldTypeRelation:    {},
	FieldTypeGroup:       {},
}

func (t FieldType) Valid() bool {
	_, ok := allFieldTypes[t]
	return ok
}

// Relational reports whether values of this type own link rows.
func (t FieldType) Relational() bool {
	return t == FieldTypeMedia || t == FieldTypeRelation
}

type DateMode string

const (
	DateModeSingle DateMode = "single"
	DateModeRange  DateMode = "range"
)

type FieldOptions struct {
	Repeatable  bool
	Multiple    bool
	DateMode    DateMode
	IncludeTime bool
	// RelationCollectionID is the target collection for relation fields.
	RelationCollectionID int64
	EnumValues           []string
}

type ValidationRules struct {
	Required  bool
	Unique    bool
	MinLength int
	MaxLength int
}

type FieldDefinition struct {
	ID           int64
	CollectionID int64
	// ParentID is set for fields nested inside a group field.
	ParentID *int64
	Name     string
	Type     FieldType
	Options  FieldOptions
	Rules    ValidationRules
	Position int
	// Children is populated for group fields only.
	Children []FieldDefinition
}

func (f FieldDefinition) IsGroup() bool {
	return f.Type == FieldTypeGroup
}

// Validate enforces the structural invariant: only group fields own children,
// and children cannot themselves be groups.
func (f FieldDefinition) Validate() error {
	if !f.Type.Valid() {
		return fmt.Errorf("field %q: unknown type %q", f.Name, f.Type)
	}

	if !f.IsGroup() && len(f.Children) > 0 {
		return fmt.Errorf("field %q: only group fields may own children", f.Name)
	}

	for _, child := range f.Children {
		if child.IsGroup() {
			return fmt.Errorf("field %q: nested group %q is not allowed", f.Name, child.Name)
		}
		if err := child.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Child looks up a direct child field by name.
func (f FieldDefinition) Child(name string) (FieldDefinition, bool) {
	for _, child := range f.Children {
		if child.Name == name {
			return child, true
		}
	}
	return FieldDefinition{}, false
}
