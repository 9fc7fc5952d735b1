package internal

import (
	"encoding/json"
	"time"

	"fieldpress-server/internal/content/codec"
	"fieldpress-server/internal/content/domain"
)

type ContentEntry struct {
	ID                 int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID               string  `json:"uuid" gorm:"uniqueIndex;not null"`
	ProjectID          int64   `json:"project_id" gorm:"index;not null"`
	CollectionID       int64   `json:"collection_id" gorm:"index;not null"`
	Locale             string  `json:"locale" gorm:"not null;default:default"`
	Status             string  `json:"status" gorm:"not null"`
	TranslationGroupID *string `json:"translation_group_id" gorm:"index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time `json:"deleted_at" gorm:"index"`
}

func (ContentEntry) TableName() string {
	return "content_entries"
}

func (e ContentEntry) ToDomain() domain.Entry {
	return domain.Entry{
		ID:                 e.ID,
		UUID:               e.UUID,
		ProjectID:          e.ProjectID,
		CollectionID:       e.CollectionID,
		Locale:             e.Locale,
		Status:             domain.Status(e.Status),
		TranslationGroupID: e.TranslationGroupID,
		Fields:             map[string]any{},
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
		DeletedAt:          e.DeletedAt,
	}
}

func FromEntry(value domain.Entry) ContentEntry {
	return ContentEntry{
		ID:                 value.ID,
		UUID:               value.UUID,
		ProjectID:          value.ProjectID,
		CollectionID:       value.CollectionID,
		Locale:             value.Locale,
		Status:             string(value.Status),
		TranslationGroupID: value.TranslationGroupID,
		CreatedAt:          value.CreatedAt,
		UpdatedAt:          value.UpdatedAt,
		DeletedAt:          value.DeletedAt,
	}
}

// FieldValue is one persisted value: one row per (entry, field), or per
// (entry, field, group instance) inside groups. Exactly one column family
// is populated per row, richtext excepted.
type FieldValue struct {
	ID              int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	EntryID         int64  `json:"entry_id" gorm:"index;not null"`
	FieldID         int64  `json:"field_id" gorm:"index;not null"`
	FieldType       string `json:"field_type" gorm:"not null"`
	GroupInstanceID *int64 `json:"group_instance_id" gorm:"index"`
	SortOrder       int    `json:"sort_order" gorm:"not null;default:0"`

	ValueText        *string    `json:"value_text"`
	ValueNumber      *float64   `json:"value_number"`
	ValueBoolean     *bool      `json:"value_boolean"`
	ValueDate        *time.Time `json:"value_date"`
	ValueDateEnd     *time.Time `json:"value_date_end"`
	ValueDatetime    *time.Time `json:"value_datetime"`
	ValueDatetimeEnd *time.Time `json:"value_datetime_end"`
	ValueJSON        *string    `json:"value_json" gorm:"column:value_json;type:json"`
}

func (FieldValue) TableName() string {
	return "field_values"
}

func (v FieldValue) ToStoredRow() codec.StoredRow {
	return codec.StoredRow{
		Text:        v.ValueText,
		Number:      v.ValueNumber,
		Boolean:     v.ValueBoolean,
		Date:        v.ValueDate,
		DateEnd:     v.ValueDateEnd,
		Datetime:    v.ValueDatetime,
		DatetimeEnd: v.ValueDatetimeEnd,
		JSON:        v.ValueJSON,
	}
}

// FromValue spreads a typed value across the physical columns.
func FromValue(entryID, fieldID int64, fieldType string, groupInstanceID *int64, sortOrder int, value domain.Value) FieldValue {
	row := FieldValue{
		EntryID:         entryID,
		FieldID:         fieldID,
		FieldType:       fieldType,
		GroupInstanceID: groupInstanceID,
		SortOrder:       sortOrder,
	}

	switch value.Kind {
	case domain.ValueKindText:
		row.ValueText = &value.Text
	case domain.ValueKindNumber:
		row.ValueNumber = &value.Number
	case domain.ValueKindBool:
		row.ValueBoolean = &value.Bool
	case domain.ValueKindDateRange:
		start := value.Range.Start
		if value.Range.IncludeTime {
			row.ValueDatetime = &start
			row.ValueDatetimeEnd = value.Range.End
		} else {
			row.ValueDate = &start
			row.ValueDateEnd = value.Range.End
		}
	case domain.ValueKindJSON:
		row.ValueJSON = marshalJSON(value.JSON)
	case domain.ValueKindIDList:
		ids := value.IDs
		if ids == nil {
			ids = []int64{}
		}
		row.ValueJSON = marshalJSON(ids)
	case domain.ValueKindRichText:
		if value.Text != "" {
			row.ValueText = &value.Text
		}
		if value.JSON != nil {
			row.ValueJSON = marshalJSON(value.JSON)
		}
	}

	return row
}

func marshalJSON(value any) *string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	text := string(encoded)
	return &text
}

// GroupInstance scopes a set of field-value rows to one repetition of a
// group field. Sort order is dense and zero-based within entry+field.
type GroupInstance struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	EntryID   int64 `json:"entry_id" gorm:"index;not null"`
	FieldID   int64 `json:"field_id" gorm:"index;not null"`
	SortOrder int   `json:"sort_order" gorm:"not null;default:0"`
}

func (GroupInstance) TableName() string {
	return "group_instances"
}

type MediaLink struct {
	ID           int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	FieldValueID int64 `json:"field_value_id" gorm:"index;not null"`
	AssetID      int64 `json:"asset_id" gorm:"not null"`
	SortOrder    int   `json:"sort_order" gorm:"not null;default:0"`
}

func (MediaLink) TableName() string {
	return "media_links"
}

type RelationLink struct {
	ID            int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	FieldValueID  int64 `json:"field_value_id" gorm:"index;not null"`
	TargetEntryID int64 `json:"target_entry_id" gorm:"not null"`
	SortOrder     int   `json:"sort_order" gorm:"not null;default:0"`
}

func (RelationLink) TableName() string {
	return "relation_links"
}
