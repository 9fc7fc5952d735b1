package internal

import (
	"encoding/json"
	"time"

	"fieldpress-server/internal/schema/domain"
)

type Project struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID      string `json:"uuid" gorm:"uniqueIndex;not null"`
	Name      string `json:"name" gorm:"not null"`
	Slug      string `json:"slug" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Project) TableName() string {
	return "projects"
}

func (p Project) ToDomain() domain.Project {
	return domain.Project{
		ID:        p.ID,
		UUID:      p.UUID,
		Name:      p.Name,
		Slug:      p.Slug,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func FromProject(value domain.Project) Project {
	return Project{
		ID:        value.ID,
		UUID:      value.UUID,
		Name:      value.Name,
		Slug:      value.Slug,
		CreatedAt: value.CreatedAt,
		UpdatedAt: value.UpdatedAt,
	}
}

type Collection struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID      string `json:"uuid" gorm:"uniqueIndex;not null"`
	ProjectID int64  `json:"project_id" gorm:"index;not null"`
	Name      string `json:"name" gorm:"not null"`
	Slug      string `json:"slug" gorm:"index;not null"`
	Singleton bool   `json:"singleton"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Collection) TableName() string {
	return "collections"
}

func (c Collection) ToDomain() domain.Collection {
	return domain.Collection{
		ID:        c.ID,
		UUID:      c.UUID,
		ProjectID: c.ProjectID,
		Name:      c.Name,
		Slug:      c.Slug,
		Singleton: c.Singleton,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromCollection(value domain.Collection) Collection {
	return Collection{
		ID:        value.ID,
		UUID:      value.UUID,
		ProjectID: value.ProjectID,
		Name:      value.Name,
		Slug:      value.Slug,
		Singleton: value.Singleton,
		CreatedAt: value.CreatedAt,
		UpdatedAt: value.UpdatedAt,
	}
}

// fieldOptions is the persisted shape of domain.FieldOptions.
type fieldOptions struct {
	Repeatable           bool     `json:"repeatable,omitempty"`
	Multiple             bool     `json:"multiple,omitempty"`
	DateMode             string   `json:"date_mode,omitempty"`
	IncludeTime          bool     `json:"include_time,omitempty"`
	RelationCollectionID int64    `json:"relation_collection_id,omitempty"`
	EnumValues           []string `json:"enum_values,omitempty"`
}

type FieldDefinition struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	CollectionID int64  `json:"collection_id" gorm:"index;not null"`
	ParentID     *int64 `json:"parent_id" gorm:"index"`
	Name         string `json:"name" gorm:"not null"`
	FieldType    string `json:"field_type" gorm:"not null"`
	Options      string `json:"options" gorm:"type:json"`
	Required     bool   `json:"required"`
	Unique       bool   `json:"unique"`
	MinLength    int    `json:"min_length"`
	MaxLength    int    `json:"max_length"`
	Position     int    `json:"position"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (FieldDefinition) TableName() string {
	return "field_definitions"
}

func (f FieldDefinition) ToDomain() domain.FieldDefinition {
	var opts fieldOptions
	if f.Options != "" {
		// Stored by the schema management plane; a decode failure leaves
		// default options rather than failing the read path.
		json.Unmarshal([]byte(f.Options), &opts)
	}

	return domain.FieldDefinition{
		ID:           f.ID,
		CollectionID: f.CollectionID,
		ParentID:     f.ParentID,
		Name:         f.Name,
		Type:         domain.FieldType(f.FieldType),
		Options: domain.FieldOptions{
			Repeatable:           opts.Repeatable,
			Multiple:             opts.Multiple,
			DateMode:             domain.DateMode(opts.DateMode),
			IncludeTime:          opts.IncludeTime,
			RelationCollectionID: opts.RelationCollectionID,
			EnumValues:           opts.EnumValues,
		},
		Rules: domain.ValidationRules{
			Required:  f.Required,
			Unique:    f.Unique,
			MinLength: f.MinLength,
			MaxLength: f.MaxLength,
		},
		Position: f.Position,
	}
}

func FromFieldDefinition(value domain.FieldDefinition) FieldDefinition {
	opts := fieldOptions{
		Repeatable:           value.Options.Repeatable,
		Multiple:             value.Options.Multiple,
		DateMode:             string(value.Options.DateMode),
		IncludeTime:          value.Options.IncludeTime,
		RelationCollectionID: value.Options.RelationCollectionID,
		EnumValues:           value.Options.EnumValues,
	}
	encoded, _ := json.Marshal(opts)

	return FieldDefinition{
		ID:           value.ID,
		CollectionID: value.CollectionID,
		ParentID:     value.ParentID,
		Name:         value.Name,
		FieldType:    string(value.Type),
		Options:      string(encoded),
		Required:     value.Rules.Required,
		Unique:       value.Rules.Unique,
		MinLength:    value.Rules.MinLength,
		MaxLength:    value.Rules.MaxLength,
		Position:     value.Position,
	}
}

type Asset struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UUID      string `json:"uuid" gorm:"uniqueIndex;not null"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Asset) TableName() string {
	return "assets"
}

func FromAsset(value domain.Asset) Asset {
	return Asset{
		ID:        value.ID,
		UUID:      value.UUID,
		FileName:  value.FileName,
		MimeType:  value.MimeType,
		SizeBytes: value.SizeBytes,
		CreatedAt: value.CreatedAt,
		UpdatedAt: value.UpdatedAt,
	}
}

func (a Asset) ToDomain() domain.Asset {
	return domain.Asset{
		ID:        a.ID,
		UUID:      a.UUID,
		FileName:  a.FileName,
		MimeType:  a.MimeType,
		SizeBytes: a.SizeBytes,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
