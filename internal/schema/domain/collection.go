package domain

import "time"

type Project struct {
	ID        int64
	UUID      string
	Name      string
	Slug      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Collection struct {
	ID        int64
	UUID      string
	ProjectID int64
	Name      string
	Slug      string
	// Singleton collections hold at most one entry; listing bypasses
	// filters and returns that entry alone.
	Singleton bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Schema bundles a collection with its top-level field definitions, the
// read-only view the content engine works against.
type Schema struct {
	Collection Collection
	Fields     []FieldDefinition
}

// Field looks up a top-level field definition by name.
func (s Schema) Field(name string) (FieldDefinition, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldDefinition{}, false
}
