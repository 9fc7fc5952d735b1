package domain

import (
	"time"

	"fieldpress-server/internal/infra/utils"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

type Entry struct {
	ID           int64
	UUID         string
	ProjectID    int64
	CollectionID int64
	Locale       string
	Status       Status
	// TranslationGroupID links sibling-locale entries of the same content.
	TranslationGroupID *string
	// Fields is the decoded read model keyed by field name.
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (e *Entry) IsDeleted() bool {
	return e.DeletedAt != nil
}

func (e *Entry) SoftDelete() {
	now := time.Now()
	e.DeletedAt = &now
	e.UpdatedAt = now
}

func (e *Entry) Publish() {
	e.Status = StatusPublished
	e.UpdatedAt = time.Now()
}

func (e *Entry) Unpublish() {
	e.Status = StatusDraft
	e.UpdatedAt = time.Now()
}

func NewEntryBuilder() *entryBuilder {
	return &entryBuilder{}
}

type entryBuilder struct {
	actions []entryHandler
}

type entryHandler func(e *Entry) error

func (b *entryBuilder) WithProject(id int64) *entryBuilder {
	b.actions = append(b.actions, func(e *Entry) error {
		e.ProjectID = id
		return nil
	})
	return b
}

func (b *entryBuilder) WithCollection(id int64) *entryBuilder {
	b.actions = append(b.actions, func(e *Entry) error {
		e.CollectionID = id
		return nil
	})
	return b
}

func (b *entryBuilder) WithLocale(locale string) *entryBuilder {
	b.actions = append(b.actions, func(e *Entry) error {
		e.Locale = locale
		return nil
	})
	return b
}

func (b *entryBuilder) WithStatus(status Status) *entryBuilder {
	b.actions = append(b.actions, func(e *Entry) error {
		e.Status = status
		return nil
	})
	return b
}

func (b *entryBuilder) WithTranslationGroup(id string) *entryBuilder {
	b.actions = append(b.actions, func(e *Entry) error {
		e.TranslationGroupID = &id
		return nil
	})
	return b
}

func (b *entryBuilder) Build() (Entry, error) {
	now := time.Now()
	result := Entry{
		UUID:      utils.GenerateUUID(),
		Status:    StatusDraft,
		Locale:    "default",
		Fields:    map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, action := range b.actions {
		if err := action(&result); err != nil {
			return Entry{}, err
		}
	}

	return result, nil
}
