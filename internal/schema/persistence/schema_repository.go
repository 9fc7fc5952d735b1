package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"fieldpress-server/internal/infra/sql"
	"fieldpress-server/internal/infra/utils"
	schemadomain "fieldpress-server/internal/schema/domain"
	"fieldpress-server/internal/schema/persistence/internal"
	"fieldpress-server/internal/schema/usecases"
)

func NewSchemaRepository(orm sql.ORM) (*SimpleSchemaRepository, error) {
	err := orm.AutoMigrate(
		&internal.Project{},
		&internal.Collection{},
		&internal.FieldDefinition{},
		&internal.Asset{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleSchemaRepository{orm: orm}, nil
}

var _ usecases.SchemaRegistry = (*SimpleSchemaRepository)(nil)

type SimpleSchemaRepository struct {
	orm sql.ORM
}

func (r *SimpleSchemaRepository) ProjectBySlug(ctx context.Context, slug string) (schemadomain.Project, error) {
	var entity internal.Project
	err := r.orm.
		WithContext(ctx).
		Where("slug = ?", slug).
		First(&entity).
		Error()

	if errors.Is(err, sql.ErrRecordNotFound) {
		return schemadomain.Project{}, usecases.ErrProjectNotFound
	}

	if err != nil {
		return schemadomain.Project{}, fmt.Errorf("database query: %w", err)
	}

	return entity.ToDomain(), nil
}

func (r *SimpleSchemaRepository) CollectionSchema(ctx context.Context, projectID int64, collectionSlug string) (schemadomain.Schema, error) {
	var entity internal.Collection
	err := r.orm.
		WithContext(ctx).
		Where("project_id = ? AND slug = ?", projectID, collectionSlug).
		First(&entity).
		Error()

	if errors.Is(err, sql.ErrRecordNotFound) {
		return schemadomain.Schema{}, usecases.ErrCollectionNotFound
	}

	if err != nil {
		return schemadomain.Schema{}, fmt.Errorf("database query: %w", err)
	}

	return r.loadSchema(ctx, entity)
}

func (r *SimpleSchemaRepository) CollectionSchemaByID(ctx context.Context, collectionID int64) (schemadomain.Schema, error) {
	var entity internal.Collection
	err := r.orm.
		WithContext(ctx).
		First(&entity, "id = ?", collectionID).
		Error()

	if errors.Is(err, sql.ErrRecordNotFound) {
		return schemadomain.Schema{}, usecases.ErrCollectionNotFound
	}

	if err != nil {
		return schemadomain.Schema{}, fmt.Errorf("database query: %w", err)
	}

	return r.loadSchema(ctx, entity)
}

func (r *SimpleSchemaRepository) AssetByUUID(ctx context.Context, uuid string) (schemadomain.Asset, error) {
	var entity internal.Asset
	err := r.orm.
		WithContext(ctx).
		Where("uuid = ?", uuid).
		First(&entity).
		Error()

	if errors.Is(err, sql.ErrRecordNotFound) {
		return schemadomain.Asset{}, usecases.ErrAssetNotFound
	}

	if err != nil {
		return schemadomain.Asset{}, fmt.Errorf("database query: %w", err)
	}

	return entity.ToDomain(), nil
}

// CreateProject inserts a project, generating its public UUID when the
// caller supplied none.
func (r *SimpleSchemaRepository) CreateProject(ctx context.Context, project schemadomain.Project) (schemadomain.Project, error) {
	entity := internal.FromProject(project)
	if entity.UUID == "" {
		entity.UUID = utils.GenerateUUID()
	}

	if err := r.orm.WithContext(ctx).Create(&entity).Error(); err != nil {
		return schemadomain.Project{}, fmt.Errorf("inserting project: %w", err)
	}

	return entity.ToDomain(), nil
}

func (r *SimpleSchemaRepository) CreateCollection(ctx context.Context, collection schemadomain.Collection) (schemadomain.Collection, error) {
	entity := internal.FromCollection(collection)
	if entity.UUID == "" {
		entity.UUID = utils.GenerateUUID()
	}

	if err := r.orm.WithContext(ctx).Create(&entity).Error(); err != nil {
		return schemadomain.Collection{}, fmt.Errorf("inserting collection: %w", err)
	}

	return entity.ToDomain(), nil
}

func (r *SimpleSchemaRepository) CreateFieldDefinition(ctx context.Context, field schemadomain.FieldDefinition) (schemadomain.FieldDefinition, error) {
	if err := field.Validate(); err != nil {
		return schemadomain.FieldDefinition{}, err
	}

	entity := internal.FromFieldDefinition(field)
	if err := r.orm.WithContext(ctx).Create(&entity).Error(); err != nil {
		return schemadomain.FieldDefinition{}, fmt.Errorf("inserting field definition: %w", err)
	}

	return entity.ToDomain(), nil
}

func (r *SimpleSchemaRepository) CreateAsset(ctx context.Context, asset schemadomain.Asset) (schemadomain.Asset, error) {
	entity := internal.FromAsset(asset)
	if entity.UUID == "" {
		entity.UUID = utils.GenerateUUID()
	}

	if err := r.orm.WithContext(ctx).Create(&entity).Error(); err != nil {
		return schemadomain.Asset{}, fmt.Errorf("inserting asset: %w", err)
	}

	return entity.ToDomain(), nil
}

// loadSchema fetches every field of the collection and assembles the
// parent/child tree for group fields.
func (r *SimpleSchemaRepository) loadSchema(ctx context.Context, collection internal.Collection) (schemadomain.Schema, error) {
	var entities []internal.FieldDefinition
	err := r.orm.
		WithContext(ctx).
		Where("collection_id = ?", collection.ID).
		Order("position ASC, id ASC").
		Find(&entities).
		Error()
	if err != nil {
		return schemadomain.Schema{}, fmt.Errorf("database query: %w", err)
	}

	childrenByParent := make(map[int64][]schemadomain.FieldDefinition)
	var topLevel []schemadomain.FieldDefinition
	for _, entity := range entities {
		field := entity.ToDomain()
		if field.ParentID != nil {
			childrenByParent[*field.ParentID] = append(childrenByParent[*field.ParentID], field)
			continue
		}
		topLevel = append(topLevel, field)
	}

	for i := range topLevel {
		if !topLevel[i].IsGroup() {
			continue
		}
		children := childrenByParent[topLevel[i].ID]
		sort.SliceStable(children, func(a, b int) bool {
			return children[a].Position < children[b].Position
		})
		topLevel[i].Children = children
	}

	return schemadomain.Schema{
		Collection: collection.ToDomain(),
		Fields:     topLevel,
	}, nil
}
