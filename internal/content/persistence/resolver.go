package persistence

import (
	"context"
	"errors"

	"fieldpress-server/internal/content/persistence/internal"
	"fieldpress-server/internal/content/query"
	"fieldpress-server/internal/infra/sql"
	schemadomain "fieldpress-server/internal/schema/domain"
	schemausecases "fieldpress-server/internal/schema/usecases"
)

// schemaResolver adapts one collection's schema to the filter compiler,
// loading target schemas through the registry when a relation chain walks
// into another collection.
type schemaResolver struct {
	ctx      context.Context
	registry schemausecases.SchemaRegistry
	schema   schemadomain.Schema
}

var _ query.FieldResolver = schemaResolver{}

func (r schemaResolver) Field(name string) (schemadomain.FieldDefinition, bool) {
	return r.schema.Field(name)
}

func (r schemaResolver) Relation(field schemadomain.FieldDefinition) (query.FieldResolver, bool) {
	if field.Type != schemadomain.FieldTypeRelation || field.Options.RelationCollectionID == 0 {
		return nil, false
	}

	target, err := r.registry.CollectionSchemaByID(r.ctx, field.Options.RelationCollectionID)
	if err != nil {
		return nil, false
	}

	return schemaResolver{ctx: r.ctx, registry: r.registry, schema: target}, true
}

// referenceResolver turns public UUIDs from incoming payloads into internal
// numeric ids for the link tables.
type referenceResolver struct {
	orm      sql.ORM
	registry schemausecases.SchemaRegistry
}

func (r referenceResolver) EntryIDByUUID(ctx context.Context, uuid string) (int64, bool, error) {
	var entry internal.ContentEntry
	err := r.orm.WithContext(ctx).
		Where("uuid = ? AND deleted_at IS NULL", uuid).
		First(&entry).
		Error()
	if errors.Is(err, sql.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return entry.ID, true, nil
}

func (r referenceResolver) AssetIDByUUID(ctx context.Context, uuid string) (int64, bool, error) {
	asset, err := r.registry.AssetByUUID(ctx, uuid)
	if errors.Is(err, schemausecases.ErrAssetNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return asset.ID, true, nil
}
