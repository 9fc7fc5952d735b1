package usecases

import (
	"context"
	"errors"

	"fieldpress-server/internal/schema/domain"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrCollectionNotFound = errors.New("collection not found")
	ErrAssetNotFound      = errors.New("asset not found")
)

// SchemaRegistry is the read-only view of the schema management plane that
// the content engine consumes. Schema CRUD happens elsewhere.
type SchemaRegistry interface {
	ProjectBySlug(ctx context.Context, slug string) (domain.Project, error)
	CollectionSchema(ctx context.Context, projectID int64, collectionSlug string) (domain.Schema, error)
	CollectionSchemaByID(ctx context.Context, collectionID int64) (domain.Schema, error)
	AssetByUUID(ctx context.Context, uuid string) (domain.Asset, error)
}
