package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpress-server/internal/infra/sql"
	"fieldpress-server/internal/infra/utils"
	schemadomain "fieldpress-server/internal/schema/domain"
	"fieldpress-server/internal/schema/persistence"
	"fieldpress-server/internal/schema/usecases"
)

func setupRegistry(t *testing.T) *persistence.SimpleSchemaRepository {
	t.Helper()

	orm, err := sql.NewMemoryORM(utils.GenerateHEX(8))
	require.NoError(t, err)

	registry, err := persistence.NewSchemaRepository(orm)
	require.NoError(t, err)

	return registry
}

func TestProjectBySlug(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	project, err := registry.CreateProject(ctx, schemadomain.Project{Name: "Demo", Slug: "demo"})
	require.NoError(t, err)
	assert.NotEmpty(t, project.UUID)

	got, err := registry.ProjectBySlug(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, project.ID, got.ID)
	assert.Equal(t, "Demo", got.Name)

	_, err = registry.ProjectBySlug(ctx, "nope")
	assert.ErrorIs(t, err, usecases.ErrProjectNotFound)
}

func TestCollectionSchema_AssemblesGroupTree(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	project, err := registry.CreateProject(ctx, schemadomain.Project{Name: "Demo", Slug: "demo"})
	require.NoError(t, err)

	collection, err := registry.CreateCollection(ctx, schemadomain.Collection{
		ProjectID: project.ID, Name: "Articles", Slug: "articles",
	})
	require.NoError(t, err)

	_, err = registry.CreateFieldDefinition(ctx, schemadomain.FieldDefinition{
		CollectionID: collection.ID, Name: "title", Type: schemadomain.FieldTypeText, Position: 0,
	})
	require.NoError(t, err)

	specs, err := registry.CreateFieldDefinition(ctx, schemadomain.FieldDefinition{
		CollectionID: collection.ID, Name: "specs", Type: schemadomain.FieldTypeGroup, Position: 1,
		Options: schemadomain.FieldOptions{Repeatable: true},
	})
	require.NoError(t, err)

	// Children inserted out of position order to exercise the sort.
	_, err = registry.CreateFieldDefinition(ctx, schemadomain.FieldDefinition{
		CollectionID: collection.ID, ParentID: &specs.ID, Name: "value", Type: schemadomain.FieldTypeNumber, Position: 1,
	})
	require.NoError(t, err)
	_, err = registry.CreateFieldDefinition(ctx, schemadomain.FieldDefinition{
		CollectionID: collection.ID, ParentID: &specs.ID, Name: "label", Type: schemadomain.FieldTypeText, Position: 0,
	})
	require.NoError(t, err)

	schema, err := registry.CollectionSchema(ctx, project.ID, "articles")
	require.NoError(t, err)

	require.Len(t, schema.Fields, 2)
	assert.Equal(t, "title", schema.Fields[0].Name)

	group := schema.Fields[1]
	require.True(t, group.IsGroup())
	assert.True(t, group.Options.Repeatable)
	require.Len(t, group.Children, 2)
	assert.Equal(t, "label", group.Children[0].Name)
	assert.Equal(t, "value", group.Children[1].Name)

	_, err = registry.CollectionSchema(ctx, project.ID, "missing")
	assert.ErrorIs(t, err, usecases.ErrCollectionNotFound)
}

func TestCollectionSchemaByID(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	project, err := registry.CreateProject(ctx, schemadomain.Project{Name: "Demo", Slug: "demo"})
	require.NoError(t, err)
	collection, err := registry.CreateCollection(ctx, schemadomain.Collection{
		ProjectID: project.ID, Name: "People", Slug: "people", Singleton: true,
	})
	require.NoError(t, err)

	schema, err := registry.CollectionSchemaByID(ctx, collection.ID)
	require.NoError(t, err)
	assert.Equal(t, "people", schema.Collection.Slug)
	assert.True(t, schema.Collection.Singleton)
}

func TestCreateFieldDefinition_RejectsInvalidType(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	_, err := registry.CreateFieldDefinition(ctx, schemadomain.FieldDefinition{
		CollectionID: 1, Name: "bogus", Type: schemadomain.FieldType("hologram"),
	})
	assert.Error(t, err)
}

func TestAssetByUUID(t *testing.T) {
	registry := setupRegistry(t)
	ctx := context.Background()

	asset, err := registry.CreateAsset(ctx, schemadomain.Asset{FileName: "img.png", MimeType: "image/png", SizeBytes: 42})
	require.NoError(t, err)
	require.NotEmpty(t, asset.UUID)

	got, err := registry.AssetByUUID(ctx, asset.UUID)
	require.NoError(t, err)
	assert.Equal(t, asset.ID, got.ID)
	assert.Equal(t, "img.png", got.FileName)

	_, err = registry.AssetByUUID(ctx, utils.GenerateUUID())
	assert.ErrorIs(t, err, usecases.ErrAssetNotFound)
}
