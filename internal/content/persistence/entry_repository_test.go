package persistence_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpress-server/internal/content/codec"
	"fieldpress-server/internal/content/domain"
	"fieldpress-server/internal/content/persistence"
	contentinternal "fieldpress-server/internal/content/persistence/internal"
	"fieldpress-server/internal/content/usecases"
	"fieldpress-server/internal/infra/sql"
	"fieldpress-server/internal/infra/utils"
	schemadomain "fieldpress-server/internal/schema/domain"
	schemapersistence "fieldpress-server/internal/schema/persistence"
)

type fixture struct {
	orm      sql.ORM
	registry *schemapersistence.SimpleSchemaRepository
	repo     *persistence.SimpleEntryRepository
	project  schemadomain.Project
	articles schemadomain.Schema
	people   schemadomain.Schema
	asset    schemadomain.Asset
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	orm, err := sql.NewMemoryORM(utils.GenerateHEX(8))
	require.NoError(t, err)

	registry, err := schemapersistence.NewSchemaRepository(orm)
	require.NoError(t, err)

	repo, err := persistence.NewEntryRepository(orm, registry)
	require.NoError(t, err)

	project, err := registry.CreateProject(ctx, schemadomain.Project{Name: "Demo", Slug: "demo"})
	require.NoError(t, err)

	people, err := registry.CreateCollection(ctx, schemadomain.Collection{ProjectID: project.ID, Name: "People", Slug: "people"})
	require.NoError(t, err)
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: people.ID, Name: "name", Type: schemadomain.FieldTypeText, Position: 0,
	})

	articles, err := registry.CreateCollection(ctx, schemadomain.Collection{ProjectID: project.ID, Name: "Articles", Slug: "articles"})
	require.NoError(t, err)

	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "title", Type: schemadomain.FieldTypeText, Position: 0,
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "price", Type: schemadomain.FieldTypeNumber, Position: 1,
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "secret", Type: schemadomain.FieldTypePassword, Position: 2,
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "tags", Type: schemadomain.FieldTypeEnumeration, Position: 3,
		Options: schemadomain.FieldOptions{EnumValues: []string{"go", "sql", "http"}},
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "labels", Type: schemadomain.FieldTypeText, Position: 4,
		Options: schemadomain.FieldOptions{Repeatable: true},
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "cover", Type: schemadomain.FieldTypeMedia, Position: 5,
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "authors", Type: schemadomain.FieldTypeRelation, Position: 6,
		Options: schemadomain.FieldOptions{Multiple: true, RelationCollectionID: people.ID},
	})
	specs := createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, Name: "specs", Type: schemadomain.FieldTypeGroup, Position: 7,
		Options: schemadomain.FieldOptions{Repeatable: true},
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, ParentID: &specs.ID, Name: "label", Type: schemadomain.FieldTypeText, Position: 0,
	})
	createField(t, registry, schemadomain.FieldDefinition{
		CollectionID: articles.ID, ParentID: &specs.ID, Name: "value", Type: schemadomain.FieldTypeNumber, Position: 1,
	})

	asset, err := registry.CreateAsset(ctx, schemadomain.Asset{FileName: "cover.png", MimeType: "image/png", SizeBytes: 1024})
	require.NoError(t, err)

	articlesSchema, err := registry.CollectionSchema(ctx, project.ID, "articles")
	require.NoError(t, err)
	peopleSchema, err := registry.CollectionSchema(ctx, project.ID, "people")
	require.NoError(t, err)

	return &fixture{
		orm:      orm,
		registry: registry,
		repo:     repo,
		project:  project,
		articles: articlesSchema,
		people:   peopleSchema,
		asset:    asset,
	}
}

func createField(t *testing.T, registry *schemapersistence.SimpleSchemaRepository, field schemadomain.FieldDefinition) schemadomain.FieldDefinition {
	t.Helper()
	created, err := registry.CreateFieldDefinition(context.Background(), field)
	require.NoError(t, err)
	return created
}

func (f *fixture) createEntry(t *testing.T, schema schemadomain.Schema, status domain.Status, payload map[string]any) domain.Entry {
	t.Helper()
	entry, err := domain.NewEntryBuilder().
		WithProject(schema.Collection.ProjectID).
		WithCollection(schema.Collection.ID).
		WithStatus(status).
		Build()
	require.NoError(t, err)

	created, err := f.repo.Create(context.Background(), schema, entry, payload)
	require.NoError(t, err)
	return created
}

func withDraft() usecases.ListQuery {
	return usecases.ListQuery{State: usecases.StateWithDraft}
}

func TestCreateAndReadBack_EndToEnd(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	author := fx.createEntry(t, fx.people, domain.StatusDraft, map[string]any{"name": "ada"})

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title":   "Go 101",
		"price":   "19.90",
		"tags":    []any{map[string]any{"value": "go"}, "sql"},
		"labels":  []any{"alpha", "beta", "gamma"},
		"cover":   fx.asset.UUID,
		"authors": []any{author.UUID},
		"specs": []any{
			map[string]any{"label": "weight", "value": 2.5},
			map[string]any{"label": "height", "value": 10},
		},
		"unknown_key": "silently ignored",
	})

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Go 101", got.Fields["title"])
	assert.Equal(t, 19.90, got.Fields["price"])
	assert.Equal(t, []any{"go", "sql"}, got.Fields["tags"])
	assert.Equal(t, []any{"alpha", "beta", "gamma"}, got.Fields["labels"])
	assert.Equal(t, fx.asset.ID, got.Fields["cover"])
	assert.Equal(t, []int64{author.ID}, got.Fields["authors"])
	assert.NotContains(t, got.Fields, "unknown_key")

	specs, ok := got.Fields["specs"].([]any)
	require.True(t, ok)
	require.Len(t, specs, 2)
	first := specs[0].(map[string]any)
	assert.Equal(t, "weight", first["label"])
	assert.Equal(t, 2.5, first["value"])
	second := specs[1].(map[string]any)
	assert.Equal(t, "height", second["label"])
	assert.Equal(t, 10.0, second["value"])
}

func TestCreate_LinkRowsCarrySortOrder(t *testing.T) {
	fx := newFixture(t)

	first := fx.createEntry(t, fx.people, domain.StatusDraft, map[string]any{"name": "ada"})
	second := fx.createEntry(t, fx.people, domain.StatusDraft, map[string]any{"name": "grace"})

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"authors": []any{second.UUID, first.UUID},
	})

	var links []contentinternal.RelationLink
	require.NoError(t, fx.orm.Order("sort_order ASC").Find(&links).Error())
	require.Len(t, links, 2)
	assert.Equal(t, second.ID, links[0].TargetEntryID)
	assert.Equal(t, first.ID, links[1].TargetEntryID)
}

func TestReplace_ClearsOmittedFields(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title": "original",
		"price": 10,
	})

	require.NoError(t, fx.repo.Replace(ctx, fx.articles, created.ID, map[string]any{"title": "replaced"}))

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Fields["title"])
	assert.NotContains(t, got.Fields, "price")
}

func TestPatch_PreservesOtherFieldsAndEmptyPassword(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title":  "original",
		"price":  10,
		"secret": "hunter2",
	})

	stored, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)
	hash := stored.Fields["secret"].(string)
	require.True(t, codec.VerifyPassword(hash, "hunter2"))

	require.NoError(t, fx.repo.Patch(ctx, fx.articles, created.ID, map[string]any{
		"title":  "patched",
		"secret": "",
	}))

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)
	assert.Equal(t, "patched", got.Fields["title"])
	assert.Equal(t, 10.0, got.Fields["price"])
	assert.Equal(t, hash, got.Fields["secret"])
}

func TestPatch_GroupRewriteLeavesNoOrphans(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"specs": []any{
			map[string]any{"label": "a", "value": 1},
			map[string]any{"label": "b", "value": 2},
			"not an object",
		},
	})

	require.NoError(t, fx.repo.Patch(ctx, fx.articles, created.ID, map[string]any{
		"specs": []any{map[string]any{"label": "c"}},
	}))

	var instanceCount int64
	require.NoError(t, fx.orm.Model(&contentinternal.GroupInstance{}).
		Where("entry_id = ?", created.ID).Count(&instanceCount).Error())
	assert.Equal(t, int64(1), instanceCount)

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)

	specs := got.Fields["specs"].([]any)
	require.Len(t, specs, 1)
	assert.Equal(t, "c", specs[0].(map[string]any)["label"])
}

func TestPatch_EmptyLinkListClears(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"cover": fx.asset.UUID,
	})

	var linkCount int64
	require.NoError(t, fx.orm.Model(&contentinternal.MediaLink{}).Count(&linkCount).Error())
	require.Equal(t, int64(1), linkCount)

	require.NoError(t, fx.repo.Patch(ctx, fx.articles, created.ID, map[string]any{
		"cover": []any{},
	}))

	require.NoError(t, fx.orm.Model(&contentinternal.MediaLink{}).Count(&linkCount).Error())
	assert.Equal(t, int64(0), linkCount)

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)
	assert.Nil(t, got.Fields["cover"])
}

func TestList_FilterOnNumberColumn(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "cheap", "price": 5})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "mid", "price": 10})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "dear", "price": 20})

	q := withDraft()
	q.Filter = map[string]any{"price": map[string]any{"gte": "10"}}

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "mid", result.Entries[0].Fields["title"])
	assert.Equal(t, "dear", result.Entries[1].Fields["title"])
}

func TestList_OrGroupUnionsMembers(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "go", "price": 5})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "sql", "price": 50})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "http", "price": 20})

	q := withDraft()
	q.Filter = map[string]any{
		"or": map[string]any{
			"title": "go",
			"price": map[string]any{"gte": "40"},
		},
	}

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	assert.Len(t, result.Entries, 2)
}

func TestList_UnknownFilterFailsOpen(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "kept"})

	q := withDraft()
	q.Filter = map[string]any{"no_such_field": "x"}

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	assert.Len(t, result.Entries, 1)
	assert.Equal(t, []string{"no_such_field"}, result.Dropped)
}

func TestList_StateScopes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "draft one"})
	fx.createEntry(t, fx.articles, domain.StatusPublished, map[string]any{"title": "live one"})

	published, err := fx.repo.List(ctx, fx.articles, usecases.ListQuery{State: usecases.StatePublished})
	require.NoError(t, err)
	require.Len(t, published.Entries, 1)
	assert.Equal(t, "live one", published.Entries[0].Fields["title"])

	drafts, err := fx.repo.List(ctx, fx.articles, usecases.ListQuery{State: usecases.StateOnlyDraft})
	require.NoError(t, err)
	require.Len(t, drafts.Entries, 1)

	all, err := fx.repo.List(ctx, fx.articles, withDraft())
	require.NoError(t, err)
	assert.Len(t, all.Entries, 2)
}

func TestList_SortNullLastBothDirections(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "ten", "price": 10})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "twenty", "price": 20})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "priceless"})

	q := withDraft()
	q.Sort = "price:desc"
	q.Pagination = &usecases.Pagination{Page: 1, Limit: 10}

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "twenty", result.Entries[0].Fields["title"])
	assert.Equal(t, "ten", result.Entries[1].Fields["title"])
	assert.Equal(t, "priceless", result.Entries[2].Fields["title"])
	assert.Equal(t, int64(3), result.Total)

	q.Sort = "price:asc"
	result, err = fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "ten", result.Entries[0].Fields["title"])
	assert.Equal(t, "twenty", result.Entries[1].Fields["title"])
	assert.Equal(t, "priceless", result.Entries[2].Fields["title"])
}

func TestList_UnsizedSortFallsBackInMemory(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "ten", "price": 10})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "five", "price": 5})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "priceless"})

	q := withDraft()
	q.Sort = "price:asc"

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, "five", result.Entries[0].Fields["title"])
	assert.Equal(t, "ten", result.Entries[1].Fields["title"])
	assert.Equal(t, "priceless", result.Entries[2].Fields["title"])
}

func TestList_PaginationWindows(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c", "d", "e"} {
		fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": title})
	}

	q := withDraft()
	q.Pagination = &usecases.Pagination{Page: 2, Limit: 2}

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, int64(5), result.Total)
	assert.Equal(t, "c", result.Entries[0].Fields["title"])
	assert.Equal(t, "d", result.Entries[1].Fields["title"])
}

func TestList_RelationChainFilter(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ada := fx.createEntry(t, fx.people, domain.StatusDraft, map[string]any{"name": "ada"})
	grace := fx.createEntry(t, fx.people, domain.StatusDraft, map[string]any{"name": "grace"})

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title": "by ada", "authors": []any{ada.UUID},
	})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title": "by grace", "authors": []any{grace.UUID},
	})

	q := withDraft()
	q.Filter = map[string]any{
		"authors": map[string]any{
			"name": map[string]any{"eq": "ada"},
		},
	}

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "by ada", result.Entries[0].Fields["title"])
}

func TestList_RelationNullFiltersOnLinks(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	ada := fx.createEntry(t, fx.people, domain.StatusDraft, map[string]any{"name": "ada"})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title": "linked", "authors": []any{ada.UUID},
	})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "bare"})

	q := withDraft()
	q.Filter = map[string]any{"authors": map[string]any{"null": "true"}}
	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "bare", result.Entries[0].Fields["title"])

	q.Filter = map[string]any{"authors": map[string]any{"not_null": "true"}}
	result, err = fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "linked", result.Entries[0].Fields["title"])
}

func TestCount_IgnoresPagination(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"price": 5})
	fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"price": 15})

	q := withDraft()
	q.Filter = map[string]any{"price": map[string]any{"gt": "10"}}
	q.Pagination = &usecases.Pagination{Page: 9, Limit: 1}

	count, err := fx.repo.Count(ctx, fx.articles, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCount_LimitOffsetCapsCardinality(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c", "d", "e"} {
		fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": title})
	}

	q := withDraft()
	q.LimitOffset = &usecases.LimitOffset{Limit: 2}

	count, err := fx.repo.Count(ctx, fx.articles, q)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	q.LimitOffset = &usecases.LimitOffset{Offset: 4}
	count, err = fx.repo.Count(ctx, fx.articles, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	q.LimitOffset = &usecases.LimitOffset{Limit: 3, Offset: 4}
	count, err = fx.repo.Count(ctx, fx.articles, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestList_UnsizedMixedSortKeepsLeadingCoreOrder(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	first := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "old", "price": 1})
	second := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "new", "price": 99})

	q := withDraft()
	q.Sort = "id:desc,price"

	result, err := fx.repo.List(ctx, fx.articles, q)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, second.ID, result.Entries[0].ID)
	assert.Equal(t, first.ID, result.Entries[1].ID)
}

func TestSoftDelete_HidesEntryAndKeepsRows(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "gone soon"})

	require.NoError(t, fx.repo.SoftDelete(ctx, created.ID))

	_, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	assert.ErrorIs(t, err, usecases.ErrEntryNotFound)

	var valueCount int64
	require.NoError(t, fx.orm.Model(&contentinternal.FieldValue{}).
		Where("entry_id = ?", created.ID).Count(&valueCount).Error())
	assert.Equal(t, int64(1), valueCount)
}

func TestRestore_RevivesSoftDeletedEntry(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "back soon"})

	require.NoError(t, fx.repo.SoftDelete(ctx, created.ID))
	require.NoError(t, fx.repo.Restore(ctx, fx.articles, created.UUID))

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)
	assert.Equal(t, "back soon", got.Fields["title"])
}

func TestRestore_LiveEntryIsNotFound(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "alive"})

	err := fx.repo.Restore(ctx, fx.articles, created.UUID)
	assert.ErrorIs(t, err, usecases.ErrEntryNotFound)
}

func TestHardDelete_PurgesEverything(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"title": "purge me",
		"cover": fx.asset.UUID,
		"specs": []any{map[string]any{"label": "x"}},
	})

	require.NoError(t, fx.repo.HardDelete(ctx, created.ID))

	for model, name := range map[any]string{
		&contentinternal.FieldValue{}:    "field values",
		&contentinternal.GroupInstance{}: "group instances",
		&contentinternal.MediaLink{}:     "media links",
	} {
		var count int64
		require.NoError(t, fx.orm.Model(model).Count(&count).Error())
		assert.Zero(t, count, name)
	}

	var entryCount int64
	require.NoError(t, fx.orm.Model(&contentinternal.ContentEntry{}).
		Where("id = ?", created.ID).Count(&entryCount).Error())
	assert.Zero(t, entryCount)
}

func TestSetStatus_Publishes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "to publish"})

	require.NoError(t, fx.repo.SetStatus(ctx, created.ID, domain.StatusPublished))

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StatePublished, Identifier: created.UUID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, got.Status)
}

func TestFindOne_ByNumericID(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{"title": "by id"})

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: strconv.FormatInt(created.ID, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, created.UUID, got.UUID)
}

func TestGroup_AcceptsSingleObjectPayload(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	created := fx.createEntry(t, fx.articles, domain.StatusDraft, map[string]any{
		"specs": map[string]any{"label": "lone", "value": 1},
	})

	got, err := fx.repo.FindOne(ctx, fx.articles, usecases.SingleQuery{
		State: usecases.StateWithDraft, Identifier: created.UUID,
	})
	require.NoError(t, err)

	specs := got.Fields["specs"].([]any)
	require.Len(t, specs, 1)
	assert.Equal(t, "lone", specs[0].(map[string]any)["label"])
}
