package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fieldpress-server/internal/content/codec"
	"fieldpress-server/internal/content/domain"
	"fieldpress-server/internal/content/persistence/internal"
	"fieldpress-server/internal/content/query"
	"fieldpress-server/internal/content/usecases"
	"fieldpress-server/internal/infra/sql"
	schemadomain "fieldpress-server/internal/schema/domain"
	schemausecases "fieldpress-server/internal/schema/usecases"
)

func NewEntryRepository(orm sql.ORM, registry schemausecases.SchemaRegistry) (*SimpleEntryRepository, error) {
	err := orm.AutoMigrate(
		&internal.ContentEntry{},
		&internal.FieldValue{},
		&internal.GroupInstance{},
		&internal.MediaLink{},
		&internal.RelationLink{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto migrating: %w", err)
	}

	return &SimpleEntryRepository{orm: orm, registry: registry}, nil
}

var _ usecases.EntryRepository = (*SimpleEntryRepository)(nil)

type SimpleEntryRepository struct {
	orm      sql.ORM
	registry schemausecases.SchemaRegistry
}

func (r *SimpleEntryRepository) resolverFor(ctx context.Context, schema schemadomain.Schema) schemaResolver {
	return schemaResolver{ctx: ctx, registry: r.registry, schema: schema}
}

func (r *SimpleEntryRepository) scoped(ctx context.Context, schema schemadomain.Schema, state usecases.StateScope, locale string) sql.ORM {
	tx := r.orm.WithContext(ctx).
		Model(&internal.ContentEntry{}).
		Where("content_entries.project_id = ? AND content_entries.collection_id = ?",
			schema.Collection.ProjectID, schema.Collection.ID).
		Where("content_entries.deleted_at IS NULL")

	switch state {
	case usecases.StateWithDraft:
	case usecases.StateOnlyDraft:
		tx = tx.Where("content_entries.status = ?", string(domain.StatusDraft))
	default:
		tx = tx.Where("content_entries.status = ?", string(domain.StatusPublished))
	}

	if locale != "" {
		tx = tx.Where("content_entries.locale = ?", locale)
	}

	return tx
}

func (r *SimpleEntryRepository) List(ctx context.Context, schema schemadomain.Schema, q usecases.ListQuery) (usecases.ListResult, error) {
	resolver := r.resolverFor(ctx, schema)
	compiled := query.CompileFilter(q.Filter, resolver)
	plan := query.PlanSort(q.Sort, resolver)

	var result usecases.ListResult
	result.Dropped = append(result.Dropped, compiled.Unknown...)
	result.Dropped = append(result.Dropped, plan.Unknown...)

	filtered := func() sql.ORM {
		tx := r.scoped(ctx, schema, q.State, q.Locale)
		for _, cond := range compiled.Conditions {
			tx = tx.Where(cond.Expr, cond.Args...)
		}
		return tx
	}

	sized := q.Pagination != nil || q.LimitOffset != nil

	if sized {
		var total int64
		if err := filtered().Count(&total).Error(); err != nil {
			return usecases.ListResult{}, fmt.Errorf("counting entries: %w", err)
		}
		result.Total = total
	}

	tx := filtered()
	inMemorySort := false
	if len(plan.Joins) == 0 || sized {
		for _, join := range plan.Joins {
			tx = tx.Joins(join.Expr, join.Args...)
		}
		for _, order := range plan.Orders {
			tx = tx.Order(order)
		}
	} else if plan.FirstCoreOrder != "" {
		// Unsized listings fall back to the first requested token only;
		// a leading core column still orders in SQL.
		tx = tx.Order(plan.FirstCoreOrder)
	} else {
		// Unsized listings with a value-column sort materialize and
		// order in memory on the first requested field.
		inMemorySort = plan.FallbackField != ""
	}
	tx = tx.Order("content_entries.id ASC")

	if q.Pagination != nil {
		page := q.Pagination.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Offset((page - 1) * q.Pagination.Limit).Limit(q.Pagination.Limit)
	} else if q.LimitOffset != nil {
		if q.LimitOffset.Limit > 0 {
			tx = tx.Limit(q.LimitOffset.Limit)
		}
		if q.LimitOffset.Offset > 0 {
			tx = tx.Offset(q.LimitOffset.Offset)
		}
	}

	var rows []internal.ContentEntry
	if err := tx.Find(&rows).Error(); err != nil {
		return usecases.ListResult{}, fmt.Errorf("finding entries: %w", err)
	}

	entries, err := r.hydrate(ctx, schema, rows)
	if err != nil {
		return usecases.ListResult{}, err
	}

	if inMemorySort {
		sortEntriesBy(entries, plan.FallbackField, plan.FallbackDesc)
	}
	if !sized {
		result.Total = int64(len(entries))
	}

	result.Entries = entries
	return result, nil
}

func (r *SimpleEntryRepository) Count(ctx context.Context, schema schemadomain.Schema, q usecases.ListQuery) (int64, error) {
	resolver := r.resolverFor(ctx, schema)
	compiled := query.CompileFilter(q.Filter, resolver)

	tx := r.scoped(ctx, schema, q.State, q.Locale)
	for _, cond := range compiled.Conditions {
		tx = tx.Where(cond.Expr, cond.Args...)
	}

	var total int64
	if err := tx.Count(&total).Error(); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}

	// An explicit limit/offset window caps the reported cardinality.
	if q.LimitOffset != nil {
		if q.LimitOffset.Offset > 0 {
			total -= int64(q.LimitOffset.Offset)
			if total < 0 {
				total = 0
			}
		}
		if q.LimitOffset.Limit > 0 && total > int64(q.LimitOffset.Limit) {
			total = int64(q.LimitOffset.Limit)
		}
	}

	return total, nil
}

func (r *SimpleEntryRepository) FindOne(ctx context.Context, schema schemadomain.Schema, q usecases.SingleQuery) (domain.Entry, error) {
	tx := r.scoped(ctx, schema, q.State, q.Locale)

	if q.Identifier != "" {
		if id, err := strconv.ParseInt(q.Identifier, 10, 64); err == nil {
			tx = tx.Where("content_entries.id = ?", id)
		} else {
			tx = tx.Where("content_entries.uuid = ?", q.Identifier)
		}
	}

	var row internal.ContentEntry
	err := tx.Order("content_entries.id ASC").First(&row).Error()
	if errors.Is(err, sql.ErrRecordNotFound) {
		return domain.Entry{}, usecases.ErrEntryNotFound
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("finding entry: %w", err)
	}

	entries, err := r.hydrate(ctx, schema, []internal.ContentEntry{row})
	if err != nil {
		return domain.Entry{}, err
	}

	return entries[0], nil
}

func (r *SimpleEntryRepository) Create(ctx context.Context, schema schemadomain.Schema, entry domain.Entry, payload map[string]any) (domain.Entry, error) {
	model := internal.FromEntry(entry)

	err := r.orm.Transaction(func(tx sql.ORM) error {
		if err := tx.WithContext(ctx).Create(&model).Error(); err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}

		store := &valueStore{resolver: referenceResolver{orm: tx, registry: r.registry}}
		for _, field := range schema.Fields {
			raw, present := payload[field.Name]
			if !present {
				continue
			}
			if err := store.writeField(ctx, tx, model.ID, field, raw); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.Entry{}, err
	}

	return r.findByID(ctx, schema, model.ID)
}

func (r *SimpleEntryRepository) Replace(ctx context.Context, schema schemadomain.Schema, entryID int64, payload map[string]any) error {
	return r.orm.Transaction(func(tx sql.ORM) error {
		store := &valueStore{resolver: referenceResolver{orm: tx, registry: r.registry}}

		if err := store.deleteAllRows(ctx, tx, entryID); err != nil {
			return err
		}

		for _, field := range schema.Fields {
			raw, present := payload[field.Name]
			if !present {
				continue
			}
			if err := store.writeField(ctx, tx, entryID, field, raw); err != nil {
				return err
			}
		}

		return r.touch(ctx, tx, entryID)
	})
}

func (r *SimpleEntryRepository) Patch(ctx context.Context, schema schemadomain.Schema, entryID int64, payload map[string]any) error {
	return r.orm.Transaction(func(tx sql.ORM) error {
		store := &valueStore{resolver: referenceResolver{orm: tx, registry: r.registry}}

		for _, field := range schema.Fields {
			raw, present := payload[field.Name]
			if !present {
				continue
			}
			// An empty password in a partial update keeps the stored
			// hash instead of erasing it.
			if field.Type == schemadomain.FieldTypePassword && isEmptyScalar(raw) {
				continue
			}

			if field.IsGroup() {
				if err := store.deleteGroupChildRows(ctx, tx, entryID, field); err != nil {
					return err
				}
			} else {
				if err := store.deleteFieldRows(ctx, tx, entryID, field.ID); err != nil {
					return err
				}
			}

			if err := store.writeField(ctx, tx, entryID, field, raw); err != nil {
				return err
			}
		}

		return r.touch(ctx, tx, entryID)
	})
}

func (r *SimpleEntryRepository) SetStatus(ctx context.Context, entryID int64, status domain.Status) error {
	err := r.orm.WithContext(ctx).
		Exec("UPDATE content_entries SET status = ?, updated_at = ? WHERE id = ?",
			string(status), time.Now().UTC(), entryID).
		Error()
	if err != nil {
		return fmt.Errorf("updating entry status: %w", err)
	}
	return nil
}

// Restore clears the deletion mark of a soft-deleted entry. The identifier
// resolves among deleted rows only; restoring a live entry is not found.
func (r *SimpleEntryRepository) Restore(ctx context.Context, schema schemadomain.Schema, identifier string) error {
	tx := r.orm.WithContext(ctx).
		Model(&internal.ContentEntry{}).
		Where("content_entries.project_id = ? AND content_entries.collection_id = ?",
			schema.Collection.ProjectID, schema.Collection.ID).
		Where("content_entries.deleted_at IS NOT NULL")

	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		tx = tx.Where("content_entries.id = ?", id)
	} else {
		tx = tx.Where("content_entries.uuid = ?", identifier)
	}

	var row internal.ContentEntry
	err := tx.First(&row).Error()
	if errors.Is(err, sql.ErrRecordNotFound) {
		return usecases.ErrEntryNotFound
	}
	if err != nil {
		return fmt.Errorf("finding deleted entry: %w", err)
	}

	err = r.orm.WithContext(ctx).
		Exec("UPDATE content_entries SET deleted_at = NULL, updated_at = ? WHERE id = ?", time.Now().UTC(), row.ID).
		Error()
	if err != nil {
		return fmt.Errorf("restoring entry: %w", err)
	}
	return nil
}

func (r *SimpleEntryRepository) SoftDelete(ctx context.Context, entryID int64) error {
	now := time.Now().UTC()
	err := r.orm.WithContext(ctx).
		Exec("UPDATE content_entries SET deleted_at = ?, updated_at = ? WHERE id = ?", now, now, entryID).
		Error()
	if err != nil {
		return fmt.Errorf("soft deleting entry: %w", err)
	}
	return nil
}

func (r *SimpleEntryRepository) HardDelete(ctx context.Context, entryID int64) error {
	return r.orm.Transaction(func(tx sql.ORM) error {
		store := &valueStore{}
		if err := store.deleteAllRows(ctx, tx, entryID); err != nil {
			return err
		}
		if err := tx.WithContext(ctx).Where("id = ?", entryID).Delete(&internal.ContentEntry{}).Error(); err != nil {
			return fmt.Errorf("deleting entry: %w", err)
		}
		return nil
	})
}

func (r *SimpleEntryRepository) touch(ctx context.Context, tx sql.ORM, entryID int64) error {
	err := tx.WithContext(ctx).
		Exec("UPDATE content_entries SET updated_at = ? WHERE id = ?", time.Now().UTC(), entryID).
		Error()
	if err != nil {
		return fmt.Errorf("touching entry: %w", err)
	}
	return nil
}

func (r *SimpleEntryRepository) findByID(ctx context.Context, schema schemadomain.Schema, entryID int64) (domain.Entry, error) {
	var row internal.ContentEntry
	err := r.orm.WithContext(ctx).Where("id = ?", entryID).First(&row).Error()
	if errors.Is(err, sql.ErrRecordNotFound) {
		return domain.Entry{}, usecases.ErrEntryNotFound
	}
	if err != nil {
		return domain.Entry{}, fmt.Errorf("finding entry: %w", err)
	}

	entries, err := r.hydrate(ctx, schema, []internal.ContentEntry{row})
	if err != nil {
		return domain.Entry{}, err
	}
	return entries[0], nil
}

// hydrate loads the stored rows of a batch of entries and assembles the
// decoded field maps.
func (r *SimpleEntryRepository) hydrate(ctx context.Context, schema schemadomain.Schema, rows []internal.ContentEntry) ([]domain.Entry, error) {
	if len(rows) == 0 {
		return []domain.Entry{}, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var values []internal.FieldValue
	err := r.orm.WithContext(ctx).
		Where("entry_id IN ?", ids).
		Order("entry_id ASC, field_id ASC, sort_order ASC, id ASC").
		Find(&values).
		Error()
	if err != nil {
		return nil, fmt.Errorf("loading field values: %w", err)
	}

	var instances []internal.GroupInstance
	err = r.orm.WithContext(ctx).
		Where("entry_id IN ?", ids).
		Order("entry_id ASC, field_id ASC, sort_order ASC").
		Find(&instances).
		Error()
	if err != nil {
		return nil, fmt.Errorf("loading group instances: %w", err)
	}

	valuesByEntry := make(map[int64][]internal.FieldValue)
	for _, value := range values {
		valuesByEntry[value.EntryID] = append(valuesByEntry[value.EntryID], value)
	}
	instancesByEntry := make(map[int64][]internal.GroupInstance)
	for _, instance := range instances {
		instancesByEntry[instance.EntryID] = append(instancesByEntry[instance.EntryID], instance)
	}

	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		entry := row.ToDomain()
		entry.Fields = assembleFields(schema, valuesByEntry[row.ID], instancesByEntry[row.ID])
		entries = append(entries, entry)
	}

	return entries, nil
}

func assembleFields(schema schemadomain.Schema, values []internal.FieldValue, instances []internal.GroupInstance) map[string]any {
	byField := make(map[int64][]internal.FieldValue)
	for _, value := range values {
		byField[value.FieldID] = append(byField[value.FieldID], value)
	}
	instancesByField := make(map[int64][]internal.GroupInstance)
	for _, instance := range instances {
		instancesByField[instance.FieldID] = append(instancesByField[instance.FieldID], instance)
	}

	fields := make(map[string]any)
	for _, field := range schema.Fields {
		if field.IsGroup() {
			assembled, present := assembleGroup(field, byField, instancesByField[field.ID])
			if present {
				fields[field.Name] = assembled
			}
			continue
		}

		rows := topLevelRows(byField[field.ID])
		if len(rows) == 0 {
			continue
		}

		if field.Options.Repeatable {
			items := make([]any, 0, len(rows))
			for _, row := range rows {
				items = append(items, codec.Decode(field, row.ToStoredRow()))
			}
			fields[field.Name] = items
			continue
		}

		fields[field.Name] = codec.Decode(field, rows[0].ToStoredRow())
	}

	return fields
}

func assembleGroup(field schemadomain.FieldDefinition, byField map[int64][]internal.FieldValue, instances []internal.GroupInstance) (any, bool) {
	if len(instances) == 0 {
		return nil, false
	}

	objects := make([]any, 0, len(instances))
	for _, instance := range instances {
		object := make(map[string]any)
		for _, child := range field.Children {
			rows := instanceRows(byField[child.ID], instance.ID)
			if len(rows) == 0 {
				continue
			}
			if child.Options.Repeatable {
				items := make([]any, 0, len(rows))
				for _, row := range rows {
					items = append(items, codec.Decode(child, row.ToStoredRow()))
				}
				object[child.Name] = items
				continue
			}
			object[child.Name] = codec.Decode(child, rows[0].ToStoredRow())
		}
		objects = append(objects, object)
	}

	if field.Options.Repeatable {
		return objects, true
	}
	return objects[0], true
}

// topLevelRows filters to rows outside any group instance, order preserved.
func topLevelRows(rows []internal.FieldValue) []internal.FieldValue {
	out := make([]internal.FieldValue, 0, len(rows))
	for _, row := range rows {
		if row.GroupInstanceID == nil {
			out = append(out, row)
		}
	}
	return out
}

func instanceRows(rows []internal.FieldValue, instanceID int64) []internal.FieldValue {
	out := make([]internal.FieldValue, 0, len(rows))
	for _, row := range rows {
		if row.GroupInstanceID != nil && *row.GroupInstanceID == instanceID {
			out = append(out, row)
		}
	}
	return out
}

func sortEntriesBy(entries []domain.Entry, field string, desc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, aok := entries[i].Fields[field]
		b, bok := entries[j].Fields[field]
		// Missing values sink to the end regardless of direction.
		if !aok || a == nil {
			return false
		}
		if !bok || b == nil {
			return true
		}
		if desc {
			return compareValues(b, a) < 0
		}
		return compareValues(a, b) < 0
	})
}

func compareValues(a, b any) int {
	if af, aok := a.(float64); aok {
		if bf, bok := b.(float64); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func isEmptyScalar(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}
