package persistence

import (
	"context"
	"fmt"

	"fieldpress-server/internal/content/codec"
	"fieldpress-server/internal/content/domain"
	"fieldpress-server/internal/content/persistence/internal"
	"fieldpress-server/internal/infra/sql"
	schemadomain "fieldpress-server/internal/schema/domain"
)

// valueStore fans a decoded payload out into field_values, group_instances
// and the link tables. Every method operates on a transaction-scoped ORM so
// a failed write never leaves a partial entry behind.
type valueStore struct {
	resolver codec.ReferenceResolver
}

func (s *valueStore) writeField(ctx context.Context, tx sql.ORM, entryID int64, field schemadomain.FieldDefinition, raw any) error {
	switch {
	case field.IsGroup():
		return s.writeGroup(ctx, tx, entryID, field, raw)
	case field.Options.Repeatable:
		return s.writeRepeatable(ctx, tx, entryID, field, nil, raw)
	default:
		return s.writeScalar(ctx, tx, entryID, field, nil, 0, raw)
	}
}

func (s *valueStore) writeScalar(ctx context.Context, tx sql.ORM, entryID int64, field schemadomain.FieldDefinition, groupInstanceID *int64, sortOrder int, raw any) error {
	decision, err := codec.Encode(ctx, field, raw, s.resolver)
	if err != nil {
		return fmt.Errorf("encoding field %s: %w", field.Name, err)
	}
	if decision.Skip() {
		return nil
	}

	value := decision.Value()
	row := internal.FromValue(entryID, field.ID, string(field.Type), groupInstanceID, sortOrder, value)
	if err := tx.WithContext(ctx).Create(&row).Error(); err != nil {
		return fmt.Errorf("inserting field value: %w", err)
	}

	if value.Kind == domain.ValueKindIDList {
		if err := s.replaceLinks(ctx, tx, row.ID, field.Type, value.IDs); err != nil {
			return err
		}
	}

	return nil
}

func (s *valueStore) writeRepeatable(ctx context.Context, tx sql.ORM, entryID int64, field schemadomain.FieldDefinition, groupInstanceID *int64, raw any) error {
	for idx, item := range toList(raw) {
		if err := s.writeScalar(ctx, tx, entryID, field, groupInstanceID, idx, item); err != nil {
			return err
		}
	}
	return nil
}

func (s *valueStore) writeGroup(ctx context.Context, tx sql.ORM, entryID int64, field schemadomain.FieldDefinition, raw any) error {
	items := toList(raw)
	if !field.Options.Repeatable && len(items) > 1 {
		items = items[:1]
	}

	for idx, item := range items {
		data, ok := item.(map[string]any)
		if !ok {
			continue
		}

		instance := internal.GroupInstance{
			EntryID:   entryID,
			FieldID:   field.ID,
			SortOrder: idx,
		}
		if err := tx.WithContext(ctx).Create(&instance).Error(); err != nil {
			return fmt.Errorf("inserting group instance: %w", err)
		}

		for _, child := range field.Children {
			childRaw, present := data[child.Name]
			if !present {
				continue
			}
			if child.Options.Repeatable {
				if err := s.writeRepeatable(ctx, tx, entryID, child, &instance.ID, childRaw); err != nil {
					return err
				}
				continue
			}
			if err := s.writeScalar(ctx, tx, entryID, child, &instance.ID, 0, childRaw); err != nil {
				return err
			}
		}
	}

	return nil
}

// replaceLinks rewrites the ordered link rows of one field value. An empty
// id list clears the links.
func (s *valueStore) replaceLinks(ctx context.Context, tx sql.ORM, fieldValueID int64, fieldType schemadomain.FieldType, ids []int64) error {
	if fieldType == schemadomain.FieldTypeMedia {
		if err := tx.WithContext(ctx).Where("field_value_id = ?", fieldValueID).Delete(&internal.MediaLink{}).Error(); err != nil {
			return fmt.Errorf("clearing media links: %w", err)
		}
		for idx, id := range ids {
			link := internal.MediaLink{FieldValueID: fieldValueID, AssetID: id, SortOrder: idx}
			if err := tx.WithContext(ctx).Create(&link).Error(); err != nil {
				return fmt.Errorf("inserting media link: %w", err)
			}
		}
		return nil
	}

	if err := tx.WithContext(ctx).Where("field_value_id = ?", fieldValueID).Delete(&internal.RelationLink{}).Error(); err != nil {
		return fmt.Errorf("clearing relation links: %w", err)
	}
	for idx, id := range ids {
		link := internal.RelationLink{FieldValueID: fieldValueID, TargetEntryID: id, SortOrder: idx}
		if err := tx.WithContext(ctx).Create(&link).Error(); err != nil {
			return fmt.Errorf("inserting relation link: %w", err)
		}
	}
	return nil
}

// deleteFieldRows removes every stored row of one field on one entry,
// link rows included.
func (s *valueStore) deleteFieldRows(ctx context.Context, tx sql.ORM, entryID, fieldID int64) error {
	var valueIDs []int64
	err := tx.WithContext(ctx).
		Model(&internal.FieldValue{}).
		Where("entry_id = ? AND field_id = ?", entryID, fieldID).
		Pluck("id", &valueIDs).
		Error()
	if err != nil {
		return fmt.Errorf("listing field value ids: %w", err)
	}

	if len(valueIDs) > 0 {
		if err := tx.WithContext(ctx).Where("field_value_id IN ?", valueIDs).Delete(&internal.MediaLink{}).Error(); err != nil {
			return fmt.Errorf("deleting media links: %w", err)
		}
		if err := tx.WithContext(ctx).Where("field_value_id IN ?", valueIDs).Delete(&internal.RelationLink{}).Error(); err != nil {
			return fmt.Errorf("deleting relation links: %w", err)
		}
		if err := tx.WithContext(ctx).Where("entry_id = ? AND field_id = ?", entryID, fieldID).Delete(&internal.FieldValue{}).Error(); err != nil {
			return fmt.Errorf("deleting field values: %w", err)
		}
	}

	if err := tx.WithContext(ctx).Where("entry_id = ? AND field_id = ?", entryID, fieldID).Delete(&internal.GroupInstance{}).Error(); err != nil {
		return fmt.Errorf("deleting group instances: %w", err)
	}

	return nil
}

// deleteGroupChildRows removes the rows a group's children wrote, which
// carry the child field ids rather than the group's own.
func (s *valueStore) deleteGroupChildRows(ctx context.Context, tx sql.ORM, entryID int64, field schemadomain.FieldDefinition) error {
	for _, child := range field.Children {
		if err := s.deleteFieldRows(ctx, tx, entryID, child.ID); err != nil {
			return err
		}
	}
	return s.deleteFieldRows(ctx, tx, entryID, field.ID)
}

func (s *valueStore) deleteAllRows(ctx context.Context, tx sql.ORM, entryID int64) error {
	var valueIDs []int64
	err := tx.WithContext(ctx).
		Model(&internal.FieldValue{}).
		Where("entry_id = ?", entryID).
		Pluck("id", &valueIDs).
		Error()
	if err != nil {
		return fmt.Errorf("listing field value ids: %w", err)
	}

	if len(valueIDs) > 0 {
		if err := tx.WithContext(ctx).Where("field_value_id IN ?", valueIDs).Delete(&internal.MediaLink{}).Error(); err != nil {
			return fmt.Errorf("deleting media links: %w", err)
		}
		if err := tx.WithContext(ctx).Where("field_value_id IN ?", valueIDs).Delete(&internal.RelationLink{}).Error(); err != nil {
			return fmt.Errorf("deleting relation links: %w", err)
		}
	}

	if err := tx.WithContext(ctx).Where("entry_id = ?", entryID).Delete(&internal.FieldValue{}).Error(); err != nil {
		return fmt.Errorf("deleting field values: %w", err)
	}
	if err := tx.WithContext(ctx).Where("entry_id = ?", entryID).Delete(&internal.GroupInstance{}).Error(); err != nil {
		return fmt.Errorf("deleting group instances: %w", err)
	}

	return nil
}

func toList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []map[string]any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	default:
		return []any{raw}
	}
}
