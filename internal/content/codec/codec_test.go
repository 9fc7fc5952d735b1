package codec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldpress-server/internal/content/domain"
	schemadomain "fieldpress-server/internal/schema/domain"
)

type stubResolver struct {
	entries map[string]int64
	assets  map[string]int64
}

func (r stubResolver) EntryIDByUUID(_ context.Context, uuid string) (int64, bool, error) {
	id, ok := r.entries[uuid]
	return id, ok, nil
}

func (r stubResolver) AssetIDByUUID(_ context.Context, uuid string) (int64, bool, error) {
	id, ok := r.assets[uuid]
	return id, ok, nil
}

func TestEncodeNumber_CoercesStrings(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "price", Type: schemadomain.FieldTypeNumber}

	decision, err := Encode(context.Background(), field, "19.90", nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())
	assert.Equal(t, 19.90, decision.Value().Number)
}

func TestEncodeNumber_UnparseableSkips(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "price", Type: schemadomain.FieldTypeNumber}

	decision, err := Encode(context.Background(), field, "not a number", nil)
	require.NoError(t, err)
	assert.True(t, decision.Skip())
}

func TestEncodeText_EmptySkips(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "title", Type: schemadomain.FieldTypeText}

	decision, err := Encode(context.Background(), field, "", nil)
	require.NoError(t, err)
	assert.True(t, decision.Skip())
}

func TestEncodeBoolean(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "active", Type: schemadomain.FieldTypeBoolean}

	decision, err := Encode(context.Background(), field, "1", nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())
	assert.True(t, decision.Value().Bool)

	decision, err = Encode(context.Background(), field, nil, nil)
	require.NoError(t, err)
	assert.True(t, decision.Skip())
}

func TestEncodeDate_SingleValue(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "released_on", Type: schemadomain.FieldTypeDate}

	decision, err := Encode(context.Background(), field, "2024-03-15", nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())

	value := decision.Value()
	assert.Equal(t, domain.ValueKindDateRange, value.Kind)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), value.Range.Start)
	assert.Nil(t, value.Range.End)
}

func TestEncodeDate_Range(t *testing.T) {
	field := schemadomain.FieldDefinition{
		Name:    "open_between",
		Type:    schemadomain.FieldTypeDate,
		Options: schemadomain.FieldOptions{DateMode: schemadomain.DateModeRange},
	}

	decision, err := Encode(context.Background(), field, "2024-03-01 - 2024-03-31", nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())

	value := decision.Value()
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), value.Range.Start)
	require.NotNil(t, value.Range.End)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), *value.Range.End)
}

func TestDecodeDate_RangeRoundTrip(t *testing.T) {
	field := schemadomain.FieldDefinition{
		Name:    "open_between",
		Type:    schemadomain.FieldTypeDate,
		Options: schemadomain.FieldOptions{DateMode: schemadomain.DateModeRange},
	}

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	decoded := Decode(field, StoredRow{Date: &start, DateEnd: &end})

	assert.Equal(t, "2024-03-01 - 2024-03-31", decoded)
}

func TestDecodeDate_WithTime(t *testing.T) {
	field := schemadomain.FieldDefinition{
		Name:    "starts_at",
		Type:    schemadomain.FieldTypeDate,
		Options: schemadomain.FieldOptions{IncludeTime: true},
	}

	at := time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	decoded := Decode(field, StoredRow{Datetime: &at})

	assert.Equal(t, "2024-03-15 09:30", decoded)
}

func TestEncodeEnumeration_UnwrapsValueObjects(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "tags", Type: schemadomain.FieldTypeEnumeration}

	decision, err := Encode(context.Background(), field, []any{map[string]any{"value": "go"}, "sql"}, nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())
	assert.Equal(t, []any{"go", "sql"}, decision.Value().JSON)
}

func TestEncodeJSON_DecodesStringInput(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "meta", Type: schemadomain.FieldTypeJSON}

	decision, err := Encode(context.Background(), field, `{"depth": 3}`, nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())
	assert.Equal(t, map[string]any{"depth": float64(3)}, decision.Value().JSON)
}

func TestEncodePassword_HashesAndVerifies(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "secret", Type: schemadomain.FieldTypePassword}

	decision, err := Encode(context.Background(), field, "hunter2", nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())

	hash := decision.Value().Text
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, VerifyPassword(hash, "hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter3"))
}

func TestEncodePassword_EmptySkips(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "secret", Type: schemadomain.FieldTypePassword}

	decision, err := Encode(context.Background(), field, "", nil)
	require.NoError(t, err)
	assert.True(t, decision.Skip())
}

func TestEncodeRelation_ResolvesMixedIdentifiers(t *testing.T) {
	field := schemadomain.FieldDefinition{
		Name:    "authors",
		Type:    schemadomain.FieldTypeRelation,
		Options: schemadomain.FieldOptions{Multiple: true},
	}
	resolver := stubResolver{entries: map[string]int64{"abc-123": 7}}

	decision, err := Encode(context.Background(), field, []any{"42", "abc-123", "unknown-uuid", float64(42)}, resolver)
	require.NoError(t, err)
	require.False(t, decision.Skip())

	// Unresolvable identifiers drop, duplicates keep first occurrence.
	assert.Equal(t, []int64{42, 7}, decision.Value().IDs)
}

func TestEncodeMedia_ResolvesAssets(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "cover", Type: schemadomain.FieldTypeMedia}
	resolver := stubResolver{assets: map[string]int64{"img-uuid": 11}}

	decision, err := Encode(context.Background(), field, "img-uuid", resolver)
	require.NoError(t, err)
	require.False(t, decision.Skip())
	assert.Equal(t, []int64{11}, decision.Value().IDs)
}

func TestDecodeRelation_SingleVersusMultiple(t *testing.T) {
	stored := `[42,7]`

	multiple := schemadomain.FieldDefinition{
		Name:    "authors",
		Type:    schemadomain.FieldTypeRelation,
		Options: schemadomain.FieldOptions{Multiple: true},
	}
	assert.Equal(t, []int64{42, 7}, Decode(multiple, StoredRow{JSON: &stored}))

	single := schemadomain.FieldDefinition{Name: "author", Type: schemadomain.FieldTypeRelation}
	assert.Equal(t, int64(42), Decode(single, StoredRow{JSON: &stored}))

	empty := `[]`
	assert.Nil(t, Decode(single, StoredRow{JSON: &empty}))
}

func TestEncodeRichText_DualRepresentation(t *testing.T) {
	field := schemadomain.FieldDefinition{Name: "body", Type: schemadomain.FieldTypeRichText}

	decision, err := Encode(context.Background(), field, map[string]any{
		"html":   "<p>hello</p>",
		"blocks": []any{map[string]any{"type": "paragraph"}},
	}, nil)
	require.NoError(t, err)
	require.False(t, decision.Skip())

	value := decision.Value()
	assert.Equal(t, "<p>hello</p>", value.Text)
	assert.NotNil(t, value.JSON)
}

func TestParseDate_Layouts(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15 09:30", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
		{"2024-03-15T09:30:00Z", time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		parsed, ok := ParseDate(tt.input)
		require.True(t, ok, tt.input)
		assert.True(t, tt.want.Equal(parsed), tt.input)
	}

	_, ok := ParseDate("yesterday")
	assert.False(t, ok)
}

func TestColumnFor(t *testing.T) {
	assert.Equal(t, ColumnNumber, ColumnFor(schemadomain.FieldTypeNumber, schemadomain.FieldOptions{}))
	assert.Equal(t, ColumnDate, ColumnFor(schemadomain.FieldTypeDate, schemadomain.FieldOptions{}))
	assert.Equal(t, ColumnDatetime, ColumnFor(schemadomain.FieldTypeDate, schemadomain.FieldOptions{IncludeTime: true}))
	assert.Equal(t, ColumnJSON, ColumnFor(schemadomain.FieldTypeRelation, schemadomain.FieldOptions{}))
	assert.Equal(t, ColumnText, ColumnFor(schemadomain.FieldTypeSlug, schemadomain.FieldOptions{}))
}
