package codec

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fieldpress-server/internal/content/domain"
	schemadomain "fieldpress-server/internal/schema/domain"
)

// ColumnFamily identifies which physical value column(s) a field type
// persists into.
type ColumnFamily int

const (
	ColumnText ColumnFamily = iota
	ColumnNumber
	ColumnBoolean
	ColumnDate
	ColumnDatetime
	ColumnJSON
)

const (
	DateLayout     = "2006-01-02"
	DatetimeLayout = "2006-01-02 15:04"
	// RangeDelimiter splits a "start - end" date pair.
	RangeDelimiter = " - "
)

// ColumnFor maps a declared field type to its primary column family.
func ColumnFor(fieldType schemadomain.FieldType, opts schemadomain.FieldOptions) ColumnFamily {
	switch fieldType {
	case schemadomain.FieldTypeNumber:
		return ColumnNumber
	case schemadomain.FieldTypeBoolean:
		return ColumnBoolean
	case schemadomain.FieldTypeDate:
		if opts.IncludeTime {
			return ColumnDatetime
		}
		return ColumnDate
	case schemadomain.FieldTypeEnumeration,
		schemadomain.FieldTypeJSON,
		schemadomain.FieldTypeMedia,
		schemadomain.FieldTypeRelation,
		schemadomain.FieldTypeRichText:
		return ColumnJSON
	case schemadomain.FieldTypeText,
		schemadomain.FieldTypeLongText,
		schemadomain.FieldTypeSlug,
		schemadomain.FieldTypeEmail,
		schemadomain.FieldTypePassword,
		schemadomain.FieldTypeColor,
		schemadomain.FieldTypeTime,
		schemadomain.FieldTypeGroup:
		return ColumnText
	default:
		return ColumnText
	}
}

// ColumnName maps a column family to the value column of a field-value row.
func ColumnName(family ColumnFamily) string {
	switch family {
	case ColumnNumber:
		return "value_number"
	case ColumnBoolean:
		return "value_boolean"
	case ColumnDate:
		return "value_date"
	case ColumnDatetime:
		return "value_datetime"
	case ColumnJSON:
		return "value_json"
	default:
		return "value_text"
	}
}

// StoredRow is the codec's view of one persisted field value: the eight
// physical value columns, independent of the storage layer's row model.
type StoredRow struct {
	Text        *string
	Number      *float64
	Boolean     *bool
	Date        *time.Time
	DateEnd     *time.Time
	Datetime    *time.Time
	DatetimeEnd *time.Time
	JSON        *string
}

// ReferenceResolver turns public identifiers into numeric ids. Numeric
// resolution for relation fields hits the entry store, media fields the
// asset store.
type ReferenceResolver interface {
	EntryIDByUUID(ctx context.Context, uuid string) (int64, bool, error)
	AssetIDByUUID(ctx context.Context, uuid string) (int64, bool, error)
}

// Encode maps a raw caller-supplied value to its typed storage variant.
// An empty or absent value yields a skip decision, never an explicit null
// row; enforcement of required fields lives in the validation layer above.
func Encode(ctx context.Context, field schemadomain.FieldDefinition, raw any, resolver ReferenceResolver) (domain.WriteDecision, error) {
	switch field.Type {
	case schemadomain.FieldTypeGroup:
		return domain.WriteDecision{}, fmt.Errorf("field %q: group fields are written via group instances", field.Name)

	case schemadomain.FieldTypeNumber:
		number, ok := coerceFloat(raw)
		if !ok {
			return domain.SkipWrite(), nil
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindNumber, Number: number}), nil

	case schemadomain.FieldTypeBoolean:
		if raw == nil {
			return domain.SkipWrite(), nil
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindBool, Bool: coerceBool(raw)}), nil

	case schemadomain.FieldTypeDate:
		return encodeDate(field, raw)

	case schemadomain.FieldTypeEnumeration:
		if raw == nil {
			return domain.SkipWrite(), nil
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindJSON, JSON: normalizeEnumeration(raw)}), nil

	case schemadomain.FieldTypeJSON:
		if raw == nil {
			return domain.SkipWrite(), nil
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindJSON, JSON: normalizeJSON(raw)}), nil

	case schemadomain.FieldTypeMedia, schemadomain.FieldTypeRelation:
		if raw == nil {
			return domain.SkipWrite(), nil
		}
		ids, err := ResolveIdentifiers(ctx, field, raw, resolver)
		if err != nil {
			return domain.WriteDecision{}, err
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindIDList, IDs: ids}), nil

	case schemadomain.FieldTypePassword:
		plain, _ := raw.(string)
		if plain == "" {
			// Updates may omit unchanged secrets; an empty password is
			// never an overwrite.
			return domain.SkipWrite(), nil
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
		if err != nil {
			return domain.WriteDecision{}, fmt.Errorf("hashing password: %w", err)
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindText, Text: string(hash)}), nil

	case schemadomain.FieldTypeRichText:
		return encodeRichText(raw)

	case schemadomain.FieldTypeText,
		schemadomain.FieldTypeLongText,
		schemadomain.FieldTypeSlug,
		schemadomain.FieldTypeEmail,
		schemadomain.FieldTypeColor,
		schemadomain.FieldTypeTime:
		text := coerceString(raw)
		if text == "" {
			return domain.SkipWrite(), nil
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindText, Text: text}), nil

	default:
		return domain.WriteDecision{}, fmt.Errorf("field %q: unknown type %q", field.Name, field.Type)
	}
}

// Decode reads a stored row back into its caller-facing representation.
// Passwords decode to their hash, never the plaintext.
func Decode(field schemadomain.FieldDefinition, row StoredRow) any {
	switch field.Type {
	case schemadomain.FieldTypeGroup:
		// Group fields have no row of their own; the read assembler
		// builds them from instances.
		return nil

	case schemadomain.FieldTypeNumber:
		if row.Number == nil {
			return nil
		}
		return *row.Number

	case schemadomain.FieldTypeBoolean:
		if row.Boolean == nil {
			return nil
		}
		return *row.Boolean

	case schemadomain.FieldTypeDate:
		return decodeDate(field, row)

	case schemadomain.FieldTypeEnumeration, schemadomain.FieldTypeJSON:
		return decodeJSONColumn(row)

	case schemadomain.FieldTypeMedia, schemadomain.FieldTypeRelation:
		ids := decodeIDList(row)
		if !field.Options.Multiple {
			if len(ids) == 0 {
				return nil
			}
			return ids[0]
		}
		return ids

	case schemadomain.FieldTypeRichText:
		if row.JSON != nil {
			return decodeJSONColumn(row)
		}
		if row.Text != nil {
			return *row.Text
		}
		return nil

	default:
		if row.Text == nil {
			return nil
		}
		return *row.Text
	}
}

// VerifyPassword compares a stored password hash with a plaintext candidate.
func VerifyPassword(storedHash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}

// ResolveIdentifiers turns the raw identifier list of a media or relation
// value into numeric ids: numeric-looking identifiers pass through,
// everything else is looked up by public UUID. Unresolvable identifiers are
// dropped, duplicates removed with first occurrence order preserved.
func ResolveIdentifiers(ctx context.Context, field schemadomain.FieldDefinition, raw any, resolver ReferenceResolver) ([]int64, error) {
	items := asList(raw)

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		id, ok, err := resolveOne(ctx, field, item, resolver)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids, nil
}

func resolveOne(ctx context.Context, field schemadomain.FieldDefinition, item any, resolver ReferenceResolver) (int64, bool, error) {
	switch v := item.(type) {
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case float64:
		return int64(v), true, nil
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id, true, nil
		}
		if resolver == nil {
			return 0, false, nil
		}
		if field.Type == schemadomain.FieldTypeMedia {
			return resolver.AssetIDByUUID(ctx, v)
		}
		return resolver.EntryIDByUUID(ctx, v)
	default:
		return 0, false, nil
	}
}

func encodeDate(field schemadomain.FieldDefinition, raw any) (domain.WriteDecision, error) {
	input := coerceString(raw)
	if input == "" {
		return domain.SkipWrite(), nil
	}

	value := domain.Value{
		Kind:  domain.ValueKindDateRange,
		Range: domain.DateRange{IncludeTime: field.Options.IncludeTime},
	}

	startRaw := input
	var endRaw string
	if field.Options.DateMode == schemadomain.DateModeRange {
		// Absent delimiter leaves the end bound nil; that is a single
		// unbounded value, not a validation error at this layer.
		if start, end, found := strings.Cut(input, RangeDelimiter); found {
			startRaw, endRaw = start, end
		}
	}

	start, ok := ParseDate(startRaw)
	if !ok {
		return domain.SkipWrite(), nil
	}
	value.Range.Start = start

	if endRaw != "" {
		if end, ok := ParseDate(endRaw); ok {
			value.Range.End = &end
		}
	}

	return domain.WriteValue(value), nil
}

func decodeDate(field schemadomain.FieldDefinition, row StoredRow) any {
	layout := DateLayout
	start, end := row.Date, row.DateEnd
	if field.Options.IncludeTime {
		layout = DatetimeLayout
		start, end = row.Datetime, row.DatetimeEnd
	}

	if start == nil {
		return nil
	}

	result := start.Format(layout)
	if end != nil {
		result += RangeDelimiter + end.Format(layout)
	}
	return result
}

var dateParseLayouts = []string{DatetimeLayout, time.RFC3339, DateLayout}

func ParseDate(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)
	for _, layout := range dateParseLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func encodeRichText(raw any) (domain.WriteDecision, error) {
	switch v := raw.(type) {
	case nil:
		return domain.SkipWrite(), nil
	case string:
		if v == "" {
			return domain.SkipWrite(), nil
		}
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindRichText, Text: v}), nil
	case map[string]any:
		// The dual representation: legacy HTML next to structured content.
		value := domain.Value{Kind: domain.ValueKindRichText}
		if html, ok := v["html"].(string); ok {
			value.Text = html
		}
		if blocks, ok := v["blocks"]; ok {
			value.JSON = blocks
		} else if value.Text == "" {
			value.JSON = v
		}
		return domain.WriteValue(value), nil
	default:
		return domain.WriteValue(domain.Value{Kind: domain.ValueKindRichText, JSON: raw}), nil
	}
}

// normalizeEnumeration forces the input into an array of scalars; an
// element shaped like {"value": x} unwraps to x.
func normalizeEnumeration(raw any) []any {
	items := asList(raw)
	result := make([]any, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			if inner, ok := obj["value"]; ok {
				result = append(result, inner)
				continue
			}
		}
		result = append(result, item)
	}
	return result
}

// normalizeJSON decodes string input when it is itself valid JSON,
// otherwise keeps the value as supplied.
func normalizeJSON(raw any) any {
	text, ok := raw.(string)
	if !ok {
		return raw
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return text
	}
	return decoded
}

func decodeJSONColumn(row StoredRow) any {
	if row.JSON == nil {
		return nil
	}
	var decoded any
	if err := json.Unmarshal([]byte(*row.JSON), &decoded); err != nil {
		return *row.JSON
	}
	return decoded
}

func decodeIDList(row StoredRow) []int64 {
	if row.JSON == nil {
		return nil
	}
	var raw []any
	if err := json.Unmarshal([]byte(*row.JSON), &raw); err != nil {
		return nil
	}
	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		if f, ok := item.(float64); ok {
			ids = append(ids, int64(f))
		}
	}
	return ids
}

func asList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items
	case []int64:
		items := make([]any, len(v))
		for i, n := range v {
			items[i] = n
		}
		return items
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func coerceFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

func coerceString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
