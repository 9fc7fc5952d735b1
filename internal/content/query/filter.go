package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	schemadomain "fieldpress-server/internal/schema/domain"
)

// Condition is one executable constraint: a SQL fragment with bind args,
// consumable by the ORM's Where/Joins clauses.
type Condition struct {
	Expr string
	Args []any
}

// FieldResolver resolves field names of one collection, and for relation
// fields the resolver of the target collection.
type FieldResolver interface {
	Field(name string) (schemadomain.FieldDefinition, bool)
	Relation(field schemadomain.FieldDefinition) (FieldResolver, bool)
}

// CompiledFilter is the result of compiling a filter tree. Conditions are
// conjunctive; Unknown lists the keys dropped by the fail-open policy.
type CompiledFilter struct {
	Conditions []Condition
	Unknown    []string
}

const (
	entryTable      = "content_entries"
	valueTable      = "field_values"
	relationTable   = "relation_links"
	mediaTable      = "media_links"
	orKey           = "or"
	likeOperator    = "like"
	inOperator      = "in"
	notInOperator   = "not_in"
	nullOperator    = "null"
	notNullOperator = "not_null"
	betweenOperator = "between"
	notBetweenOp    = "not_between"
)

// comparators maps the plain comparison operators to SQL.
var comparators = map[string]string{
	"eq":  "=",
	"lt":  "<",
	"lte": "<=",
	"gt":  ">",
	"gte": ">=",
	"not": "!=",
}

var coreColumns = map[string]struct{}{
	"id": {}, "uuid": {}, "locale": {}, "status": {}, "created_at": {}, "updated_at": {},
}

func isOperator(key string) bool {
	if _, ok := comparators[key]; ok {
		return true
	}
	switch key {
	case likeOperator, inOperator, notInOperator, nullOperator, notNullOperator, betweenOperator, notBetweenOp:
		return true
	}
	return false
}

// CompileFilter translates a nested filter expression into constraints over
// the entry table. Unknown fields and malformed clauses are dropped, never
// errors: a schema/filter mismatch must not fail the whole query.
func CompileFilter(filter map[string]any, resolver FieldResolver) CompiledFilter {
	c := &compiler{}
	conditions := c.compileMap(entryTable, filter, resolver)
	return CompiledFilter{Conditions: conditions, Unknown: c.unknown}
}

type compiler struct {
	aliasSeq int
	unknown  []string
}

func (c *compiler) nextAlias(prefix string) string {
	c.aliasSeq++
	return fmt.Sprintf("%s%d", prefix, c.aliasSeq)
}

func (c *compiler) drop(key string) {
	c.unknown = append(c.unknown, key)
}

// compileMap compiles one level of the filter tree against the entry table
// aliased as entryAlias. Sibling entries combine conjunctively; the "or"
// key's entries combine disjunctively and merge back as one condition.
func (c *compiler) compileMap(entryAlias string, filter map[string]any, resolver FieldResolver) []Condition {
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var conditions []Condition
	for _, key := range keys {
		value := filter[key]

		switch {
		case key == orKey:
			if cond, ok := c.compileOrGroup(entryAlias, value, resolver); ok {
				conditions = append(conditions, cond)
			}

		case isIndexKey(key):
			conditions = append(conditions, c.compileChainMarker(entryAlias, key, value, resolver)...)

		case isCoreColumn(key):
			if cond, ok := c.compileCore(entryAlias, key, value); ok {
				conditions = append(conditions, cond)
			}

		default:
			if cond, ok := c.compileField(entryAlias, key, value, resolver); ok {
				conditions = append(conditions, cond)
			}
		}
	}

	return conditions
}

func isIndexKey(key string) bool {
	_, err := strconv.Atoi(key)
	return err == nil
}

func isCoreColumn(key string) bool {
	_, ok := coreColumns[key]
	return ok
}

func (c *compiler) compileOrGroup(entryAlias string, value any, resolver FieldResolver) (Condition, bool) {
	group, ok := value.(map[string]any)
	if !ok {
		return Condition{}, false
	}

	members := c.compileMap(entryAlias, group, resolver)
	if len(members) == 0 {
		return Condition{}, false
	}

	exprs := make([]string, len(members))
	var args []any
	for i, member := range members {
		exprs[i] = member.Expr
		args = append(args, member.Args...)
	}

	return Condition{
		Expr: "(" + strings.Join(exprs, " OR ") + ")",
		Args: args,
	}, true
}

// compileChainMarker handles the numeric-keyed relation-chain shape:
// where[0][relationField][subField][op] = value.
func (c *compiler) compileChainMarker(entryAlias, key string, value any, resolver FieldResolver) []Condition {
	chains, ok := value.(map[string]any)
	if !ok {
		c.drop(key)
		return nil
	}

	fieldNames := make([]string, 0, len(chains))
	for name := range chains {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	var conditions []Condition
	for _, name := range fieldNames {
		subFilter, ok := chains[name].(map[string]any)
		if !ok {
			c.drop(name)
			continue
		}

		field, ok := resolver.Field(name)
		if !ok || field.Type != schemadomain.FieldTypeRelation {
			c.drop(name)
			continue
		}

		if cond, ok := c.compileRelationChain(entryAlias, field, subFilter, resolver); ok {
			conditions = append(conditions, cond)
		}
	}

	return conditions
}

func (c *compiler) compileCore(entryAlias, column string, value any) (Condition, bool) {
	qualified := entryAlias + "." + column

	operations, ok := value.(map[string]any)
	if !ok {
		return Condition{Expr: qualified + " = ?", Args: []any{value}}, true
	}

	var exprs []string
	var args []any

	opNames := make([]string, 0, len(operations))
	for op := range operations {
		opNames = append(opNames, op)
	}
	sort.Strings(opNames)

	for _, op := range opNames {
		operand := operations[op]

		switch {
		case comparators[op] != "":
			exprs = append(exprs, fmt.Sprintf("%s %s ?", qualified, comparators[op]))
			args = append(args, operand)
		case op == likeOperator:
			exprs = append(exprs, qualified+" LIKE ?")
			args = append(args, "%"+stringify(operand)+"%")
		case op == inOperator:
			exprs = append(exprs, qualified+" IN ?")
			args = append(args, operandList(operand))
		case op == notInOperator:
			exprs = append(exprs, qualified+" NOT IN ?")
			args = append(args, operandList(operand))
		case op == nullOperator:
			exprs = append(exprs, qualified+" IS NULL")
		case op == notNullOperator:
			exprs = append(exprs, qualified+" IS NOT NULL")
		case op == betweenOperator || op == notBetweenOp:
			bounds := operandList(operand)
			if len(bounds) != 2 {
				c.drop(column + "." + op)
				continue
			}
			keyword := "BETWEEN"
			if op == notBetweenOp {
				keyword = "NOT BETWEEN"
			}
			exprs = append(exprs, fmt.Sprintf("%s %s ? AND ?", qualified, keyword))
			args = append(args, bounds[0], bounds[1])
		default:
			c.drop(column + "." + op)
		}
	}

	if len(exprs) == 0 {
		return Condition{}, false
	}

	return Condition{Expr: "(" + strings.Join(exprs, " AND ") + ")", Args: args}, true
}

func (c *compiler) compileField(entryAlias, name string, value any, resolver FieldResolver) (Condition, bool) {
	field, ok := resolver.Field(name)
	if !ok || field.IsGroup() {
		c.drop(name)
		return Condition{}, false
	}

	operations, isMap := value.(map[string]any)
	if !isMap {
		return c.compileFieldOp(entryAlias, field, "eq", value)
	}

	// A nested mapping whose keys are not operators chains through a
	// relation field into the target collection's own filter.
	if field.Type == schemadomain.FieldTypeRelation && !allOperators(operations) {
		return c.compileRelationChain(entryAlias, field, operations, resolver)
	}

	var exprs []string
	var args []any

	opNames := make([]string, 0, len(operations))
	for op := range operations {
		opNames = append(opNames, op)
	}
	sort.Strings(opNames)

	for _, op := range opNames {
		if cond, ok := c.compileFieldOp(entryAlias, field, op, operations[op]); ok {
			exprs = append(exprs, cond.Expr)
			args = append(args, cond.Args...)
		}
	}

	if len(exprs) == 0 {
		return Condition{}, false
	}

	return Condition{Expr: "(" + strings.Join(exprs, " AND ") + ")", Args: args}, true
}

func allOperators(operations map[string]any) bool {
	for key := range operations {
		if !isOperator(key) {
			return false
		}
	}
	return true
}
