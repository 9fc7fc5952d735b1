package query

import (
	"fmt"
	"strconv"
	"strings"

	"fieldpress-server/internal/content/codec"
	schemadomain "fieldpress-server/internal/schema/domain"
)

// compileFieldOp compiles one operator against a custom field as an
// existence test over field-value rows.
func (c *compiler) compileFieldOp(entryAlias string, field schemadomain.FieldDefinition, op string, operand any) (Condition, bool) {
	fv := c.nextAlias("fv")
	base := fmt.Sprintf(
		"SELECT 1 FROM %s %s WHERE %s.entry_id = %s.id AND %s.field_id = ?",
		valueTable, fv, fv, entryAlias, fv,
	)
	baseArgs := []any{field.ID}

	switch {
	case comparators[op] != "" && op != "not":
		cmp, args, ok := c.valueComparison(fv, field, comparators[op], operand)
		if !ok {
			return Condition{}, false
		}
		return Condition{
			Expr: fmt.Sprintf("EXISTS (%s AND (%s))", base, cmp),
			Args: append(baseArgs, args...),
		}, true

	case op == "not":
		// Negated existence: "absent or not equal", which a != column
		// comparison gets wrong for rows that never existed.
		cmp, args, ok := c.valueComparison(fv, field, "=", operand)
		if !ok {
			return Condition{}, false
		}
		return Condition{
			Expr: fmt.Sprintf("NOT EXISTS (%s AND (%s))", base, cmp),
			Args: append(baseArgs, args...),
		}, true

	case op == likeOperator:
		pattern := "%" + stringify(operand) + "%"
		expr := fmt.Sprintf("%s.value_text LIKE ? OR %s.value_json LIKE ?", fv, fv)
		return Condition{
			Expr: fmt.Sprintf("EXISTS (%s AND (%s))", base, expr),
			Args: append(baseArgs, pattern, pattern),
		}, true

	case op == inOperator, op == notInOperator:
		items := operandList(operand)
		if len(items) == 0 {
			return Condition{}, false
		}
		var exprs []string
		var args []any
		for _, item := range items {
			cmp, cmpArgs, ok := c.valueComparison(fv, field, "=", item)
			if !ok {
				continue
			}
			exprs = append(exprs, "("+cmp+")")
			args = append(args, cmpArgs...)
		}
		if len(exprs) == 0 {
			return Condition{}, false
		}
		keyword := "EXISTS"
		if op == notInOperator {
			keyword = "NOT EXISTS"
		}
		return Condition{
			Expr: fmt.Sprintf("%s (%s AND (%s))", keyword, base, strings.Join(exprs, " OR ")),
			Args: append(baseArgs, args...),
		}, true

	case op == nullOperator:
		return c.compileNull(entryAlias, field, false)

	case op == notNullOperator:
		return c.compileNull(entryAlias, field, true)

	case op == betweenOperator, op == notBetweenOp:
		bounds := operandList(operand)
		if len(bounds) != 2 {
			c.drop(field.Name + "." + op)
			return Condition{}, false
		}
		cmp, args, ok := c.betweenComparison(fv, field, bounds[0], bounds[1])
		if !ok {
			return Condition{}, false
		}
		keyword := "EXISTS"
		if op == notBetweenOp {
			keyword = "NOT EXISTS"
		}
		return Condition{
			Expr: fmt.Sprintf("%s (%s AND (%s))", keyword, base, cmp),
			Args: append(baseArgs, args...),
		}, true

	default:
		c.drop(field.Name + "." + op)
		return Condition{}, false
	}
}

// compileNull builds the presence test. Relation and media fields have
// bespoke semantics: "null" is no value row at all, or a row owning zero
// links; "not_null" is a row owning at least one link.
func (c *compiler) compileNull(entryAlias string, field schemadomain.FieldDefinition, wantPresent bool) (Condition, bool) {
	fv := c.nextAlias("fv")
	base := fmt.Sprintf(
		"SELECT 1 FROM %s %s WHERE %s.entry_id = %s.id AND %s.field_id = ?",
		valueTable, fv, fv, entryAlias, fv,
	)

	if field.Type.Relational() {
		link := c.nextAlias("lnk")
		linkExists := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %s %s WHERE %s.field_value_id = %s.id)",
			linkTableFor(field.Type), link, link, fv,
		)

		if wantPresent {
			return Condition{
				Expr: fmt.Sprintf("EXISTS (%s AND %s)", base, linkExists),
				Args: []any{field.ID},
			}, true
		}

		absent := fmt.Sprintf(
			"NOT EXISTS (SELECT 1 FROM %s %s WHERE %s.entry_id = %s.id AND %s.field_id = ?)",
			valueTable, fv, fv, entryAlias, fv,
		)
		return Condition{
			Expr: fmt.Sprintf("(%s OR EXISTS (%s AND NOT %s))", absent, base, linkExists),
			Args: []any{field.ID, field.ID},
		}, true
	}

	column := fv + "." + codec.ColumnName(codec.ColumnFor(field.Type, field.Options))
	if wantPresent {
		return Condition{
			Expr: fmt.Sprintf("EXISTS (%s AND %s IS NOT NULL)", base, column),
			Args: []any{field.ID},
		}, true
	}
	return Condition{
		Expr: fmt.Sprintf("NOT EXISTS (%s AND %s IS NOT NULL)", base, column),
		Args: []any{field.ID},
	}, true
}

// compileRelationChain builds the nested existence test: a value row of the
// relation field owns a link pointing at a target entry that satisfies the
// recursively compiled sub-filter.
func (c *compiler) compileRelationChain(entryAlias string, field schemadomain.FieldDefinition, subFilter map[string]any, resolver FieldResolver) (Condition, bool) {
	subResolver, ok := resolver.Relation(field)
	if !ok {
		c.drop(field.Name)
		return Condition{}, false
	}

	fv := c.nextAlias("fv")
	link := c.nextAlias("lnk")
	target := c.nextAlias("rel")

	subConditions := c.compileMap(target, subFilter, subResolver)

	var subExpr string
	var subArgs []any
	for _, cond := range subConditions {
		subExpr += " AND " + cond.Expr
		subArgs = append(subArgs, cond.Args...)
	}

	expr := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM %s %s JOIN %s %s ON %s.field_value_id = %s.id JOIN %s %s ON %s.id = %s.target_entry_id WHERE %s.entry_id = %s.id AND %s.field_id = ? AND %s.deleted_at IS NULL%s)",
		valueTable, fv,
		relationTable, link, link, fv,
		entryTable, target, target, link,
		fv, entryAlias, fv,
		target,
		subExpr,
	)

	return Condition{
		Expr: expr,
		Args: append([]any{field.ID}, subArgs...),
	}, true
}

// valueComparison builds the best-effort disjunction for one operand: the
// typed column implied by the declared type, a containment probe on the
// json column, and, when the operand's shape allows, the numeric and
// boolean columns. Any match suffices; the stored representation of a
// flexible schema cannot be known in advance.
func (c *compiler) valueComparison(fvAlias string, field schemadomain.FieldDefinition, sqlCmp string, operand any) (string, []any, bool) {
	var exprs []string
	var args []any

	typed := codec.ColumnFor(field.Type, field.Options)
	typedColumn := fvAlias + "." + codec.ColumnName(typed)

	switch typed {
	case codec.ColumnNumber:
		if number, ok := numericOperand(operand); ok {
			exprs = append(exprs, fmt.Sprintf("%s %s ?", typedColumn, sqlCmp))
			args = append(args, number)
		}
	case codec.ColumnBoolean:
		if flag, ok := booleanOperand(operand); ok {
			exprs = append(exprs, fmt.Sprintf("%s %s ?", typedColumn, sqlCmp))
			args = append(args, flag)
		}
	case codec.ColumnDate, codec.ColumnDatetime:
		if ts, ok := codec.ParseDate(stringify(operand)); ok {
			exprs = append(exprs, fmt.Sprintf("%s %s ?", typedColumn, sqlCmp))
			args = append(args, ts)
		}
	case codec.ColumnText:
		exprs = append(exprs, fmt.Sprintf("%s %s ?", typedColumn, sqlCmp))
		args = append(args, stringify(operand))
	case codec.ColumnJSON:
		// covered by the containment probe below
	}

	if sqlCmp == "=" || sqlCmp == "!=" {
		exprs = append(exprs, fvAlias+".value_json LIKE ?")
		args = append(args, "%"+stringify(operand)+"%")
	}

	if number, ok := numericOperand(operand); ok && typed != codec.ColumnNumber {
		exprs = append(exprs, fmt.Sprintf("%s.value_number %s ?", fvAlias, sqlCmp))
		args = append(args, number)
	}

	if flag, ok := booleanOperand(operand); ok && typed != codec.ColumnBoolean {
		exprs = append(exprs, fvAlias+".value_boolean = ?")
		args = append(args, flag)
	}

	if len(exprs) == 0 {
		return "", nil, false
	}

	return strings.Join(exprs, " OR "), args, true
}

func (c *compiler) betweenComparison(fvAlias string, field schemadomain.FieldDefinition, low, high any) (string, []any, bool) {
	var exprs []string
	var args []any

	typed := codec.ColumnFor(field.Type, field.Options)
	typedColumn := fvAlias + "." + codec.ColumnName(typed)

	switch typed {
	case codec.ColumnNumber:
		// handled by the numeric probe below
	case codec.ColumnDate, codec.ColumnDatetime:
		lowTS, okLow := codec.ParseDate(stringify(low))
		highTS, okHigh := codec.ParseDate(stringify(high))
		if okLow && okHigh {
			exprs = append(exprs, fmt.Sprintf("%s BETWEEN ? AND ?", typedColumn))
			args = append(args, lowTS, highTS)
		}
	default:
		exprs = append(exprs, fmt.Sprintf("%s BETWEEN ? AND ?", typedColumn))
		args = append(args, stringify(low), stringify(high))
	}

	lowNum, okLow := numericOperand(low)
	highNum, okHigh := numericOperand(high)
	if okLow && okHigh {
		exprs = append(exprs, fmt.Sprintf("%s.value_number BETWEEN ? AND ?", fvAlias))
		args = append(args, lowNum, highNum)
	}

	if len(exprs) == 0 {
		return "", nil, false
	}

	return strings.Join(exprs, " OR "), args, true
}

func linkTableFor(fieldType schemadomain.FieldType) string {
	if fieldType == schemadomain.FieldTypeMedia {
		return mediaTable
	}
	return relationTable
}

// operandList flattens in/between operands: arrays pass through,
// comma-separated strings split, lone scalars wrap.
func operandList(operand any) []any {
	switch v := operand.(type) {
	case []any:
		return v
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return items
	case string:
		parts := strings.Split(v, ",")
		items := make([]any, 0, len(parts))
		for _, part := range parts {
			items = append(items, strings.TrimSpace(part))
		}
		return items
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func stringify(operand any) string {
	switch v := operand.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func numericOperand(operand any) (float64, bool) {
	switch v := operand.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// booleanOperand recognizes the boolean-coercible shapes "true"/"false"/
// "1"/"0" and native bools.
func booleanOperand(operand any) (bool, bool) {
	switch v := operand.(type) {
	case bool:
		return v, true
	case string:
		switch v {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}
