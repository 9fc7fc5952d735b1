package query

import (
	"fmt"
	"strings"

	"fieldpress-server/internal/content/codec"
)

// SortPlan is the executable ordering: join fragments for custom-field
// value columns and the ordering expressions consuming them.
type SortPlan struct {
	Joins  []Condition
	Orders []string
	// Unknown lists sort tokens dropped because no such field exists.
	Unknown []string
	// FallbackField names the first resolved token when it is a custom
	// field, for the executor's in-memory sort when no pagination was
	// requested. When the first token is a core column FirstCoreOrder
	// carries its order expression instead and FallbackField stays empty.
	FallbackField  string
	FallbackDesc   bool
	FirstCoreOrder string
}

// PlanSort resolves a comma-separated "field[:dir]" spec. Core columns
// order directly; custom fields order through a value-column join with
// nulls placed last regardless of direction, which not every backing
// store offers natively.
func PlanSort(spec string, resolver FieldResolver) SortPlan {
	var plan SortPlan

	joinSeq := 0
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}

		name := token
		direction := "ASC"
		if before, after, found := strings.Cut(token, ":"); found {
			name = strings.TrimSpace(before)
			if strings.EqualFold(strings.TrimSpace(after), "desc") {
				direction = "DESC"
			}
		}

		if isCoreColumn(name) {
			order := fmt.Sprintf("%s.%s %s", entryTable, name, direction)
			plan.Orders = append(plan.Orders, order)
			if plan.FirstCoreOrder == "" && plan.FallbackField == "" {
				plan.FirstCoreOrder = order
			}
			continue
		}

		field, ok := resolver.Field(name)
		if !ok || field.IsGroup() {
			plan.Unknown = append(plan.Unknown, name)
			continue
		}

		// Only the primary row (sort order zero, outside any group
		// instance) participates, so the join never fans out.
		alias := fmt.Sprintf("sv%d", joinSeq)
		joinSeq++
		plan.Joins = append(plan.Joins, Condition{
			Expr: fmt.Sprintf(
				"LEFT JOIN %s %s ON %s.entry_id = %s.id AND %s.field_id = ? AND %s.group_instance_id IS NULL AND %s.sort_order = 0",
				valueTable, alias, alias, entryTable, alias, alias, alias,
			),
			Args: []any{field.ID},
		})

		column := alias + "." + codec.ColumnName(codec.ColumnFor(field.Type, field.Options))
		plan.Orders = append(plan.Orders,
			fmt.Sprintf("(%s IS NULL) ASC", column),
			fmt.Sprintf("%s %s", column, direction),
		)

		if plan.FallbackField == "" && plan.FirstCoreOrder == "" {
			plan.FallbackField = name
			plan.FallbackDesc = direction == "DESC"
		}
	}

	return plan
}
