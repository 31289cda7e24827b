package query

import (
	"fmt"
	"strings"

	"github.com/vegasq/danceable/table"
)

// Group represents a group of rows for aggregation
type Group struct {
	Key  string // Hash key for the group
	Rows []int  // Indices of the rows in the group, in input order
}

// ApplyGroupByAndAggregate groups rows by the key columns and computes one
// output row per group.
//
// The output holds the key columns followed by one column per aggregate.
// Groups appear in the order their first row appears in the input. Without
// key columns all rows form a single group, so an empty input still yields
// one row.
func ApplyGroupByAndAggregate(t *table.Table, groupByColumns []string, aggregates []SelectItem) (*table.Table, error) {
	if err := validateAggregates(aggregates, groupByColumns); err != nil {
		return nil, err
	}

	keyCols := make([]*table.Column, len(groupByColumns))
	for i, name := range groupByColumns {
		col, ok := t.Column(name)
		if !ok {
			return nil, &SchemaError{Op: "group by", Column: name, Reason: "column not found"}
		}
		keyCols[i] = col
	}

	var groups []*Group
	if len(groupByColumns) == 0 {
		all := make([]int, t.NumRows())
		for i := range all {
			all[i] = i
		}
		groups = []*Group{{Rows: all}}
	} else {
		groups = groupRows(t.NumRows(), keyCols)
	}

	columns := make([]*table.Column, 0, len(keyCols)+len(aggregates))
	if len(keyCols) > 0 {
		// Key columns take the value of the group's first row
		firstRows := make([]int, len(groups))
		for i, g := range groups {
			firstRows[i] = g.Rows[0]
		}
		keys, err := t.Project(groupByColumns...)
		if err != nil {
			return nil, &SchemaError{Op: "group by", Reason: err.Error()}
		}
		columns = append(columns, keys.Take(firstRows).Columns()...)
	}

	for _, item := range aggregates {
		aggExpr, ok := item.Expr.(*AggregateExpr)
		if !ok {
			// Key column repeated in the aggregate list
			continue
		}
		values := make([]interface{}, len(groups))
		for i, g := range groups {
			v, err := evaluateAggregate(aggExpr, t, g.Rows)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		columns = append(columns, table.NewColumn(item.Name(), values))
	}

	result, err := table.New(columns...)
	if err != nil {
		return nil, &SchemaError{Op: "group by", Reason: err.Error()}
	}
	return result, nil
}

// groupRows hashes rows into groups, keeping first-appearance order
func groupRows(n int, keyCols []*table.Column) []*Group {
	index := make(map[string]*Group)
	groups := make([]*Group, 0)

	for i := 0; i < n; i++ {
		key := computeGroupKey(keyCols, i)
		if group, exists := index[key]; exists {
			group.Rows = append(group.Rows, i)
			continue
		}
		group := &Group{Key: key, Rows: []int{i}}
		index[key] = group
		groups = append(groups, group)
	}

	return groups
}

// computeGroupKey computes a hash key for a row based on key columns
func computeGroupKey(keyCols []*table.Column, row int) string {
	var keyBuilder strings.Builder
	for i, col := range keyCols {
		if i > 0 {
			keyBuilder.WriteString("\x00||\x00") // Use unlikely separator to avoid collisions
		}
		keyBuilder.WriteString(fmt.Sprintf("%#v", col.Values[row])) // Use %#v for better type differentiation
	}
	return keyBuilder.String()
}

// evaluateAggregate evaluates an aggregate function over the rows of a group
func evaluateAggregate(aggExpr *AggregateExpr, t *table.Table, rows []int) (interface{}, error) {
	switch aggExpr.Function {
	case "COUNT":
		return evaluateCount(aggExpr, t, rows)
	case "SUM":
		return evaluateSum(aggExpr, t, rows)
	case "AVG":
		return evaluateAvg(aggExpr, t, rows)
	case "MIN":
		return evaluateExtreme(aggExpr, t, rows, -1)
	case "MAX":
		return evaluateExtreme(aggExpr, t, rows, 1)
	case "FIRST":
		return evaluateFirst(aggExpr, t, rows)
	default:
		return nil, fmt.Errorf("unknown aggregate function: %s", aggExpr.Function)
	}
}

// groupValues evaluates the aggregate argument for each row, skipping nulls
func groupValues(aggExpr *AggregateExpr, t *table.Table, rows []int) ([]interface{}, error) {
	if aggExpr.Arg == nil {
		return nil, fmt.Errorf("%s requires an argument", aggExpr.Function)
	}

	values := make([]interface{}, 0, len(rows))
	for _, i := range rows {
		value, err := aggExpr.Arg.EvaluateSelect(t.Row(i))
		if err != nil {
			return nil, err
		}
		if value != nil {
			values = append(values, value)
		}
	}
	return values, nil
}

// evaluateCount evaluates COUNT aggregate
func evaluateCount(aggExpr *AggregateExpr, t *table.Table, rows []int) (interface{}, error) {
	// COUNT(*) counts all rows
	if aggExpr.Arg == nil {
		return int64(len(rows)), nil
	}

	values, err := groupValues(aggExpr, t, rows)
	if err != nil {
		return nil, err
	}
	return int64(len(values)), nil
}

// evaluateSum evaluates SUM aggregate. Integer inputs give an integer sum.
func evaluateSum(aggExpr *AggregateExpr, t *table.Table, rows []int) (interface{}, error) {
	values, err := groupValues(aggExpr, t, rows)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil // Return NULL if no values
	}

	var intSum int64
	allInts := true
	sum := 0.0
	for _, value := range values {
		num, ok := toFloat64(value)
		if !ok {
			return nil, &SchemaError{Op: "SUM", Column: fmt.Sprint(aggExpr.Arg), Reason: fmt.Sprintf("cannot sum %T", value)}
		}
		if n, isInt := value.(int64); isInt {
			intSum += n
		} else {
			allInts = false
		}
		sum += num
	}

	if allInts {
		return intSum, nil
	}
	return sum, nil
}

// evaluateAvg evaluates AVG aggregate
func evaluateAvg(aggExpr *AggregateExpr, t *table.Table, rows []int) (interface{}, error) {
	values, err := groupValues(aggExpr, t, rows)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil // Return NULL if no values
	}

	sum := 0.0
	for _, value := range values {
		num, ok := toFloat64(value)
		if !ok {
			return nil, &SchemaError{Op: "AVG", Column: fmt.Sprint(aggExpr.Arg), Reason: fmt.Sprintf("cannot average %T", value)}
		}
		sum += num
	}

	return sum / float64(len(values)), nil
}

// evaluateExtreme evaluates MIN (sign -1) or MAX (sign 1). Any ordered type works.
func evaluateExtreme(aggExpr *AggregateExpr, t *table.Table, rows []int, sign int) (interface{}, error) {
	values, err := groupValues(aggExpr, t, rows)
	if err != nil {
		return nil, err
	}

	var best interface{}
	for _, value := range values {
		if best == nil || compareValues(value, best)*sign > 0 {
			best = value
		}
	}
	return best, nil
}

// evaluateFirst evaluates FIRST: the argument at the first row of the group
// once the group is stably sorted by the aggregate's ORDER BY
func evaluateFirst(aggExpr *AggregateExpr, t *table.Table, rows []int) (interface{}, error) {
	if aggExpr.Arg == nil {
		return nil, fmt.Errorf("FIRST requires an argument")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	first := rows[0]
	if len(aggExpr.OrderBy) > 0 {
		keys := make([]*table.Column, len(aggExpr.OrderBy))
		for i, item := range aggExpr.OrderBy {
			col, ok := t.Column(item.Column)
			if !ok {
				return nil, &SchemaError{Op: "FIRST", Column: item.Column, Reason: "column not found"}
			}
			keys[i] = col
		}
		ordered := append([]int(nil), rows...)
		sortIndices(ordered, keys, aggExpr.OrderBy)
		first = ordered[0]
	}

	return aggExpr.Arg.EvaluateSelect(t.Row(first))
}

// HasAggregateFunction checks if the list contains any aggregate functions
func HasAggregateFunction(selectList []SelectItem) bool {
	for _, item := range selectList {
		if _, ok := item.Expr.(*AggregateExpr); ok {
			return true
		}
	}
	return false
}

// validateAggregates checks that every item is an aggregate or a group key
func validateAggregates(items []SelectItem, groupByColumns []string) error {
	groupByMap := make(map[string]bool)
	for _, col := range groupByColumns {
		groupByMap[col] = true
	}

	for _, item := range items {
		switch e := item.Expr.(type) {
		case *AggregateExpr:
			continue
		case *ColumnRef:
			if !groupByMap[e.Column] {
				return &SchemaError{Op: "group by", Column: e.Column, Reason: "must appear in GROUP BY or be used in an aggregate function"}
			}
		default:
			return &SchemaError{Op: "group by", Reason: fmt.Sprintf("non-aggregate expression %v is not supported", item.Expr)}
		}
	}

	return nil
}
