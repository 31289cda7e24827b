package query

import (
	"fmt"
	"math"
	"sort"

	"github.com/vegasq/danceable/table"
)

// abs returns the absolute value of a float64
func abs(x float64) float64 {
	return math.Abs(x)
}

// compare compares two values using the given operator
func compare(left interface{}, operator Operator, right interface{}) (bool, error) {
	// Handle nil values
	if left == nil || right == nil {
		if operator == OpEqual {
			return left == right, nil
		}
		if operator == OpNotEqual {
			return left != right, nil
		}
		return false, nil
	}

	// Try numeric comparison
	leftNum, leftIsNum := toFloat64(left)
	rightNum, rightIsNum := toFloat64(right)

	if leftIsNum && rightIsNum {
		return compareNumbers(leftNum, operator, rightNum), nil
	}

	// Flags stored as 0/1 compare against booleans
	if leftIsNum || rightIsNum {
		if b, ok := toBool(left); ok && rightIsNum {
			return compareNumbers(boolToFloat(b), operator, rightNum), nil
		}
		if b, ok := toBool(right); ok && leftIsNum {
			return compareNumbers(leftNum, operator, boolToFloat(b)), nil
		}
	}

	// Try string comparison
	leftStr, leftIsStr := toString(left)
	rightStr, rightIsStr := toString(right)

	if leftIsStr && rightIsStr {
		return compareStrings(leftStr, operator, rightStr), nil
	}

	// Try boolean comparison
	leftBool, leftIsBool := toBool(left)
	rightBool, rightIsBool := toBool(right)

	if leftIsBool && rightIsBool {
		return compareBools(leftBool, operator, rightBool), nil
	}

	return false, &SchemaError{Op: "compare", Reason: fmt.Sprintf("cannot compare %T with %T", left, right)}
}

// toFloat64 converts a value to float64 if possible
func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}

// toString converts a value to string if possible
func toString(v interface{}) (string, bool) {
	if str, ok := v.(string); ok {
		return str, true
	}
	return "", false
}

// toBool converts a value to bool if possible
func toBool(v interface{}) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	return false, false
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// compareNumbers compares two numbers
func compareNumbers(left float64, operator Operator, right float64) bool {
	const epsilon = 1e-9 // Use small epsilon for floating point comparison
	switch operator {
	case OpEqual:
		diff := abs(left - right)
		threshold := epsilon * max(1.0, abs(left), abs(right))
		return diff < threshold
	case OpNotEqual:
		diff := abs(left - right)
		threshold := epsilon * max(1.0, abs(left), abs(right))
		return diff >= threshold
	case OpLess:
		return left < right
	case OpGreater:
		return left > right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareStrings compares two strings (case-sensitive)
func compareStrings(left string, operator Operator, right string) bool {
	switch operator {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	case OpLess:
		return left < right
	case OpGreater:
		return left > right
	case OpLessEqual:
		return left <= right
	case OpGreaterEqual:
		return left >= right
	default:
		return false
	}
}

// compareBools compares two booleans
func compareBools(left bool, operator Operator, right bool) bool {
	switch operator {
	case OpEqual:
		return left == right
	case OpNotEqual:
		return left != right
	default:
		return false
	}
}

// ApplyFilter returns the rows of t for which filter is true, in input order
func ApplyFilter(t *table.Table, filter Expression) (*table.Table, error) {
	if filter == nil {
		return t, nil
	}

	keep := make([]int, 0)
	for i := 0; i < t.NumRows(); i++ {
		match, err := filter.Evaluate(t.Row(i))
		if err != nil {
			return nil, err
		}
		if match {
			keep = append(keep, i)
		}
	}

	return t.Take(keep), nil
}

// ApplySelectList projects t onto the select list.
//
// Items referencing * expand to every input column. Computed columns get
// their type from the produced values.
func ApplySelectList(t *table.Table, selectList []SelectItem) (*table.Table, error) {
	if len(selectList) == 0 {
		return t, nil
	}

	columns := make([]*table.Column, 0, len(selectList))
	for _, item := range selectList {
		// Expand SELECT * in place
		if colRef, ok := item.Expr.(*ColumnRef); ok && colRef.Column == "*" {
			columns = append(columns, t.Columns()...)
			continue
		}

		name := item.Name()

		// Plain column references share the input values
		if colRef, ok := item.Expr.(*ColumnRef); ok {
			col, exists := t.Column(colRef.Column)
			if !exists {
				return nil, &SchemaError{Op: "select", Column: colRef.Column, Reason: "column not found"}
			}
			columns = append(columns, col.Rename(name))
			continue
		}

		values := make([]interface{}, t.NumRows())
		for i := range values {
			v, err := item.Expr.EvaluateSelect(t.Row(i))
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		columns = append(columns, table.NewColumn(name, values))
	}

	result, err := table.New(columns...)
	if err != nil {
		return nil, &SchemaError{Op: "select", Reason: err.Error()}
	}
	return result, nil
}

// ApplyOrderBy sorts rows by the given keys. The sort is stable, so rows
// with equal keys keep their input order.
func ApplyOrderBy(t *table.Table, orderBy []OrderByItem) (*table.Table, error) {
	if t.NumRows() == 0 || len(orderBy) == 0 {
		return t, nil
	}

	keys := make([]*table.Column, len(orderBy))
	for i, item := range orderBy {
		col, ok := t.Column(item.Column)
		if !ok {
			return nil, &SchemaError{Op: "sort", Column: item.Column, Reason: "column not found"}
		}
		keys[i] = col
	}

	indices := make([]int, t.NumRows())
	for i := range indices {
		indices[i] = i
	}
	sortIndices(indices, keys, orderBy)

	return t.Take(indices), nil
}

// sortIndices stably orders row indices by key columns
func sortIndices(indices []int, keys []*table.Column, orderBy []OrderByItem) {
	sort.SliceStable(indices, func(i, j int) bool {
		a, b := indices[i], indices[j]
		for k, item := range orderBy {
			c := compareValues(keys[k].Values[a], keys[k].Values[b])
			if c != 0 {
				if item.Desc {
					return c > 0
				}
				return c < 0
			}
		}
		return false
	})
}

// compareValues compares two values and returns:
// -1 if a < b
//
//	0 if a == b
//
// +1 if a > b
//
// nil sorts before any value.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	// Try numeric comparison
	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		if aNum < bNum {
			return -1
		}
		if aNum > bNum {
			return 1
		}
		return 0
	}

	// Try string comparison
	aStr, aIsStr := toString(a)
	bStr, bIsStr := toString(b)
	if aIsStr && bIsStr {
		if aStr < bStr {
			return -1
		}
		if aStr > bStr {
			return 1
		}
		return 0
	}

	// Try boolean comparison
	aBool, aIsBool := toBool(a)
	bBool, bIsBool := toBool(b)
	if aIsBool && bIsBool {
		if !aBool && bBool {
			return -1 // false < true
		}
		if aBool && !bBool {
			return 1 // true > false
		}
		return 0
	}

	// Type mismatch or unsupported types - treat as equal
	return 0
}

// ApplyLimitOffset applies LIMIT and OFFSET to rows. A negative limit means no limit.
func ApplyLimitOffset(t *table.Table, limit, offset int64) *table.Table {
	n := int64(t.NumRows())
	start := offset
	if start < 0 {
		start = 0
	}
	if start >= n {
		return t.Take(nil)
	}

	end := n
	if limit >= 0 && start+limit < n {
		end = start + limit
	}
	if start == 0 && end == n {
		return t
	}

	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, int(i))
	}
	return t.Take(indices)
}
