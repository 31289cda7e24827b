package query

import (
	"fmt"
	"strings"

	"github.com/vegasq/danceable/table"
)

// ApplyJoin joins two tables on equal key columns using a hash join.
//
// The result holds every left column followed by the right columns that are
// not join keys. Rows come out in left row order; a left row matching
// several right rows yields them in right row order. Null keys never match.
func ApplyJoin(left, right *table.Table, spec JoinSpec) (*table.Table, error) {
	if _, err := joinColumnNames(left.ColumnNames(), right.ColumnNames(), spec); err != nil {
		return nil, err
	}

	leftKeys := make([]*table.Column, len(spec.LeftOn))
	rightKeys := make([]*table.Column, len(spec.RightOn))
	for i := range spec.LeftOn {
		lc, _ := left.Column(spec.LeftOn[i])
		rc, _ := right.Column(spec.RightOn[i])
		if lc.Type != rc.Type && lc.Type != table.TypeNull && rc.Type != table.TypeNull {
			return nil, &JoinError{
				Side:   "right",
				Key:    spec.RightOn[i],
				Reason: fmt.Sprintf("type %s does not match left key %q of type %s", rc.Type, spec.LeftOn[i], lc.Type),
			}
		}
		leftKeys[i] = lc
		rightKeys[i] = rc
	}

	// Build side: right table
	buckets := make(map[string][]int)
	for j := 0; j < right.NumRows(); j++ {
		key, ok := joinKey(rightKeys, j)
		if !ok {
			continue
		}
		buckets[key] = append(buckets[key], j)
	}

	// Probe side: left table
	leftIdx := make([]int, 0, left.NumRows())
	rightIdx := make([]int, 0, left.NumRows())
	for i := 0; i < left.NumRows(); i++ {
		var matches []int
		if key, ok := joinKey(leftKeys, i); ok {
			matches = buckets[key]
		}
		for _, j := range matches {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, j)
		}
		if len(matches) == 0 && spec.Type == JoinLeft {
			leftIdx = append(leftIdx, i)
			rightIdx = append(rightIdx, -1)
		}
	}

	columns := append([]*table.Column(nil), left.Take(leftIdx).Columns()...)

	rightKeySet := make(map[string]bool, len(spec.RightOn))
	for _, k := range spec.RightOn {
		rightKeySet[k] = true
	}
	for _, col := range right.Columns() {
		if rightKeySet[col.Name] {
			continue
		}
		values := make([]interface{}, len(rightIdx))
		for n, j := range rightIdx {
			if j >= 0 {
				values[n] = col.Values[j]
			}
		}
		columns = append(columns, &table.Column{Name: col.Name, Type: col.Type, Values: values})
	}

	result, err := table.New(columns...)
	if err != nil {
		return nil, &SchemaError{Op: "join", Reason: err.Error()}
	}
	return result, nil
}

// joinColumnNames checks the keys of a join and returns its output column names
func joinColumnNames(left, right []string, spec JoinSpec) ([]string, error) {
	if len(spec.LeftOn) == 0 || len(spec.LeftOn) != len(spec.RightOn) {
		return nil, &JoinError{
			Side:   "left",
			Key:    strings.Join(spec.LeftOn, ","),
			Reason: fmt.Sprintf("need the same non-zero number of keys on both sides, got %d and %d", len(spec.LeftOn), len(spec.RightOn)),
		}
	}

	leftSet := make(map[string]bool, len(left))
	for _, name := range left {
		leftSet[name] = true
	}
	rightSet := make(map[string]bool, len(right))
	for _, name := range right {
		rightSet[name] = true
	}

	for _, k := range spec.LeftOn {
		if !leftSet[k] {
			return nil, &JoinError{Side: "left", Key: k, Reason: "column not found"}
		}
	}
	rightKeySet := make(map[string]bool, len(spec.RightOn))
	for _, k := range spec.RightOn {
		if !rightSet[k] {
			return nil, &JoinError{Side: "right", Key: k, Reason: "column not found"}
		}
		rightKeySet[k] = true
	}

	names := append([]string(nil), left...)
	for _, name := range right {
		if rightKeySet[name] {
			continue
		}
		if leftSet[name] {
			return nil, &SchemaError{Op: "join", Column: name, Reason: "column exists in both tables"}
		}
		names = append(names, name)
	}
	return names, nil
}

// joinKey builds the hash key of a row. It reports false when any key is null.
func joinKey(keys []*table.Column, row int) (string, bool) {
	var b strings.Builder
	for i, col := range keys {
		v := col.Values[row]
		if v == nil {
			return "", false
		}
		if i > 0 {
			b.WriteString("\x00||\x00")
		}
		b.WriteString(fmt.Sprintf("%#v", v))
	}
	return b.String(), true
}
