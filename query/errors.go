package query

import "fmt"

// SchemaError reports a column that is missing or has a type the operation
// cannot handle
type SchemaError struct {
	Op     string // operation that failed (select, filter, sort, ...)
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: column %q: %s", e.Op, e.Column, e.Reason)
}

// JoinError reports a join key that is absent from one side or whose
// types do not match
type JoinError struct {
	Side   string // "left" or "right"
	Key    string
	Reason string
}

func (e *JoinError) Error() string {
	return fmt.Sprintf("join: %s key %q: %s", e.Side, e.Key, e.Reason)
}
