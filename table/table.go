// Package table provides the immutable, column-oriented Table that every
// query operation consumes and produces.
//
// A Table is an ordered list of named columns of equal length. Cells are
// stored as interface{} values of a small set of Go types (string, int64,
// float64, bool) with nil marking a null cell. Operations never modify a
// Table in place; they build a new one.
package table

import (
	"fmt"
	"strings"
)

// Type is the logical type of a column
type Type int

const (
	TypeNull   Type = iota // all cells are null
	TypeString             // string
	TypeInt                // int64
	TypeFloat              // float64
	TypeBool               // bool
)

// String returns the lower-case type name
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Column is a named, homogeneous sequence of values
type Column struct {
	Name   string
	Type   Type
	Values []interface{}
}

// NewColumn creates a column and infers its type from the values.
// Values of mixed numeric types are normalized to float64.
func NewColumn(name string, values []interface{}) *Column {
	typ := InferType(values)
	if typ == TypeFloat {
		for i, v := range values {
			if n, ok := v.(int64); ok {
				values[i] = float64(n)
			}
		}
	}
	return &Column{Name: name, Type: typ, Values: values}
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	return len(c.Values)
}

// Rename returns a copy of the column header with a new name; the values are shared
func (c *Column) Rename(name string) *Column {
	return &Column{Name: name, Type: c.Type, Values: c.Values}
}

// Table is an immutable ordered set of equal-length columns
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates a table from columns.
//
// Returns an error if two columns share a name or if the columns differ in length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: columns,
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if _, exists := t.index[col.Name]; exists {
			return nil, fmt.Errorf("duplicate column %q", col.Name)
		}
		t.index[col.Name] = i
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name, col.Len(), t.rows)
		}
	}
	return t, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Empty returns a table with the given column names and no rows
func Empty(names ...string) *Table {
	cols := make([]*Column, len(names))
	for i, name := range names {
		cols[i] = &Column{Name: name, Type: TypeNull, Values: []interface{}{}}
	}
	return MustNew(cols...)
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	return t.rows
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Columns returns the columns in table order. Callers must not modify them.
func (t *Table) Columns() []*Column {
	return t.columns
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the table has a column with the given name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a view of row i
func (t *Table) Row(i int) Row {
	return Row{table: t, index: i}
}

// Take builds a new table from the rows at the given indices, in that order
func (t *Table) Take(indices []int) *Table {
	cols := make([]*Column, len(t.columns))
	for c, col := range t.columns {
		values := make([]interface{}, len(indices))
		for i, idx := range indices {
			values[i] = col.Values[idx]
		}
		cols[c] = &Column{Name: col.Name, Type: col.Type, Values: values}
	}
	return &Table{columns: cols, index: t.index, rows: len(indices)}
}

// Project returns a table holding only the named columns, in the given order
func (t *Table) Project(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// String renders a short description such as "3x2 [id:int name:string]"
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d [", t.rows, len(t.columns))
	for i, col := range t.columns {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s:%s", col.Name, col.Type)
	}
	b.WriteByte(']')
	return b.String()
}

// Row is a lightweight view of a single table row
type Row struct {
	table *Table
	index int
}

// Index returns the row position within its table
func (r Row) Index() int {
	return r.index
}

// Value returns the value of the named column for this row
func (r Row) Value(name string) (interface{}, bool) {
	i, ok := r.table.index[name]
	if !ok {
		return nil, false
	}
	return r.table.columns[i].Values[r.index], true
}

// Values returns the row's values in column order
func (r Row) Values() []interface{} {
	values := make([]interface{}, len(r.table.columns))
	for i, col := range r.table.columns {
		values[i] = col.Values[r.index]
	}
	return values
}

// Map returns the row as a column name to value map
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.table.columns))
	for _, col := range r.table.columns {
		m[col.Name] = col.Values[r.index]
	}
	return m
}
