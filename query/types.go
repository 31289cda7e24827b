package query

import (
	"fmt"
	"strings"

	"github.com/vegasq/danceable/table"
)

// Operator is a comparison or boolean operator
type Operator int

const (
	OpEqual        Operator = iota // =
	OpNotEqual                     // !=
	OpLess                         // <
	OpGreater                      // >
	OpLessEqual                    // <=
	OpGreaterEqual                 // >=
	OpAnd                          // AND
	OpOr                           // OR
)

var operatorNames = map[Operator]string{
	OpEqual:        "=",
	OpNotEqual:     "!=",
	OpLess:         "<",
	OpGreater:      ">",
	OpLessEqual:    "<=",
	OpGreaterEqual: ">=",
	OpAnd:          "AND",
	OpOr:           "OR",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// JoinType represents the type of join operation
type JoinType int

const (
	JoinInner JoinType = iota // rows with a match on both sides
	JoinLeft                  // all left rows, nulls for unmatched right columns
)

func (j JoinType) String() string {
	if j == JoinLeft {
		return "LEFT"
	}
	return "INNER"
}

// JoinSpec describes the keys of an equi-join
type JoinSpec struct {
	Type    JoinType
	LeftOn  []string
	RightOn []string
}

// OrderByItem represents a column to sort by
type OrderByItem struct {
	Column string // Column name or alias
	Desc   bool   // DESC vs ASC (default)
}

func (o OrderByItem) String() string {
	if o.Desc {
		return o.Column + " DESC"
	}
	return o.Column
}

// SelectItem represents a column or expression in a projection
type SelectItem struct {
	Expr  SelectExpression // Column, function, or expression
	Alias string           // Optional output name
}

// As returns a copy of the item with an output name
func (s SelectItem) As(alias string) SelectItem {
	s.Alias = alias
	return s
}

// Name returns the output column name of the item.
//
// Without an alias the name of the first referenced column is used, so
// LOWER(name) keeps the name "name".
func (s SelectItem) Name() string {
	if s.Alias != "" {
		return s.Alias
	}
	switch e := s.Expr.(type) {
	case *ColumnRef:
		return e.Column
	case *LiteralExpr:
		return "literal"
	case *AggregateExpr:
		if e.Arg != nil {
			return SelectItem{Expr: e.Arg}.Name()
		}
		return strings.ToLower(e.Function)
	case *FunctionCall:
		if cols := referencedColumns(e); len(cols) > 0 {
			return cols[0]
		}
		return strings.ToLower(e.Name)
	}
	return "col"
}

func (s SelectItem) String() string {
	if s.Alias != "" {
		return fmt.Sprintf("%s AS %s", s.Expr, s.Alias)
	}
	return fmt.Sprint(s.Expr)
}

// SelectExpression is an expression that produces a value for a row
type SelectExpression interface {
	EvaluateSelect(row table.Row) (interface{}, error)
}

// Expression is a boolean predicate over a row
type Expression interface {
	Evaluate(row table.Row) (bool, error)
}

// ColumnRef references a column (or * for all columns)
type ColumnRef struct {
	Column string
}

// LiteralExpr represents a literal value (number, string, bool)
type LiteralExpr struct {
	Value interface{}
}

// FunctionCall represents a scalar function invocation
type FunctionCall struct {
	Name string
	Args []SelectExpression
}

// AggregateExpr represents an aggregate function (COUNT, SUM, AVG, MIN, MAX, FIRST)
type AggregateExpr struct {
	Function string           // Upper-case function name
	Arg      SelectExpression // Argument expression (nil for COUNT(*))
	OrderBy  []OrderByItem    // Row order within the group, used by FIRST
}

// ComparisonExpr compares two value expressions
type ComparisonExpr struct {
	Left     SelectExpression
	Operator Operator
	Right    SelectExpression
}

// BinaryExpr represents a binary boolean expression (AND/OR)
type BinaryExpr struct {
	Left     Expression
	Operator Operator // OpAnd or OpOr
	Right    Expression
}

// NotExpr negates a predicate
type NotExpr struct {
	Expr Expression
}

// ContainsExpr tests a string expression for a literal substring
type ContainsExpr struct {
	Expr       SelectExpression
	Substring  string
	IgnoreCase bool
}

// BoolLiteral is a constant predicate
type BoolLiteral struct {
	Value bool
}

// EvaluateSelect evaluates a column reference
func (c *ColumnRef) EvaluateSelect(row table.Row) (interface{}, error) {
	value, exists := row.Value(c.Column)
	if !exists {
		return nil, &SchemaError{Op: "select", Column: c.Column, Reason: "column not found"}
	}
	return value, nil
}

func (c *ColumnRef) String() string { return c.Column }

// EvaluateSelect evaluates a literal expression
func (l *LiteralExpr) EvaluateSelect(row table.Row) (interface{}, error) {
	return l.Value, nil
}

func (l *LiteralExpr) String() string {
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(l.Value)
}

// EvaluateSelect evaluates a function call
func (f *FunctionCall) EvaluateSelect(row table.Row) (interface{}, error) {
	fn, exists := GetGlobalRegistry().Get(f.Name)
	if !exists {
		return nil, fmt.Errorf("unknown function: %s", f.Name)
	}

	args := make([]interface{}, len(f.Args))
	for i, arg := range f.Args {
		val, err := arg.EvaluateSelect(row)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	if err := checkArity(fn, len(args)); err != nil {
		return nil, err
	}
	return fn.Evaluate(args)
}

func (f *FunctionCall) String() string {
	args := make([]string, len(f.Args))
	for i, arg := range f.Args {
		args[i] = fmt.Sprint(arg)
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(args, ", "))
}

// EvaluateSelect for AggregateExpr is handled by the aggregation logic
func (a *AggregateExpr) EvaluateSelect(row table.Row) (interface{}, error) {
	return nil, fmt.Errorf("aggregate function %s cannot be evaluated on individual rows", a.Function)
}

func (a *AggregateExpr) String() string {
	arg := "*"
	if a.Arg != nil {
		arg = fmt.Sprint(a.Arg)
	}
	if len(a.OrderBy) == 0 {
		return fmt.Sprintf("%s(%s)", a.Function, arg)
	}
	order := make([]string, len(a.OrderBy))
	for i, o := range a.OrderBy {
		order[i] = o.String()
	}
	return fmt.Sprintf("%s(%s ORDER BY %s)", a.Function, arg, strings.Join(order, ", "))
}

// Evaluate evaluates a comparison expression
func (c *ComparisonExpr) Evaluate(row table.Row) (bool, error) {
	left, err := c.Left.EvaluateSelect(row)
	if err != nil {
		return false, err
	}
	right, err := c.Right.EvaluateSelect(row)
	if err != nil {
		return false, err
	}
	return compare(left, c.Operator, right)
}

func (c *ComparisonExpr) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Operator, c.Right)
}

// Evaluate evaluates a binary expression. The right side is skipped when
// the left side already decides the result.
func (b *BinaryExpr) Evaluate(row table.Row) (bool, error) {
	left, err := b.Left.Evaluate(row)
	if err != nil {
		return false, err
	}

	switch b.Operator {
	case OpAnd:
		if !left {
			return false, nil
		}
	case OpOr:
		if left {
			return true, nil
		}
	default:
		return false, fmt.Errorf("unsupported binary operator: %v", b.Operator)
	}

	return b.Right.Evaluate(row)
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator, b.Right)
}

// Evaluate evaluates a negation
func (n *NotExpr) Evaluate(row table.Row) (bool, error) {
	v, err := n.Expr.Evaluate(row)
	if err != nil {
		return false, err
	}
	return !v, nil
}

func (n *NotExpr) String() string {
	return fmt.Sprintf("NOT %s", n.Expr)
}

// Evaluate evaluates a substring test. Null values never match.
func (c *ContainsExpr) Evaluate(row table.Row) (bool, error) {
	value, err := c.Expr.EvaluateSelect(row)
	if err != nil {
		return false, err
	}
	if value == nil {
		return false, nil
	}

	str, ok := value.(string)
	if !ok {
		return false, &SchemaError{Op: "contains", Column: fmt.Sprint(c.Expr), Reason: fmt.Sprintf("requires a string, got %T", value)}
	}

	if c.IgnoreCase {
		return strings.Contains(strings.ToLower(str), strings.ToLower(c.Substring)), nil
	}
	return strings.Contains(str, c.Substring), nil
}

func (c *ContainsExpr) String() string {
	if c.IgnoreCase {
		return fmt.Sprintf("CONTAINS(LOWER(%s), %q)", c.Expr, strings.ToLower(c.Substring))
	}
	return fmt.Sprintf("CONTAINS(%s, %q)", c.Expr, c.Substring)
}

// Evaluate returns the constant value
func (b *BoolLiteral) Evaluate(row table.Row) (bool, error) {
	return b.Value, nil
}

func (b *BoolLiteral) String() string {
	if b.Value {
		return "TRUE"
	}
	return "FALSE"
}
