package query

// Col references a column by name
func Col(name string) *ColumnRef {
	return &ColumnRef{Column: name}
}

// Lit wraps a literal value. Go int types are widened to int64 and float32
// to float64 so they compare like table cells.
func Lit(v interface{}) *LiteralExpr {
	switch val := v.(type) {
	case int:
		v = int64(val)
	case int32:
		v = int64(val)
	case float32:
		v = float64(val)
	}
	return &LiteralExpr{Value: v}
}

// Item wraps an expression as a projection item
func Item(expr SelectExpression) SelectItem {
	return SelectItem{Expr: expr}
}

// Cols builds projection items for plain column references
func Cols(names ...string) []SelectItem {
	items := make([]SelectItem, len(names))
	for i, name := range names {
		items[i] = SelectItem{Expr: Col(name)}
	}
	return items
}

// Call builds a function call expression
func Call(name string, args ...SelectExpression) *FunctionCall {
	return &FunctionCall{Name: name, Args: args}
}

// Lower lower-cases a string expression
func Lower(expr SelectExpression) *FunctionCall {
	return Call("LOWER", expr)
}

// Concat concatenates the string forms of its arguments
func Concat(args ...SelectExpression) *FunctionCall {
	return Call("CONCAT", args...)
}

func cmp(left SelectExpression, op Operator, right interface{}) *ComparisonExpr {
	r, ok := right.(SelectExpression)
	if !ok {
		r = Lit(right)
	}
	return &ComparisonExpr{Left: left, Operator: op, Right: r}
}

// Eq is left = right. Right may be an expression or a plain value.
func Eq(left SelectExpression, right interface{}) *ComparisonExpr { return cmp(left, OpEqual, right) }

// Ne is left != right
func Ne(left SelectExpression, right interface{}) *ComparisonExpr {
	return cmp(left, OpNotEqual, right)
}

// Gt is left > right
func Gt(left SelectExpression, right interface{}) *ComparisonExpr { return cmp(left, OpGreater, right) }

// Le is left <= right
func Le(left SelectExpression, right interface{}) *ComparisonExpr {
	return cmp(left, OpLessEqual, right)
}

// Ge is left >= right
func Ge(left SelectExpression, right interface{}) *ComparisonExpr {
	return cmp(left, OpGreaterEqual, right)
}

// Between is lower <= expr <= upper, both bounds inclusive
func Between(expr SelectExpression, lower, upper interface{}) Expression {
	return And(Ge(expr, lower), Le(expr, upper))
}

// Not negates a predicate
func Not(expr Expression) *NotExpr {
	return &NotExpr{Expr: expr}
}

// Contains matches a literal substring
func Contains(expr SelectExpression, substring string, ignoreCase bool) *ContainsExpr {
	return &ContainsExpr{Expr: expr, Substring: substring, IgnoreCase: ignoreCase}
}

// And folds predicates with AND. An empty list is TRUE.
func And(exprs ...Expression) Expression {
	return fold(OpAnd, true, exprs)
}

// Or folds predicates with OR. An empty list is FALSE.
func Or(exprs ...Expression) Expression {
	return fold(OpOr, false, exprs)
}

func fold(op Operator, identity bool, exprs []Expression) Expression {
	if len(exprs) == 0 {
		return &BoolLiteral{Value: identity}
	}
	result := exprs[0]
	for _, e := range exprs[1:] {
		result = &BinaryExpr{Left: result, Operator: op, Right: e}
	}
	return result
}

// Count counts rows (arg nil) or non-null values
func Count(arg SelectExpression) *AggregateExpr {
	return &AggregateExpr{Function: "COUNT", Arg: arg}
}

// Sum adds numeric values
func Sum(arg SelectExpression) *AggregateExpr {
	return &AggregateExpr{Function: "SUM", Arg: arg}
}

// Avg averages numeric values
func Avg(arg SelectExpression) *AggregateExpr {
	return &AggregateExpr{Function: "AVG", Arg: arg}
}

// Min takes the smallest value
func Min(arg SelectExpression) *AggregateExpr {
	return &AggregateExpr{Function: "MIN", Arg: arg}
}

// Max takes the largest value
func Max(arg SelectExpression) *AggregateExpr {
	return &AggregateExpr{Function: "MAX", Arg: arg}
}

// First takes the value of the first row of the group after ordering it.
// The ordering is stable so ties keep input order.
func First(arg SelectExpression, orderBy ...OrderByItem) *AggregateExpr {
	return &AggregateExpr{Function: "FIRST", Arg: arg, OrderBy: orderBy}
}

// Asc orders by a column ascending
func Asc(column string) OrderByItem {
	return OrderByItem{Column: column}
}

// Desc orders by a column descending
func Desc(column string) OrderByItem {
	return OrderByItem{Column: column, Desc: true}
}
