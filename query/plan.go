package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/vegasq/danceable/table"
)

// Source is a tabular input that can describe its columns without loading
// any rows
type Source interface {
	// Name identifies the source in plans and errors
	Name() string
	// Columns returns the column names the source provides
	Columns() []string
	// Load reads the source. A non-nil columns list restricts the result to
	// those columns, in source order.
	Load(ctx context.Context, columns []string) (*table.Table, error)
}

// PlanOp is the kind of a plan node
type PlanOp int

const (
	PlanScan PlanOp = iota
	PlanSelect
	PlanFilter
	PlanJoin
	PlanGroupBy
	PlanSort
	PlanLimit
)

// Plan is a node of a deferred operation graph
type Plan struct {
	Op    PlanOp
	Input *Plan // input of every node except scans
	Right *Plan // right input of joins

	Source  Source   // PlanScan
	Columns []string // PlanScan projection, nil means all columns

	SelectList []SelectItem  // PlanSelect
	Filter     Expression    // PlanFilter
	Join       JoinSpec      // PlanJoin
	GroupBy    []string      // PlanGroupBy
	Aggregates []SelectItem  // PlanGroupBy
	OrderBy    []OrderByItem // PlanSort
	Limit      int64         // PlanLimit, negative means no limit
	Offset     int64         // PlanLimit
}

// LazyFrame builds a plan. Every method returns a new frame and leaves the
// receiver unchanged; nothing is read or computed until Collect.
type LazyFrame struct {
	plan *Plan
}

// Scan starts a plan from a source
func Scan(src Source) *LazyFrame {
	return &LazyFrame{plan: &Plan{Op: PlanScan, Source: src}}
}

// FromTable starts a plan from an in-memory table
func FromTable(name string, t *table.Table) *LazyFrame {
	return Scan(NewTableSource(name, t))
}

func (lf *LazyFrame) then(p *Plan) *LazyFrame {
	p.Input = lf.plan
	return &LazyFrame{plan: p}
}

// Select projects the frame onto the given items
func (lf *LazyFrame) Select(items ...SelectItem) *LazyFrame {
	return lf.then(&Plan{Op: PlanSelect, SelectList: items})
}

// Filter keeps the rows for which expr is true
func (lf *LazyFrame) Filter(expr Expression) *LazyFrame {
	return lf.then(&Plan{Op: PlanFilter, Filter: expr})
}

// Join joins the frame with another frame
func (lf *LazyFrame) Join(other *LazyFrame, spec JoinSpec) *LazyFrame {
	p := lf.then(&Plan{Op: PlanJoin, Join: spec})
	p.plan.Right = other.plan
	return p
}

// InnerJoin joins on key columns that have the same names on both sides
func (lf *LazyFrame) InnerJoin(other *LazyFrame, on ...string) *LazyFrame {
	return lf.Join(other, JoinSpec{Type: JoinInner, LeftOn: on, RightOn: on})
}

// GroupBy starts a grouped aggregation
func (lf *LazyFrame) GroupBy(keys ...string) *GroupedFrame {
	return &GroupedFrame{input: lf, keys: keys}
}

// Sort orders rows by the given keys (stable)
func (lf *LazyFrame) Sort(items ...OrderByItem) *LazyFrame {
	return lf.then(&Plan{Op: PlanSort, OrderBy: items})
}

// Limit keeps at most n rows after skipping offset rows
func (lf *LazyFrame) Limit(n, offset int64) *LazyFrame {
	return lf.then(&Plan{Op: PlanLimit, Limit: n, Offset: offset})
}

// Plan returns the root of the plan
func (lf *LazyFrame) Plan() *Plan {
	return lf.plan
}

// Schema resolves the output column names without reading any data.
//
// Missing columns are reported as SchemaError and missing join keys as
// JoinError.
func (lf *LazyFrame) Schema() ([]string, error) {
	return resolveSchema(lf.plan)
}

// Explain renders the plan as an indented tree, root first
func (lf *LazyFrame) Explain() string {
	var b strings.Builder
	explain(&b, lf.plan, 0)
	return b.String()
}

// Collect optimizes and executes the plan and returns the materialized table
func (lf *LazyFrame) Collect(ctx context.Context) (*table.Table, error) {
	if _, err := lf.Schema(); err != nil {
		return nil, err
	}
	optimized, err := pushDownProjections(lf.plan, nil)
	if err != nil {
		return nil, err
	}
	return execute(ctx, optimized)
}

// GroupedFrame is a frame waiting for its aggregates
type GroupedFrame struct {
	input *LazyFrame
	keys  []string
}

// Agg completes the grouping. The output holds the key columns followed by
// the aggregates.
func (g *GroupedFrame) Agg(aggregates ...SelectItem) *LazyFrame {
	return g.input.then(&Plan{Op: PlanGroupBy, GroupBy: g.keys, Aggregates: aggregates})
}

func resolveSchema(p *Plan) ([]string, error) {
	if p.Op == PlanScan {
		if p.Columns != nil {
			return p.Columns, nil
		}
		return p.Source.Columns(), nil
	}

	input, err := resolveSchema(p.Input)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(input))
	for _, name := range input {
		have[name] = true
	}
	requireAll := func(op string, names []string) error {
		for _, name := range names {
			if !have[name] {
				return &SchemaError{Op: op, Column: name, Reason: fmt.Sprintf("column not found (available: %s)", strings.Join(input, ", "))}
			}
		}
		return nil
	}

	switch p.Op {
	case PlanSelect:
		if HasAggregateFunction(p.SelectList) {
			return nil, &SchemaError{Op: "select", Reason: "aggregate functions need GroupBy(...).Agg"}
		}
		names := make([]string, 0, len(p.SelectList))
		for _, item := range p.SelectList {
			if isStar(item) {
				names = append(names, input...)
				continue
			}
			if err := requireAll("select", referencedColumns(item.Expr)); err != nil {
				return nil, err
			}
			names = append(names, item.Name())
		}
		if err := checkUnique("select", names); err != nil {
			return nil, err
		}
		return names, nil

	case PlanFilter:
		if err := requireAll("filter", referencedColumns(p.Filter)); err != nil {
			return nil, err
		}
		return input, nil

	case PlanJoin:
		right, err := resolveSchema(p.Right)
		if err != nil {
			return nil, err
		}
		return joinColumnNames(input, right, p.Join)

	case PlanGroupBy:
		if err := requireAll("group by", p.GroupBy); err != nil {
			return nil, err
		}
		if err := validateAggregates(p.Aggregates, p.GroupBy); err != nil {
			return nil, err
		}
		names := append([]string(nil), p.GroupBy...)
		for _, item := range p.Aggregates {
			if err := requireAll("aggregate", referencedColumns(item.Expr)); err != nil {
				return nil, err
			}
			if _, ok := item.Expr.(*AggregateExpr); ok {
				names = append(names, item.Name())
			}
		}
		if err := checkUnique("group by", names); err != nil {
			return nil, err
		}
		return names, nil

	case PlanSort:
		cols := make([]string, len(p.OrderBy))
		for i, o := range p.OrderBy {
			cols[i] = o.Column
		}
		if err := requireAll("sort", cols); err != nil {
			return nil, err
		}
		return input, nil

	case PlanLimit:
		return input, nil
	}

	return nil, fmt.Errorf("unknown plan operation: %d", p.Op)
}

func checkUnique(op string, names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return &SchemaError{Op: op, Column: name, Reason: "duplicate output column"}
		}
		seen[name] = true
	}
	return nil
}

func isStar(item SelectItem) bool {
	ref, ok := item.Expr.(*ColumnRef)
	return ok && ref.Column == "*"
}

// referencedColumns lists the input columns an expression reads, in first-use order
func referencedColumns(expr interface{}) []string {
	var cols []string
	seen := make(map[string]bool)
	var walk func(e interface{})
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			cols = append(cols, name)
		}
	}
	walk = func(e interface{}) {
		switch v := e.(type) {
		case *ColumnRef:
			if v.Column != "*" {
				add(v.Column)
			}
		case *FunctionCall:
			for _, arg := range v.Args {
				walk(arg)
			}
		case *AggregateExpr:
			if v.Arg != nil {
				walk(v.Arg)
			}
			for _, o := range v.OrderBy {
				add(o.Column)
			}
		case *ComparisonExpr:
			walk(v.Left)
			walk(v.Right)
		case *BinaryExpr:
			walk(v.Left)
			walk(v.Right)
		case *NotExpr:
			walk(v.Expr)
		case *ContainsExpr:
			walk(v.Expr)
		}
	}
	walk(expr)
	return cols
}

func explain(b *strings.Builder, p *Plan, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	switch p.Op {
	case PlanScan:
		fmt.Fprintf(b, "SCAN %s", p.Source.Name())
		if p.Columns != nil {
			fmt.Fprintf(b, " [%s]", strings.Join(p.Columns, ", "))
		}
	case PlanSelect:
		items := make([]string, len(p.SelectList))
		for i, item := range p.SelectList {
			items[i] = item.String()
		}
		fmt.Fprintf(b, "SELECT %s", strings.Join(items, ", "))
	case PlanFilter:
		fmt.Fprintf(b, "FILTER %s", p.Filter)
	case PlanJoin:
		fmt.Fprintf(b, "%s JOIN ON [%s] = [%s]", p.Join.Type, strings.Join(p.Join.LeftOn, ", "), strings.Join(p.Join.RightOn, ", "))
	case PlanGroupBy:
		items := make([]string, len(p.Aggregates))
		for i, item := range p.Aggregates {
			items[i] = item.String()
		}
		fmt.Fprintf(b, "GROUP BY [%s] AGG %s", strings.Join(p.GroupBy, ", "), strings.Join(items, ", "))
	case PlanSort:
		items := make([]string, len(p.OrderBy))
		for i, o := range p.OrderBy {
			items[i] = o.String()
		}
		fmt.Fprintf(b, "SORT %s", strings.Join(items, ", "))
	case PlanLimit:
		fmt.Fprintf(b, "LIMIT %d OFFSET %d", p.Limit, p.Offset)
	}
	b.WriteByte('\n')

	if p.Input != nil {
		explain(b, p.Input, depth+1)
	}
	if p.Right != nil {
		explain(b, p.Right, depth+1)
	}
}

// NewTableSource serves an in-memory table as a Source
func NewTableSource(name string, t *table.Table) Source {
	return &tableSource{name: name, table: t}
}

type tableSource struct {
	name  string
	table *table.Table
}

func (s *tableSource) Name() string      { return s.name }
func (s *tableSource) Columns() []string { return s.table.ColumnNames() }

func (s *tableSource) Load(ctx context.Context, columns []string) (*table.Table, error) {
	if columns == nil {
		return s.table, nil
	}
	return s.table.Project(columns...)
}
