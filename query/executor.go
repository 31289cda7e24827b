package query

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/vegasq/danceable/table"
)

// execute evaluates a plan bottom-up. The two inputs of a join have no
// dependency on each other and are evaluated concurrently.
func execute(ctx context.Context, p *Plan) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.Op == PlanScan {
		t, err := p.Source.Load(ctx, p.Columns)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p.Source.Name(), err)
		}
		return t, nil
	}

	if p.Op == PlanJoin {
		var left, right *table.Table
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			left, err = execute(gctx, p.Input)
			return err
		})
		g.Go(func() error {
			var err error
			right, err = execute(gctx, p.Right)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return ApplyJoin(left, right, p.Join)
	}

	input, err := execute(ctx, p.Input)
	if err != nil {
		return nil, err
	}

	switch p.Op {
	case PlanSelect:
		return ApplySelectList(input, p.SelectList)
	case PlanFilter:
		return ApplyFilter(input, p.Filter)
	case PlanGroupBy:
		return ApplyGroupByAndAggregate(input, p.GroupBy, p.Aggregates)
	case PlanSort:
		return ApplyOrderBy(input, p.OrderBy)
	case PlanLimit:
		return ApplyLimitOffset(input, p.Limit, p.Offset), nil
	default:
		return nil, fmt.Errorf("unknown plan operation: %d", p.Op)
	}
}

// pushDownProjections returns a copy of the plan in which every scan reads
// only the columns the rest of the plan uses. A nil required list means the
// caller needs every column of p.
func pushDownProjections(p *Plan, required []string) (*Plan, error) {
	out := *p

	switch p.Op {
	case PlanScan:
		// A scan needs at least one column to keep its row count
		if cols := intersect(sourceColumns(p), required); required != nil && len(cols) > 0 {
			out.Columns = cols
		}
		return &out, nil

	case PlanSelect:
		need := []string{}
		for _, item := range p.SelectList {
			if isStar(item) {
				return withInput(&out, nil)
			}
			need = union(need, referencedColumns(item.Expr))
		}
		return withInput(&out, need)

	case PlanFilter:
		if required == nil {
			return withInput(&out, nil)
		}
		return withInput(&out, union(required, referencedColumns(p.Filter)))

	case PlanSort:
		if required == nil {
			return withInput(&out, nil)
		}
		cols := make([]string, len(p.OrderBy))
		for i, o := range p.OrderBy {
			cols[i] = o.Column
		}
		return withInput(&out, union(required, cols))

	case PlanLimit:
		return withInput(&out, required)

	case PlanGroupBy:
		need := append([]string(nil), p.GroupBy...)
		for _, item := range p.Aggregates {
			need = union(need, referencedColumns(item.Expr))
		}
		return withInput(&out, need)

	case PlanJoin:
		leftCols, err := resolveSchema(p.Input)
		if err != nil {
			return nil, err
		}
		rightCols, err := resolveSchema(p.Right)
		if err != nil {
			return nil, err
		}
		var leftNeed, rightNeed []string
		if required != nil {
			leftNeed = union(intersect(leftCols, required), p.Join.LeftOn)
			rightNeed = union(intersect(rightCols, required), p.Join.RightOn)
		}
		if out.Input, err = pushDownProjections(p.Input, leftNeed); err != nil {
			return nil, err
		}
		if out.Right, err = pushDownProjections(p.Right, rightNeed); err != nil {
			return nil, err
		}
		return &out, nil
	}

	return nil, fmt.Errorf("unknown plan operation: %d", p.Op)
}

func withInput(p *Plan, required []string) (*Plan, error) {
	input, err := pushDownProjections(p.Input, required)
	if err != nil {
		return nil, err
	}
	p.Input = input
	return p, nil
}

func sourceColumns(p *Plan) []string {
	if p.Columns != nil {
		return p.Columns
	}
	return p.Source.Columns()
}

// intersect keeps the names of all that appear in want, in the order of all
func intersect(all, want []string) []string {
	set := make(map[string]bool, len(want))
	for _, w := range want {
		set[w] = true
	}
	out := make([]string, 0, len(want))
	for _, a := range all {
		if set[a] {
			out = append(out, a)
		}
	}
	return out
}

// union appends the names of b missing from a
func union(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, x := range a {
		set[x] = true
	}
	out := append([]string(nil), a...)
	for _, x := range b {
		if !set[x] {
			set[x] = true
			out = append(out, x)
		}
	}
	return out
}
