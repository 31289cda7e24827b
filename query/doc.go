// Package query provides relational operations over tables and a lazy plan
// builder that defers them until a single terminal Collect call.
//
// The package implements:
//   - Projection with aliases and computed columns (Select)
//   - Predicates built from a closed set of expression nodes: column
//     references, literals, comparisons, AND/OR/NOT and substring tests
//   - Equi-joins (INNER, LEFT) on one or more key columns
//   - GROUP BY with COUNT, SUM, AVG, MIN, MAX and FIRST aggregates
//   - Stable multi-key sorting, LIMIT and OFFSET
//   - Scalar functions (LOWER, UPPER, TRIM, CONCAT, LENGTH)
//
// # Eager Operations
//
// Every operation consumes tables and returns a new table:
//
//	filtered, err := query.ApplyFilter(t, query.Gt(query.Col("views"), 1000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Lazy Plans
//
// A LazyFrame records operations without running them. Sources describe
// their columns up front, so Schema can report a missing column before any
// row is read:
//
//	lf := query.Scan(src).
//	    Select(query.Item(query.Lower(query.Col("name"))).As("artist_name"), query.Item(query.Col("id")).As("artist_id")).
//	    Filter(query.Ne(query.Col("artist_name"), ""))
//
//	if _, err := lf.Schema(); err != nil {
//	    log.Fatal(err)
//	}
//
//	t, err := lf.Collect(ctx)
//
// Collect first pushes projections down so scans only load the columns the
// plan uses, then evaluates the plan. The inputs of a join are evaluated
// concurrently; results are deterministic.
//
// # Grouping
//
// FIRST with an ordering keeps the value of the best row in each group:
//
//	best := lf.GroupBy("artist_name", "track_name").Agg(
//	    query.Item(query.First(query.Col("danceability"), query.Desc("danceability"))),
//	)
//
// Groups come out in the order their first row appears.
//
// # Errors
//
// Missing or ill-typed columns produce *SchemaError, bad join keys produce
// *JoinError. Both can be matched with errors.As.
package query
