// Package query implements a SQL-subset engine over named tables of
// semi-structured rows supplied by a TableProvider.
//
// The supported grammar is:
//
//	SELECT [DISTINCT] field [AS alias], FUNC(field), ...
//	FROM table
//	[WHERE cond (AND|OR cond)*]
//	[GROUP BY field, ...]
//	[ORDER BY field [ASC|DESC], ...]
//	[LIMIT n]
//
// with FUNC one of COUNT, SUM, AVG, MIN, MAX, STDDEV, VARIANCE. Field paths
// may be dotted to address nested map values.
//
// WHERE conditions combine strictly left to right: AND and OR have equal
// precedence and there is no parenthesized grouping. The running boolean
// result folds with each combinator in turn, so
//
//	a = 1 OR b = 2 AND c = 3
//
// evaluates as ((a = 1 OR b = 2) AND c = 3). Callers depend on this; do not
// change it to standard SQL precedence.
//
// Execution is single-shot and read-only: Execute parses the query, fetches
// a fresh row snapshot from the provider, runs
// filter/group/distinct/order/limit/project and formats the result. No
// state survives the call, so concurrent use is safe as long as the
// provider is.
//
// Example:
//
//	provider := tables.NewMemory()
//	provider.Add("objects", rows)
//	resp := query.Execute("SELECT name FROM objects WHERE type = 'MESH'", 0, "json", provider)
//	if resp.Status == query.StatusError {
//	    log.Fatal(resp.Error)
//	}
package query
