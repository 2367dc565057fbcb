// Package record defines the dynamic value model shared by the query engine,
// the output formatters and the table providers.
//
// A Value is a tagged variant over null, bool, int, float, string, list and
// map. A Row is an insertion-ordered string-to-Value map; key order matters
// because formatters derive headers from it and projection builds rows in
// SELECT-list order. Nested values are addressed with dot-separated field
// paths resolved by Resolve.
//
// Values are immutable once constructed: the engine never mutates provider
// data, it only builds new Rows.
package record
