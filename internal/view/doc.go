// Package view defines the data model shared by the table engines.
//
// A Query describes what the user wants to see (page, page size, sort,
// search term). Engines turn a Query into a Result: the rows visible on the
// requested page plus the total number of rows matching the search.
//
// Rows are opaque values. Columns address cells through dotted key paths
// resolved by package fieldpath, so a Row can be a map, a struct, or any
// nesting of the two.
package view
