// Package core provides the business logic for splitting multi-table CSV
// exports into typed tables.
//
// This package is independent of any UI or transport layer. It is used by
// the web handlers, the CLI and tests without modification.
//
// # Segmentation
//
// Some systems export several tables into one CSV file: each table starts
// with its own header row and ends with three empty lines. [ReadTables]
// (or [Segment] over any [RowSource]) splits such a stream back into a
// [TableSet]:
//
//	tables, err := core.ReadTables(f, core.DefaultReaderOptions())
//
// Segmentation never rejects an oddly shaped file. Short runs of empty
// lines are dropped, a file that ends without a terminator still yields its
// last table, and only a failure of the underlying reader is an error
// ([StreamError]).
//
// # Projection
//
// A [Shape] names the fields a caller wants and the header spellings each
// one accepts. [Project] binds a table's header to a shape by exact name and
// converts every row:
//
//	records, err := core.Project(tables[0], accountShape)
//
// Errors are typed: [FieldMissingError] when a required field has no
// column, [FieldTypeError] when a numeric cell does not parse.
//
// # Shapes
//
// Shapes are registered at init time using [RegisterShape]; see package
// shapes for the Account and Transaction layouts.
//
// # Error Handling
//
// Errors are mapped to user-facing messages with codes using [MapError].
package core
