// Package excelexport turns in-memory rows into xlsx workbooks.
//
// Rows are mapped to cells through Column definitions, which pair a header
// label with an extractor. When no columns are given, InferColumns derives
// them from the shape of the first row: struct fields in declaration order,
// or the keys of a dynamic Bag / map row.
//
// A generation call owns its workbook from start to finish and shares no
// state with other calls, so independent calls may run concurrently.
package excelexport
