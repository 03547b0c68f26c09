// Package dataprocessing extracts measurement records from instrument
// workbooks.
//
// The extractor is driven entirely by a layout.Layout schema: it resolves
// each declared cell, coerces the value by kind, and scans the data region
// until the first blank sequence cell. Extraction is best effort per cell; a
// cell that cannot be coerced becomes nil and is logged, never an error.
// Only a missing worksheet aborts the run, with ErrSheetNotFound.
//
// Typical use:
//
//	ex := dataprocessing.NewExtractor(layout.DefaultBET(), logger)
//	rec, err := ex.Extract(workbookReader)
//
// The source workbook is never modified.
package dataprocessing
