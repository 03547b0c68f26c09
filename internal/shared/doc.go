// Package shared holds cross-cutting helpers that belong to no single
// domain layer. Today that is the testutil subpackage: in-memory workbook
// fixtures and a log-capturing slog handler used by tests across packages.
package shared
