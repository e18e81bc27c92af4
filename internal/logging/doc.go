// Package logging assembles structured slog loggers and formatting helpers used
// across discdb.
//
// It owns the configurable console/JSON handlers, writes an optional rotating
// log file through lumberjack, and exposes context-aware helpers so workflow
// code automatically tags log lines with contribution ids, operation names and
// correlation ids. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
