// Package services defines shared utilities consumed by the ingestion
// workflow, the persistence adapters, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp contribution IDs, operation names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (invalid reference vs not found vs stale write) without string
//     matching.
//
// Use these helpers when wiring new workflow logic so error handling and
// observability stay uniform across the pipeline.
package services
