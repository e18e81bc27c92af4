package logging

import (
	"context"
	"log/slog"

	"discdb/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldContributionID is the key for internal contribution identifiers.
	FieldContributionID = "contribution_id"
	// FieldExternalID is the key for encoded external identifiers.
	FieldExternalID = "external_id"
	// FieldDiscIndex is the key for the 1-based disc position within a contribution.
	FieldDiscIndex = "disc_index"
	// FieldOperation is the key for workflow operation names.
	FieldOperation = "operation"
	// FieldFingerprint is the key for disc content fingerprints.
	FieldFingerprint = "fingerprint"
	// FieldStatus is the key for contribution statuses.
	FieldStatus = "status"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType names the kind of event for log filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ContributionIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldContributionID, id))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
