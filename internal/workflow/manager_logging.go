package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"discdb/internal/logging"
	"discdb/internal/services"
)

// opContext tags ctx with the contribution, operation and a fresh request
// id unless the caller already supplied one, and returns a matching logger.
func (m *Manager) opContext(ctx context.Context, op string, id int64) (context.Context, *slog.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	if id > 0 {
		ctx = services.WithContributionID(ctx, id)
	}
	ctx = services.WithOperation(ctx, op)
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}
	base := m.logger
	if base == nil {
		base = logging.NewNop()
	}
	return ctx, logging.WithContext(ctx, base)
}
