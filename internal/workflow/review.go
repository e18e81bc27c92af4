package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"discdb/internal/contribution"
	"discdb/internal/identity"
	"discdb/internal/logging"
	"discdb/internal/services"
)

// Validate runs the validation pipeline without changing anything.
func (m *Manager) Validate(ctx context.Context, externalID string) (*ValidationResult, error) {
	view, err := m.Get(ctx, externalID)
	if err != nil {
		return nil, err
	}
	report := m.pipeline.Run(view.Contribution)
	return &ValidationResult{View: *view, Report: report}, nil
}

// Submit moves a pending contribution to review when every blocking rule
// passes. A refusal is a *contribution.StateTransitionError carrying the
// failing rule messages.
func (m *Manager) Submit(ctx context.Context, externalID string) (*View, error) {
	return m.review(ctx, "submit", externalID, contribution.ActionSubmit, contribution.RoleOwner)
}

// Decide records an administrator decision: approve, request_changes or
// reject. The caller's role comes from the context and defaults to owner,
// which the state machine refuses.
func (m *Manager) Decide(ctx context.Context, externalID string, action contribution.Action) (*View, error) {
	switch action {
	case contribution.ActionApprove, contribution.ActionRequestChanges, contribution.ActionReject:
	default:
		return nil, services.Wrap(services.ErrValidation, "workflow", "decide", fmt.Sprintf("%q is not a review decision", action), nil)
	}
	return m.review(ctx, "decide", externalID, action, contribution.RoleOwner)
}

// Import marks an approved contribution as imported into the catalog. Every
// disc's items must still reproduce its recorded fingerprint.
func (m *Manager) Import(ctx context.Context, externalID string) (*View, error) {
	return m.review(ctx, "import", externalID, contribution.ActionImport, contribution.RoleSystem)
}

func (m *Manager) review(ctx context.Context, op, externalID string, action contribution.Action, role contribution.Role) (*View, error) {
	var actingRole contribution.Role
	updated, err := m.mutate(ctx, op, externalID, role,
		func(ctx context.Context, c *contribution.Contribution, who identity.Caller, logger *slog.Logger) (*contribution.Contribution, error) {
			actingRole = who.Role
			if action == contribution.ActionSubmit {
				if err := checkOwner(c, who, action); err != nil {
					return nil, err
				}
				if err := m.attachDuplicates(ctx, c); err != nil {
					return nil, err
				}
			}
			if action == contribution.ActionImport {
				if err := m.verifyFingerprints(c); err != nil {
					return nil, err
				}
			}
			next, err := m.machine.Transition(c, action, who.Role)
			if err != nil {
				return nil, err
			}
			logger.Info("contribution status changed",
				logging.String(logging.FieldEventType, "status_changed"),
				logging.String("action", string(action)),
				logging.String("actor", who.UserID),
				logging.String("role", string(who.Role)),
				logging.String("from", string(c.Status)),
				logging.String(logging.FieldStatus, string(next.Status)))
			return next, nil
		})
	if err != nil {
		return nil, err
	}
	return m.view(ctx, updated, actingRole)
}

// verifyFingerprints checks that stored items still hash to each disc's
// fingerprint.
func (m *Manager) verifyFingerprints(c *contribution.Contribution) error {
	for _, d := range c.Discs {
		if d.Fingerprint == "" {
			continue
		}
		if got := m.hasher.FromTuples(tuplesFromItems(d.Items)); got != d.Fingerprint {
			return services.Wrap(services.ErrValidation, "workflow", "import",
				fmt.Sprintf("disc %d items hash to %s, recorded fingerprint is %s", d.Index, got, d.Fingerprint), nil)
		}
	}
	return nil
}
