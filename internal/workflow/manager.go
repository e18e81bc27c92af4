package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"discdb/internal/blob"
	"discdb/internal/config"
	"discdb/internal/contribution"
	"discdb/internal/dedup"
	"discdb/internal/disc/fingerprint"
	"discdb/internal/identifier"
	"discdb/internal/identity"
	"discdb/internal/logging"
	"discdb/internal/services"
	"discdb/internal/validation"
)

// Persistence stores contributions with optimistic concurrency.
type Persistence interface {
	CreateContribution(ctx context.Context, c *contribution.Contribution) error
	LoadContribution(ctx context.Context, id int64) (*contribution.Contribution, error)
	SaveContribution(ctx context.Context, c *contribution.Contribution) error
	FindDiscsByFingerprint(ctx context.Context, fp string) ([]contribution.DiscMatch, error)
	FindContributionsByDiscHash(ctx context.Context, discHash string) ([]int64, error)
}

// Manager coordinates contribution changes.
type Manager struct {
	store    Persistence
	blobs    blob.Store
	identity identity.Provider
	codec    *identifier.Codec
	index    *dedup.Index
	pipeline *validation.Pipeline
	machine  *contribution.Machine
	hasher   fingerprint.Hasher
	logger   *slog.Logger
	locks    *keyedLocks
	maxLog   int
}

// DefaultMaxLogBytes caps the size of an uploaded ripper log.
const DefaultMaxLogBytes = 16 << 20

// NewManager wires a Manager from configuration and its collaborators.
func NewManager(cfg *config.Config, store Persistence, blobs blob.Store, ids identity.Provider, logger *slog.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("workflow: nil config")
	}
	if store == nil || blobs == nil {
		return nil, errors.New("workflow: store and blob store are required")
	}
	codec, err := identifier.New(cfg.IdentifierOptions())
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "identifier codec", err)
	}
	index, err := dedup.New(store, cfg.Dedup.CacheSize)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = identity.Static(cfg.Identity.UserID)
	}
	pipeline := validation.Default()
	componentLogger := logging.NewComponentLogger(logger, "workflow")
	componentLogger.Debug("validation rules loaded",
		logging.String("rules", strings.Join(pipeline.Names(), ",")))
	return &Manager{
		store:    store,
		blobs:    blobs,
		identity: identity.Context{Fallback: ids},
		codec:    codec,
		index:    index,
		pipeline: pipeline,
		machine:  contribution.NewMachine(pipeline),
		hasher:   fingerprint.NewHasher(cfg.FingerprintGranularity()),
		logger:   componentLogger,
		locks:    newKeyedLocks(),
		maxLog:   DefaultMaxLogBytes,
	}, nil
}

// Encode returns the external id of an internal id.
func (m *Manager) Encode(id int64) (string, error) {
	return m.codec.Encode(id)
}

func (m *Manager) decode(externalID string) (int64, error) {
	id, err := m.codec.Decode(externalID)
	if err != nil {
		return 0, fmt.Errorf("contribution %q: %w", externalID, err)
	}
	return id, nil
}

// caller returns the acting user. A caller stored on ctx wins; otherwise
// the identity provider is asked and fallback is used as the role.
func (m *Manager) caller(ctx context.Context, fallback contribution.Role) (identity.Caller, error) {
	if c, ok := identity.CallerFromContext(ctx); ok {
		if c.Role == "" {
			c.Role = fallback
		}
		return c, nil
	}
	id, err := m.identity.CurrentUserID(ctx)
	if err != nil {
		return identity.Caller{}, services.Wrap(services.ErrConfiguration, "workflow", "identity",
			"an action requires a caller identity; set identity.user_id or DISCDB_USER", err)
	}
	return identity.Caller{UserID: id, Role: fallback}, nil
}

func checkOwner(c *contribution.Contribution, who identity.Caller, action contribution.Action) error {
	if who.Role == contribution.RoleOwner && who.UserID != c.OwnerID {
		return &contribution.StateTransitionError{
			From:   c.Status,
			Action: action,
			Role:   who.Role,
			Reason: fmt.Sprintf("caller %s does not own the contribution", who.UserID),
		}
	}
	return nil
}

// mutation is applied to a freshly loaded contribution under its lock. It
// returns the contribution to persist, which may be a new value produced by
// the state machine.
type mutation func(ctx context.Context, c *contribution.Contribution, who identity.Caller, logger *slog.Logger) (*contribution.Contribution, error)

// mutate loads, changes and saves one contribution while holding its lock.
func (m *Manager) mutate(ctx context.Context, op, externalID string, role contribution.Role, fn mutation) (*contribution.Contribution, error) {
	id, err := m.decode(externalID)
	if err != nil {
		return nil, err
	}
	who, err := m.caller(ctx, role)
	if err != nil {
		return nil, err
	}
	ctx, logger := m.opContext(ctx, op, id)

	unlock := m.locks.lock(id)
	defer unlock()

	start := time.Now()
	current, err := m.store.LoadContribution(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(ctx, current, who, logger)
	if err != nil {
		logger.Info("operation refused",
			logging.String(logging.FieldEventType, "operation_refused"),
			logging.String("error_kind", string(services.KindOf(err))),
			logging.Error(err))
		return nil, err
	}
	if err := m.store.SaveContribution(ctx, next); err != nil {
		if errors.Is(err, services.ErrConcurrencyConflict) {
			logging.WarnWithContext(logger, "contribution changed concurrently", "concurrency_conflict",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "reload the contribution and retry"),
				logging.String(logging.FieldImpact, "the change was not saved"))
		}
		return nil, err
	}
	logger.Debug("contribution saved",
		logging.String(logging.FieldStatus, string(next.Status)),
		logging.Int64("version", next.Version),
		logging.Duration("elapsed", time.Since(start)))
	return next, nil
}

// edit applies the edit transition for the owner and then fn.
func (m *Manager) edit(ctx context.Context, op, externalID string, fn func(c *contribution.Contribution, logger *slog.Logger) error) (*View, error) {
	updated, err := m.mutate(ctx, op, externalID, contribution.RoleOwner,
		func(ctx context.Context, c *contribution.Contribution, who identity.Caller, logger *slog.Logger) (*contribution.Contribution, error) {
			if err := checkOwner(c, who, contribution.ActionEdit); err != nil {
				return nil, err
			}
			next, err := m.machine.Transition(c, contribution.ActionEdit, who.Role)
			if err != nil {
				return nil, err
			}
			if next.Status != c.Status {
				logger.Info("contribution reopened for editing",
					logging.String(logging.FieldEventType, "status_changed"),
					logging.String("from", string(c.Status)),
					logging.String(logging.FieldStatus, string(next.Status)))
			}
			if err := fn(next, logger); err != nil {
				return nil, err
			}
			return next, nil
		})
	if err != nil {
		return nil, err
	}
	return m.view(ctx, updated, contribution.RoleOwner)
}

// view attaches duplicates and the encoded id to c.
func (m *Manager) view(ctx context.Context, c *contribution.Contribution, role contribution.Role) (*View, error) {
	extID, err := m.codec.Encode(c.ID)
	if err != nil {
		return nil, err
	}
	if err := m.attachDuplicates(ctx, c); err != nil {
		return nil, err
	}
	return &View{ExternalID: extID, Contribution: c, Allowed: contribution.Allowed(c.Status, role)}, nil
}

func (m *Manager) attachDuplicates(ctx context.Context, c *contribution.Contribution) error {
	for i := range c.Discs {
		d := &c.Discs[i]
		matches, err := m.index.Lookup(ctx, d.Fingerprint, c.ID, d.Index)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			d.Duplicates = nil
			continue
		}
		d.Duplicates = matches
	}
	return nil
}
