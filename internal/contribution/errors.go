package contribution

import (
	"fmt"
	"strings"

	"discdb/internal/services"
)

// StateTransitionError reports a rejected transition. Messages carries the
// failing validation messages when a guard refused the move.
type StateTransitionError struct {
	From     Status
	Action   Action
	Role     Role
	Reason   string
	Messages []string
}

func (e *StateTransitionError) Error() string {
	msg := fmt.Sprintf("cannot %s contribution in %s as %s: %s", e.Action, e.From, e.Role, e.Reason)
	if len(e.Messages) > 0 {
		msg += " (" + strings.Join(e.Messages, "; ") + ")"
	}
	return msg
}

// Is matches services.ErrStateTransition.
func (e *StateTransitionError) Is(target error) bool {
	return target == services.ErrStateTransition
}

// FingerprintConflictError reports a log upload whose fingerprint differs
// from the one already recorded for the disc.
type FingerprintConflictError struct {
	DiscIndex int
	Existing  string
	Incoming  string
}

func (e *FingerprintConflictError) Error() string {
	return fmt.Sprintf("disc %d fingerprint conflict: recorded %s, uploaded log yields %s", e.DiscIndex, e.Existing, e.Incoming)
}

// Is matches services.ErrFingerprintConflict.
func (e *FingerprintConflictError) Is(target error) bool {
	return target == services.ErrFingerprintConflict
}

// ApplyFingerprint records fp on d. A different non-empty fingerprint is
// only replaced when force is set; the previous value is returned so the
// caller can log the replacement.
func (d *Disc) ApplyFingerprint(fp string, force bool) (previous string, err error) {
	previous = d.Fingerprint
	if previous != "" && previous != fp && !force {
		return previous, &FingerprintConflictError{DiscIndex: d.Index, Existing: previous, Incoming: fp}
	}
	d.Fingerprint = fp
	return previous, nil
}
