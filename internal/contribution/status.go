package contribution

import "strings"

// Status is the review state of a contribution.
type Status string

const (
	StatusPending          Status = "pending"
	StatusReadyForReview   Status = "ready_for_review"
	StatusApproved         Status = "approved"
	StatusChangesRequested Status = "changes_requested"
	StatusRejected         Status = "rejected"
	StatusImported         Status = "imported"
)

var allStatuses = []Status{
	StatusPending,
	StatusReadyForReview,
	StatusApproved,
	StatusChangesRequested,
	StatusRejected,
	StatusImported,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range allStatuses {
		if s == normalized {
			return s, true
		}
	}
	return "", false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusImported
}

// Editable reports whether the owner may change release or disc data in s.
func (s Status) Editable() bool {
	return s == StatusPending || s == StatusChangesRequested
}

// Action is a request to move a contribution between states.
type Action string

const (
	ActionSubmit         Action = "submit"
	ActionApprove        Action = "approve"
	ActionRequestChanges Action = "request_changes"
	ActionReject         Action = "reject"
	ActionEdit           Action = "edit"
	ActionImport         Action = "import"
)

// ParseAction converts user input into an Action. Dashes are accepted in
// place of underscores.
func ParseAction(value string) (Action, bool) {
	normalized := Action(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), "-", "_"))
	switch normalized {
	case ActionSubmit, ActionApprove, ActionRequestChanges, ActionReject, ActionEdit, ActionImport:
		return normalized, true
	default:
		return "", false
	}
}

// Role is the capacity in which the caller acts.
type Role string

const (
	RoleOwner         Role = "owner"
	RoleAdministrator Role = "administrator"
	RoleSystem        Role = "system"
)

// ParseRole converts user input into a Role.
func ParseRole(value string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleOwner:
		return RoleOwner, true
	case RoleAdministrator, "admin":
		return RoleAdministrator, true
	case RoleSystem:
		return RoleSystem, true
	default:
		return "", false
	}
}
