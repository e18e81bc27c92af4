package contribution

// Guard decides whether a contribution may leave the pending state.
// Messages explains a refusal.
type Guard interface {
	Eligible(c *Contribution) (ok bool, messages []string)
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(c *Contribution) (bool, []string)

// Eligible calls f(c).
func (f GuardFunc) Eligible(c *Contribution) (bool, []string) {
	return f(c)
}

type edge struct {
	from   Status
	action Action
}

type rule struct {
	to      Status
	roles   []Role
	guarded bool
}

var transitions = map[edge]rule{
	{StatusPending, ActionSubmit}:                {to: StatusReadyForReview, roles: []Role{RoleOwner}, guarded: true},
	{StatusPending, ActionEdit}:                  {to: StatusPending, roles: []Role{RoleOwner}},
	{StatusReadyForReview, ActionApprove}:        {to: StatusApproved, roles: []Role{RoleAdministrator}},
	{StatusReadyForReview, ActionRequestChanges}: {to: StatusChangesRequested, roles: []Role{RoleAdministrator}},
	{StatusReadyForReview, ActionReject}:         {to: StatusRejected, roles: []Role{RoleAdministrator}},
	{StatusChangesRequested, ActionEdit}:         {to: StatusPending, roles: []Role{RoleOwner}},
	{StatusApproved, ActionImport}:               {to: StatusImported, roles: []Role{RoleSystem, RoleAdministrator}},
}

// Machine applies review transitions. A nil Guard lets every submit through.
type Machine struct {
	Guard Guard
}

// NewMachine returns a Machine consulting guard on submit.
func NewMachine(guard Guard) *Machine {
	return &Machine{Guard: guard}
}

// Transition applies action performed by role to c. On success it returns a
// copy of c in the new state; c itself is never modified.
func (m *Machine) Transition(c *Contribution, action Action, role Role) (*Contribution, error) {
	if c == nil {
		return nil, &StateTransitionError{Action: action, Role: role, Reason: "no contribution"}
	}
	fail := func(reason string, messages []string) error {
		return &StateTransitionError{From: c.Status, Action: action, Role: role, Reason: reason, Messages: messages}
	}
	if c.Status.Terminal() {
		return nil, fail("status is terminal", nil)
	}
	r, ok := transitions[edge{from: c.Status, action: action}]
	if !ok {
		return nil, fail("action not allowed from this status", nil)
	}
	if !roleAllowed(r.roles, role) {
		return nil, fail("role not permitted", nil)
	}
	if r.guarded && m != nil && m.Guard != nil {
		if eligible, messages := m.Guard.Eligible(c); !eligible {
			return nil, fail("contribution is not eligible for review", messages)
		}
	}
	next := c.Clone()
	next.Status = r.to
	return next, nil
}

// Allowed lists the actions role may take from status.
func Allowed(status Status, role Role) []Action {
	var out []Action
	for _, action := range []Action{ActionSubmit, ActionApprove, ActionRequestChanges, ActionReject, ActionEdit, ActionImport} {
		if r, ok := transitions[edge{from: status, action: action}]; ok && roleAllowed(r.roles, role) {
			out = append(out, action)
		}
	}
	return out
}

func roleAllowed(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
