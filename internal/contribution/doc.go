// Package contribution defines the contribution aggregate and its review
// state machine.
//
// A Contribution owns its release metadata, discs, items and hash items.
// Relations to other contributions (duplicate discs) are id based DiscMatch
// values and are never persisted on the aggregate. Status changes happen
// only through Machine.Transition, which returns a new value and leaves the
// input untouched.
package contribution
