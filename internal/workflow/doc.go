// Package workflow coordinates every mutation of a contribution.
//
// The Manager is addressed by encoded external ids. It resolves the caller,
// serializes changes per contribution with an in-process keyed lock, and
// persists through an optimistic version check so a stale copy never
// overwrites a concurrent decision. Log parsing and fingerprinting happen
// before the lock is taken; only the merge into the aggregate runs under it.
//
// Edits move a contribution in changes_requested back to pending. Submit
// consults the validation pipeline through the state machine guard, and
// duplicate discs found in the dedup index are attached as advisories.
package workflow
