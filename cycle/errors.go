/*
errors.go - Sentinel errors for the cycle lifecycle

PURPOSE:
  All lifecycle error values in one place. API handlers map these to HTTP
  statuses with errors.Is().
*/
package cycle

import "errors"

var (
	// ErrReconcileInFlight is returned when a reconciliation is triggered
	// while another is already running. The second trigger is coalesced,
	// never interleaved.
	ErrReconcileInFlight = errors.New("reconciliation already in progress")

	// ErrEditWhileClosing is returned when the active set would be edited
	// while a reconciliation is in flight.
	ErrEditWhileClosing = errors.New("active set is locked while a cycle is closing")

	// ErrTransactionNotFound is returned when deleting an id that is not
	// in the active set.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidClosingDay is returned by the configuration boundary for a
	// closing day outside [1, 28] when clamping is not wanted.
	ErrInvalidClosingDay = errors.New("closing day must be between 1 and 28")
)
