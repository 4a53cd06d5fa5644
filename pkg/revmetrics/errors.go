package revmetrics

import "errors"

var (
	// ErrProviderNotConfigured is returned when a billing provider is missing or misconfigured
	ErrProviderNotConfigured = errors.New("billing provider not configured")

	// ErrSnapshotNotFound is returned by snapshot stores on a cache miss
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrCollectorTimeout marks a collector that did not finish within its budget
	ErrCollectorTimeout = errors.New("collector timed out")

	// ErrNoInvoice is returned by invoice resolvers when a payment has no linked invoice
	ErrNoInvoice = errors.New("no linked invoice")

	// ErrLedgerUnavailable is returned when the local ledger cannot be queried
	ErrLedgerUnavailable = errors.New("ledger unavailable")
)
