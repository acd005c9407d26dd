package port

import "errors"

var (
	// ErrNotFound is returned when a submission does not exist
	ErrNotFound = errors.New("submission not found")

	// ErrConcurrentModification is returned when the persisted version no
	// longer matches the version the caller read. The caller may re-read
	// and retry; no partial effect occurred.
	ErrConcurrentModification = errors.New("submission was modified concurrently")

	// ErrRepositoryUnavailable is returned on transient storage failures.
	// Retryable with backoff; no side effects were recorded.
	ErrRepositoryUnavailable = errors.New("submission store unavailable")
)
