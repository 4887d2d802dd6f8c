package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingID indicates an upstream record without a usable stable
	// identifier. Such records are logged and skipped, never persisted.
	ErrMissingID = errors.New("record has no id")

	// ErrRateLimited indicates the upstream API throttled the run and
	// credential rotation could not recover. The adapter saves its
	// checkpoint and ends the sweep early.
	ErrRateLimited = errors.New("rate limited")

	// ErrExhaustedRetries indicates the retry budget for transient
	// network failures ran out.
	ErrExhaustedRetries = errors.New("exhausted retries")

	// ErrMissingCredentials indicates no API key is configured for a
	// source before any work began. This is the only setup failure that
	// exits non-zero.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrUnknownPartition indicates a partition code no source defines.
	ErrUnknownPartition = errors.New("unknown partition")
)
