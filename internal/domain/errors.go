package domain

import "errors"

var (
	// ErrInvalidInput marks a missing or malformed required field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoData means the corpus is empty and no index has been built.
	ErrNoData = errors.New("no data")
	// ErrNotFound means a referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDependencyUnavailable marks a failed or timed out embedding or
	// generation call. Safe to retry the whole request.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrEmptyCorpus is returned by index builds with zero chunks. It never
	// leaves the indexer; callers see ErrNoData instead.
	ErrEmptyCorpus = errors.New("empty corpus")
)
