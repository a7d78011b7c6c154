package domain

import "errors"

var (
	// ErrNotInitialized is returned when the store is used before Open or after Close
	ErrNotInitialized = errors.New("store not initialized")

	// ErrConstraint marks a foreign key, CHECK, NOT NULL or input validation failure
	ErrConstraint = errors.New("constraint violation")

	// ErrMalformedSnapshot marks bytes that do not form a loadable store
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrNotPersisted means a mutation was applied in memory but the durable write failed
	ErrNotPersisted = errors.New("state not persisted")
)
