package deployment

import "errors"

var (
	// ErrConfigNotFound is returned when no source is registered for an
	// environment or the registered source does not exist.
	ErrConfigNotFound = errors.New("deployment config not found")
	// ErrConfigIncomplete is returned when a required field is empty.
	ErrConfigIncomplete = errors.New("deployment config is incomplete")
	// ErrConfigInvalid is returned when a source cannot be parsed or holds malformed addresses.
	ErrConfigInvalid = errors.New("deployment config is invalid")
)
