package scheduling

import "errors"

var (
	ErrMissingField        = errors.New("missing required field")
	ErrInvalidField        = errors.New("invalid field value")
	ErrProviderUnavailable = errors.New("provider does not work on this weekday")
	ErrTimeConflict        = errors.New("provider already has a booking at this time")
	ErrInvalidReference    = errors.New("unknown reference")
)
