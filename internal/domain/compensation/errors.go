package compensation

import "errors"

var (
	ErrMissingCompensation       = errors.New("no compensation effective for the requested month")
	ErrMalformedComponentPayload = errors.New("compensation component list is absent or not a list")
	ErrCompensationNotFound      = errors.New("compensation not found")
	ErrInvalidEffectiveRange     = errors.New("effective_to must not be before effective_from")
)
