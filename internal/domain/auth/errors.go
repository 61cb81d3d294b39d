package auth

import "errors"

var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrMissingOrganization = errors.New("token carries no organization")
	ErrInvalidRole         = errors.New("invalid role")
	ErrForbidden           = errors.New("insufficient role for this operation")
)
