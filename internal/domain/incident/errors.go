package incident

import "errors"

var (
	ErrIncidentNotFound  = errors.New("incident not found")
	ErrInvalidStatus     = errors.New("invalid incident status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyResolved   = errors.New("incident is already resolved")
	ErrTanodNotAvailable = errors.New("tanod is not on duty")
	ErrInvalidData       = errors.New("invalid incident data")
)
