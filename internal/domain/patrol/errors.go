package patrol

import "errors"

var (
	ErrDuplicateTimeIn  = errors.New("an open time-in already exists for today")
	ErrMissingTimeIn    = errors.New("no time-in recorded for today")
	ErrDuplicateTimeOut = errors.New("today's shift is already closed")
	ErrInvalidAction    = errors.New("invalid time record action")
	ErrInvalidStatus    = errors.New("invalid duty status")
	ErrStatusNotFound   = errors.New("no duty status recorded for user")
)
