package matching

import "errors"

// ErrInvalidRequester is returned when no requester profile is supplied.
var ErrInvalidRequester = errors.New("invalid requester")
