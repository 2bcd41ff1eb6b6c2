package application

import "errors"

// ErrInvalidQuery is returned for listing parameters the use case does not understand.
var ErrInvalidQuery = errors.New("invalid query")
