package query

import "errors"

// ErrInvalidDirection indicates a sort direction other than asc or desc.
var ErrInvalidDirection = errors.New("invalid sort direction")
