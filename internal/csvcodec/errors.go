package csvcodec

import "errors"

// ErrSchemaMismatch indicates CSV text whose shape does not match the expected columns.
var ErrSchemaMismatch = errors.New("csv does not match schema")
