package types

import "errors"

var (
	ErrStateCorrupt   = errors.New("alert state record is corrupt")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrInvalidBackend = errors.New("invalid state backend")
)
