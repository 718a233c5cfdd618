package storage

import "errors"

var (
	// ErrDecode is returned when a stored record is not valid JSON for its type.
	ErrDecode = errors.New("decode record failed")
	// ErrUnknownDriver is returned by Open for an unsupported driver name.
	ErrUnknownDriver = errors.New("unknown storage driver")
)
