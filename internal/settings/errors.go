package settings

import "errors"

var (
	// ErrValidation marks rejected input; the previous value is kept.
	ErrValidation = errors.New("settings: invalid value")
	// ErrStoreUnreachable marks a settings file that cannot be opened, created or replaced.
	ErrStoreUnreachable = errors.New("settings: store unreachable")
	// ErrSerialization marks a record that cannot be encoded or decoded.
	ErrSerialization = errors.New("settings: serialization failed")
)
