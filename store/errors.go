package store

import "errors"

var (
	// ErrNilTable indicates a nil table was passed to Save.
	ErrNilTable = errors.New("store: table is nil")

	// ErrCorruptStore indicates the persisted state is inconsistent.
	ErrCorruptStore = errors.New("store: corrupt store")
)
