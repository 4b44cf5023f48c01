package revshare

import "errors"

var (
	// ErrNotFound indicates the key was never assigned or is already tombstoned.
	ErrNotFound = errors.New("revshare: entry not found")

	// ErrNoEntries indicates the table holds no live entries.
	ErrNoEntries = errors.New("revshare: no payment pointer entries")

	// ErrChoiceOutOfRange indicates a pick choice exceeds the total weight.
	ErrChoiceOutOfRange = errors.New("revshare: choice out of range")

	// ErrLimitExceeded indicates an add would push the total weight past the configured cap.
	ErrLimitExceeded = errors.New("revshare: total weight limit exceeded")

	// ErrInvalidPointer indicates a name is not a valid payment pointer.
	ErrInvalidPointer = errors.New("revshare: invalid payment pointer")

	// ErrNotOwner indicates the caller does not own the table.
	ErrNotOwner = errors.New("revshare: caller is not the owner")

	// ErrEmptyOwner indicates an empty owner identity.
	ErrEmptyOwner = errors.New("revshare: empty owner")

	// ErrInsufficientPayment indicates the payment is too small to distribute.
	ErrInsufficientPayment = errors.New("revshare: insufficient payment for distribution")

	// ErrZeroTotalWeight indicates the entries carry no weight.
	ErrZeroTotalWeight = errors.New("revshare: zero total weight")

	// ErrWeightDrift indicates the running total disagrees with the live entries.
	ErrWeightDrift = errors.New("revshare: total weight drift")

	// ErrInvalidSnapshot indicates a snapshot cannot be restored into a table.
	ErrInvalidSnapshot = errors.New("revshare: invalid snapshot")

	// ErrInvalidSnapshotData indicates serialized snapshot bytes are malformed.
	ErrInvalidSnapshotData = errors.New("revshare: invalid snapshot data")

	// ErrChecksumMismatch indicates the snapshot digest does not match its payload.
	ErrChecksumMismatch = errors.New("revshare: snapshot checksum mismatch")

	// ErrTooManyEntries indicates the snapshot has more entries than the format can hold.
	ErrTooManyEntries = errors.New("revshare: too many entries")

	// ErrNameTooLong indicates a name exceeds the snapshot format's length field.
	ErrNameTooLong = errors.New("revshare: name too long")
)
