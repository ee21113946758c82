package errtrack

import "errors"

// ErrStoreUnavailable is returned when the record store could not be reached or
// the call did not complete. The underlying cause stays reachable via errors.Is.
var ErrStoreUnavailable = errors.New("errtrack: store unavailable")

// ErrCorruptRecord is returned when a stored tracking record cannot be decoded.
// A corrupt record is never treated as absent.
var ErrCorruptRecord = errors.New("errtrack: corrupt tracking record")

// ErrQueueNameRequired is returned when a tracker is built without a queue name.
var ErrQueueNameRequired = errors.New("errtrack: queue name not set")

// ErrInvalidSettings is returned when retry settings are out of range.
var ErrInvalidSettings = errors.New("errtrack: invalid settings")

// ErrEmptyMessageID is returned when an operation is called with an empty message id.
var ErrEmptyMessageID = errors.New("errtrack: empty message id")

// ErrPurgeUnsupported is returned by CleanUpQueue when the store cannot delete by prefix.
var ErrPurgeUnsupported = errors.New("errtrack: store does not support prefix deletion")
