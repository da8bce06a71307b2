package session

import "errors"

var (
	// ErrInvalidState indicates an operation that is not allowed in the
	// session's current state. The session is left unchanged.
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrInvalidBatchSize indicates a batch size outside [1, candidates].
	ErrInvalidBatchSize = errors.New("invalid batch size")

	// ErrNoCurrentItem indicates a decision with no item under the cursor.
	ErrNoCurrentItem = errors.New("no current item")

	// ErrItemNotFound indicates an asset ID that is not in the review batch.
	ErrItemNotFound = errors.New("item not in batch")

	// ErrSessionReset indicates the session was reset while the call was
	// waiting on the library; its result was discarded.
	ErrSessionReset = errors.New("session reset")
)
