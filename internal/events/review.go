// internal/events/review.go
package events

// Entity types
const (
	EntitySession = "session"
	EntityLibrary = "library"
)

// Event type constants
const (
	EventCandidatesLoaded  = "candidates.loaded"
	EventReviewStarted     = "review.started"
	EventItemDecided       = "item.decided"
	EventItemUnmarked      = "item.unmarked"
	EventSessionReset      = "session.reset"
	EventDeletionCommitted = "deletion.committed"
	EventDeletionFailed    = "deletion.failed"
	EventLibraryScanned    = "library.scanned"
	EventTrashEmptied      = "trash.emptied"
)

// CandidatesLoaded is emitted when a filter mode produced a candidate set.
type CandidatesLoaded struct {
	BaseEvent
	Mode  string `json:"mode"`
	Count int    `json:"count"`
}

// ReviewStarted is emitted when a batch is sliced off the candidates.
type ReviewStarted struct {
	BaseEvent
	Mode      string `json:"mode"`
	BatchSize int    `json:"batch_size"`
}

// ItemDecided is emitted for every keep/delete decision.
type ItemDecided struct {
	BaseEvent
	AssetID  string `json:"asset_id"`
	Position int    `json:"position"`
	Marked   bool   `json:"marked"` // true = marked for deletion
}

// ItemUnmarked is emitted when a pending deletion is withdrawn.
type ItemUnmarked struct {
	BaseEvent
	AssetID string `json:"asset_id"`
}

// SessionReset is emitted when a session's batch and decisions are cleared.
type SessionReset struct {
	BaseEvent
	Reshuffled bool `json:"reshuffled"`
}
