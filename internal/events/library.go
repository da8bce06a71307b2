// internal/events/library.go
package events

// DeletionCommitted is emitted when the library confirmed a batch deletion.
type DeletionCommitted struct {
	BaseEvent
	AssetIDs []string `json:"asset_ids"`
	Count    int      `json:"count"`
}

// DeletionFailed is emitted when the library rejected a batch deletion.
// Nothing was removed; the batch may be retried.
type DeletionFailed struct {
	BaseEvent
	AssetIDs []string `json:"asset_ids"`
	Reason   string   `json:"reason"`
}

// LibraryScanned is emitted after the catalog was synced with disk.
type LibraryScanned struct {
	BaseEvent
	Root    string `json:"root"`
	Scanned int    `json:"scanned"`
	Skipped int    `json:"skipped"`
	Pruned  int64  `json:"pruned"`
}

// TrashEmptied is emitted when staged deletions were removed for good.
type TrashEmptied struct {
	BaseEvent
	Batches int   `json:"batches"`
	Files   int   `json:"files"`
	Bytes   int64 `json:"bytes"`
}
