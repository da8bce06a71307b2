// Package library catalogs the photos and videos under a library root.
package library

import (
	"fmt"
	"time"
)

// Kind distinguishes images from videos.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Asset is one media item in the library. Assets are values; callers
// never mutate the catalog through them.
type Asset struct {
	ID        string // NFC-normalized path relative to the library root
	Kind      Kind
	Path      string // absolute path on disk
	Width     int
	Height    int
	CreatedAt time.Time
	Duration  time.Duration // zero for images
	SizeBytes int64
	ScannedAt time.Time
}

// IsVideo reports whether the asset is a video.
func (a Asset) IsVideo() bool {
	return a.Kind == KindVideo
}

// DurationLabel formats a video's duration as m:ss.
// Returns "" for images.
func (a Asset) DurationLabel() string {
	if !a.IsVideo() {
		return ""
	}
	secs := int(a.Duration / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// Filter specifies criteria for listing assets.
// CreatedFrom is inclusive, CreatedBefore exclusive.
type Filter struct {
	Kinds         []Kind
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
	Limit         int // 0 = no limit
	Offset        int
}

// Match reports whether a satisfies the filter's kind and time constraints.
// Limit and Offset are ignored.
func (f Filter) Match(a Asset) bool {
	if len(f.Kinds) > 0 {
		ok := false
		for _, k := range f.Kinds {
			if a.Kind == k {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.CreatedFrom != nil && a.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedBefore != nil && !a.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	return true
}
