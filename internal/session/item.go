package session

import (
	"image"

	"github.com/vmunix/culler/internal/library"
)

// Item is an asset under review. Two items are the same item when their
// asset IDs match.
type Item struct {
	Asset             library.Asset
	Preview           image.Image // nil until loaded
	MarkedForDeletion bool
}

// ID returns the asset identity.
func (i Item) ID() string { return i.Asset.ID }

func itemID(i Item) string { return i.Asset.ID }

func assetID(a library.Asset) string { return a.ID }
