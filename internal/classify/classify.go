// Package classify reduces a media library to an ordered candidate set
// using coarse, metadata-only heuristics.
package classify

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/vmunix/culler/internal/library"
)

const (
	// recentLimit is how many of the newest assets recentBatch keeps.
	recentLimit = 50
	// burstSample is how many of the newest assets burstDetect examines.
	burstSample = 50
	// burstReach bounds j-i when comparing pairs in the burst sample.
	burstReach = 10
	// burstGap is the maximum capture-time distance of a burst pair (exclusive).
	burstGap = time.Second
	// burstFallback is how many assets burstDetect returns when no pair matches.
	burstFallback = 20
)

type dims struct{ w, h int }

// screenshotSizes are known phone screen resolutions in portrait.
var screenshotSizes = map[dims]bool{
	{1179, 2556}: true,
	{1290, 2796}: true,
	{1170, 2532}: true,
	{1125, 2436}: true,
	{828, 1792}:  true,
	{750, 1334}:  true,
	{1242, 2688}: true,
}

// IsScreenshot reports whether an asset's dimensions match a known screen
// resolution in either orientation.
func IsScreenshot(a library.Asset) bool {
	return screenshotSizes[dims{a.Width, a.Height}] || screenshotSizes[dims{a.Height, a.Width}]
}

// Classify returns the candidate set for mode. Only images and videos are
// admitted, ordered newest first before the mode applies. The input is not
// modified. rng drives the random mode; nil uses the global source.
// An unknown mode yields no candidates.
func Classify(assets []library.Asset, mode Mode, now time.Time, rng *rand.Rand) []library.Asset {
	sorted := make([]library.Asset, 0, len(assets))
	for _, a := range assets {
		if a.Kind == library.KindImage || a.Kind == library.KindVideo {
			sorted = append(sorted, a)
		}
	}
	slices.SortStableFunc(sorted, func(a, b library.Asset) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	switch mode {
	case ModeCurrentMonth, ModeArchiveYear:
		return filter(sorted, Window(mode, now).Match)
	case ModeScreenshots:
		return filter(sorted, IsScreenshot)
	case ModeMediaOnly:
		return filter(sorted, func(a library.Asset) bool { return a.Kind == library.KindImage })
	case ModeRecentBatch:
		return slices.Clip(sorted[:min(len(sorted), recentLimit)])
	case ModeBurstDetect:
		return bursts(sorted)
	case ModeRandom:
		if rng != nil {
			rng.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
		} else {
			rand.Shuffle(len(sorted), func(i, j int) { sorted[i], sorted[j] = sorted[j], sorted[i] })
		}
		return sorted
	default:
		return nil
	}
}

// Window returns the creation-time bounds for modes that restrict by date,
// suitable for pushing down into a library fetch. Other modes get an empty
// filter.
func Window(mode Mode, now time.Time) library.Filter {
	switch mode {
	case ModeCurrentMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return library.Filter{CreatedFrom: &start}
	case ModeArchiveYear:
		from := now.AddDate(-2, 0, 0)
		before := now.AddDate(-1, 0, 0)
		return library.Filter{CreatedFrom: &from, CreatedBefore: &before}
	default:
		return library.Filter{}
	}
}

func filter(assets []library.Asset, keep func(library.Asset) bool) []library.Asset {
	var out []library.Asset
	for _, a := range assets {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// bursts returns assets captured within burstGap of an earlier neighbour in
// the newest burstSample assets, each at most once in first-match order.
// Falls back to the newest burstFallback assets when nothing matches.
func bursts(sorted []library.Asset) []library.Asset {
	sample := sorted[:min(len(sorted), burstSample)]
	added := make([]bool, len(sample))
	var out []library.Asset
	for i := range sample {
		for j := i + 1; j < min(i+burstReach, len(sample)); j++ {
			if added[j] {
				continue
			}
			if sample[i].CreatedAt.Sub(sample[j].CreatedAt).Abs() < burstGap {
				added[j] = true
				out = append(out, sample[j])
			}
		}
	}
	if len(out) == 0 {
		return slices.Clip(sorted[:min(len(sorted), burstFallback)])
	}
	return out
}
