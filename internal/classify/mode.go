package classify

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
)

// Mode selects the heuristic that reduces a library to a candidate set.
type Mode string

const (
	ModeRandom       Mode = "random"
	ModeScreenshots  Mode = "screenshots"
	ModeMediaOnly    Mode = "mediaOnly"
	ModeRecentBatch  Mode = "recentBatch"
	ModeBurstDetect  Mode = "burstDetect"
	ModeCurrentMonth Mode = "currentMonth"
	ModeArchiveYear  Mode = "archiveYear"
)

// Modes lists every mode in display order.
var Modes = []Mode{
	ModeRandom,
	ModeScreenshots,
	ModeMediaOnly,
	ModeRecentBatch,
	ModeBurstDetect,
	ModeCurrentMonth,
	ModeArchiveYear,
}

type modeInfo struct {
	label       string
	description string
	aliases     []string
}

var modeInfos = map[Mode]modeInfo{
	ModeRandom:       {"RANDOM_MODE", "Completely randomized selection", nil},
	ModeScreenshots:  {"SCREENSHOT_FILTER", "Screen captures detected by resolution", nil},
	ModeMediaOnly:    {"PHOTO_ONLY", "All photos from your library", []string{"selfies", "photos"}},
	ModeRecentBatch:  {"RECENT_BATCH", "Quick batch of recent photos", []string{"blurred", "recent"}},
	ModeBurstDetect:  {"BURST_DETECTION", "Photos taken in burst mode", []string{"duplicates", "burst"}},
	ModeCurrentMonth: {"CURRENT_MONTH", "Files from current month only", []string{"thisMonth"}},
	ModeArchiveYear:  {"ARCHIVE_MODE", "Photos from previous year", []string{"lastYear", "archive"}},
}

// Label returns the short display label, e.g. "RANDOM_MODE".
func (m Mode) Label() string {
	if info, ok := modeInfos[m]; ok {
		return info.label
	}
	return strings.ToUpper(string(m))
}

// Description returns a one-line human description of the mode.
func (m Mode) Description() string {
	return modeInfos[m].description
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	_, ok := modeInfos[m]
	return ok
}

func (m Mode) String() string { return string(m) }

// foldName lowercases and drops separators so "burst-detect",
// "BURST_DETECT" and "burstDetect" compare equal.
func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

var modeNames = func() map[string]Mode {
	names := make(map[string]Mode)
	for m, info := range modeInfos {
		names[foldName(string(m))] = m
		names[foldName(info.label)] = m
		for _, alias := range info.aliases {
			names[foldName(alias)] = m
		}
	}
	return names
}()

// suggestThreshold is the minimum similarity for a "did you mean" hint.
const suggestThreshold = 0.7

// ParseMode resolves a mode name, label or legacy alias, ignoring case.
// Unknown names return ErrUnknownMode, with the closest known mode
// suggested when one is similar enough.
func ParseMode(s string) (Mode, error) {
	key := foldName(s)
	if m, ok := modeNames[key]; ok {
		return m, nil
	}

	var (
		best      Mode
		bestScore float32
	)
	for name, m := range modeNames {
		score := edlib.JaroWinklerSimilarity(key, name)
		if score > bestScore || (score == bestScore && m < best) {
			best, bestScore = m, score
		}
	}
	if key != "" && bestScore >= suggestThreshold {
		return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownMode, s, best)
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMode, s)
}
