package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSaturated   BookmarkType = "saturated"
	BookmarkDrained     BookmarkType = "drained"
	BookmarkBounceSpike BookmarkType = "bounce_spike"
	BookmarkSteadyState BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        uint64       `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the pool's behaviour.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	wasSaturated       bool
	peakActive         int
	stableWindowsCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady state detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Reset forgets the window history so a restarted run is judged afresh.
func (bd *BookmarkDetector) Reset() {
	clear(bd.history)
	bd.historyIdx = 0
	bd.historyFull = false
	bd.wasSaturated = false
	bd.peakActive = 0
	bd.stableWindowsCount = 0
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	// Saturated: spawns started getting declined
	if b := bd.checkSaturated(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	// Drained: every particle gone after a populated stretch
	if b := bd.checkDrained(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		// Bounce spike: bounces > 2x rolling average
		if b := bd.checkBounceSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Steady state: occupancy flat over 5+ windows
		if b := bd.checkSteadyState(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.Active > bd.peakActive {
		bd.peakActive = stats.Active
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	saturated := stats.Declined > 0
	defer func() { bd.wasSaturated = saturated }()

	if !saturated || bd.wasSaturated {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSaturated,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Pool full at %d particles, %d spawns declined", stats.Capacity, stats.Declined),
	}
}

func (bd *BookmarkDetector) checkDrained(stats WindowStats) *Bookmark {
	if bd.peakActive == 0 || stats.Active > 0 {
		return nil
	}

	// Reset the peak after triggering
	oldPeak := bd.peakActive
	bd.peakActive = 0

	return &Bookmark{
		Type:        BookmarkDrained,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Pool drained from a peak of %d particles", oldPeak),
	}
}

func (bd *BookmarkDetector) checkBounceSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Bounces
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Bounces) > avg*2.0 && stats.Bounces >= 10 {
		return &Bookmark{
			Type:        BookmarkBounceSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d bounces is %.1fx average (%.1f)", stats.Bounces, float64(stats.Bounces)/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	if stats.Active == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	var sum float64
	for _, h := range history {
		sum += float64(h.Active)
	}
	mean := sum / float64(len(history))

	var variance float64
	for _, h := range history {
		d := float64(h.Active) - mean
		variance += d * d
	}
	variance /= float64(len(history))

	// CV^2 < 0.01 means CV < 0.1
	if mean > 0 && variance/(mean*mean) < 0.01 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady state around %.0f active particles", mean),
		}
	}

	return nil
}
