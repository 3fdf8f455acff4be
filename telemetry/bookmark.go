package telemetry

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHerbivoreExtinction BookmarkType = "herbivore_extinction"
	BookmarkCarnivoreExtinction BookmarkType = "carnivore_extinction"
	BookmarkHerbivoreCrash      BookmarkType = "herbivore_crash"
	BookmarkPredatorRecovery    BookmarkType = "predator_recovery"
	BookmarkStableCoexistence   BookmarkType = "stable_coexistence"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Year        int          `csv:"year" json:"year"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"year", b.Year,
		"description", b.Description,
	)
}

// DetectorConfig holds the bookmark thresholds.
type DetectorConfig struct {
	HistorySize    int     // years kept for the stability check
	CrashDrop      float64 // fractional fall from the recent herbivore peak
	RecoveryFactor float64 // carnivore growth from a low
	RecoveryFloor  int     // carnivore count at or below which a low is tracked
	StableCV       float64 // coefficient of variation ceiling for both species
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg DetectorConfig

	// Rolling history (circular buffer)
	history     []YearStats
	historyIdx  int
	historyFull bool

	recentHerbPeak int // highest herbivore count since the last crash
	recentCarnMin  int // lowest carnivore count since the last recovery, -1 if none tracked
	stable         bool
}

// NewBookmarkDetector creates a detector with the given thresholds.
func NewBookmarkDetector(cfg DetectorConfig) *BookmarkDetector {
	if cfg.HistorySize < 5 {
		cfg.HistorySize = 5 // minimum for stability detection
	}
	return &BookmarkDetector{
		cfg:           cfg,
		history:       make([]YearStats, cfg.HistorySize),
		recentCarnMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats YearStats) []Bookmark {
	var bookmarks []Bookmark

	if prev, ok := bd.last(); ok {
		if prev.Herbivores > 0 && stats.Herbivores == 0 {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkHerbivoreExtinction,
				Year:        stats.Year,
				Description: fmt.Sprintf("Herbivores died out (last count %d)", prev.Herbivores),
			})
		}
		if prev.Carnivores > 0 && stats.Carnivores == 0 {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkCarnivoreExtinction,
				Year:        stats.Year,
				Description: fmt.Sprintf("Carnivores died out (last count %d)", prev.Carnivores),
			})
		}
		if b := bd.checkHerbivoreCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkPredatorRecovery(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	bd.recentHerbPeak = max(bd.recentHerbPeak, stats.Herbivores)

	if b := bd.checkStableCoexistence(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats YearStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % len(bd.history)
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) last() (YearStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return YearStats{}, false
	}
	i := (bd.historyIdx - 1 + len(bd.history)) % len(bd.history)
	return bd.history[i], true
}

func (bd *BookmarkDetector) checkHerbivoreCrash(stats YearStats) *Bookmark {
	peak := bd.recentHerbPeak
	if peak < 10 || stats.Herbivores == 0 {
		return nil
	}
	drop := 1 - float64(stats.Herbivores)/float64(peak)
	if drop <= bd.cfg.CrashDrop {
		return nil
	}
	bd.recentHerbPeak = stats.Herbivores
	return &Bookmark{
		Type:        BookmarkHerbivoreCrash,
		Year:        stats.Year,
		Description: fmt.Sprintf("Herbivores crashed %.0f%% from peak %d to %d", drop*100, peak, stats.Herbivores),
	}
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats YearStats) *Bookmark {
	if stats.Carnivores > 0 && stats.Carnivores <= bd.cfg.RecoveryFloor {
		if bd.recentCarnMin < 0 || stats.Carnivores < bd.recentCarnMin {
			bd.recentCarnMin = stats.Carnivores
		}
		return nil
	}
	if bd.recentCarnMin <= 0 {
		return nil
	}
	threshold := float64(bd.recentCarnMin) * bd.cfg.RecoveryFactor
	if float64(stats.Carnivores) < threshold {
		return nil
	}
	oldMin := bd.recentCarnMin
	bd.recentCarnMin = -1
	return &Bookmark{
		Type:        BookmarkPredatorRecovery,
		Year:        stats.Year,
		Description: fmt.Sprintf("Carnivore population recovered from %d to %d", oldMin, stats.Carnivores),
	}
}

// checkStableCoexistence fires once when both species have been present
// with low variation over a full history window, and re-arms when that
// stops being true.
func (bd *BookmarkDetector) checkStableCoexistence(stats YearStats) *Bookmark {
	if !bd.historyFull {
		return nil
	}
	herbs := make([]float64, 0, len(bd.history))
	carns := make([]float64, 0, len(bd.history))
	for _, h := range bd.history {
		herbs = append(herbs, float64(h.Herbivores))
		carns = append(carns, float64(h.Carnivores))
	}
	ok := coefficientOfVariation(herbs) < bd.cfg.StableCV &&
		coefficientOfVariation(carns) < bd.cfg.StableCV &&
		stats.Herbivores > 0 && stats.Carnivores > 0
	if !ok {
		bd.stable = false
		return nil
	}
	if bd.stable {
		return nil
	}
	bd.stable = true
	return &Bookmark{
		Type:        BookmarkStableCoexistence,
		Year:        stats.Year,
		Description: fmt.Sprintf("Stable coexistence with %d herbivores, %d carnivores over %d years", stats.Herbivores, stats.Carnivores, len(bd.history)),
	}
}

// coefficientOfVariation returns std/mean, or +Inf when the mean is zero.
func coefficientOfVariation(values []float64) float64 {
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return math.Inf(1)
	}
	return std / mean
}
