// Package scheduler recomputes a quiz's next review date from a review
// outcome, using a simplified SM-2 interval-growth model.
package scheduler

import (
	"log/slog"
	"math"
	"strings"
	"time"
)

// DefaultEaseFactor is the fixed starting difficulty multiplier.
const DefaultEaseFactor = 2.5

// minEaseFactor is the SM-2 floor below which ease never drops.
const minEaseFactor = 1.3

// Result is one scheduling decision. EaseFactor carries the adjusted
// ease for reporting; it is not fed back into the interval of the same
// call and is not persisted in this version.
type Result struct {
	Interval   int
	Due        time.Time
	EaseFactor float64
}

// NextReview computes the next review date as of now.
func NextReview(quality, reviewCount int, easeFactor float64) Result {
	return NextReviewAt(quality, reviewCount, easeFactor, time.Now())
}

// NextReviewAt computes the next review date relative to `now`.
//
// quality grades the review 0 (failed) to 3 (easy) and is clamped into
// that range rather than rejected. A first-ever review (reviewCount 0)
// and a failed review both schedule one day out. Otherwise the interval
// grows as ease * qualityMultiplier * reviewCount, floored at one day.
// The quality multiplier is 1.0+(quality-1)*0.2: quality 1 → 1.0,
// 2 → 1.2, 3 → 1.4.
func NextReviewAt(quality, reviewCount int, easeFactor float64, now time.Time) Result {
	if quality < 0 || quality > 3 {
		slog.Warn("review quality out of range, clamping", "quality", quality)
		quality = max(0, min(3, quality))
	}
	if easeFactor <= 0 {
		easeFactor = DefaultEaseFactor
	}

	intervalDays := 1
	if reviewCount > 0 && quality != 0 {
		qualityMultiplier := 1.0 + float64(quality-1)*0.2
		intervalDays = int(math.Floor(easeFactor * qualityMultiplier * float64(reviewCount)))
		if intervalDays < 1 {
			intervalDays = 1
		}
	}

	// Ease is adjusted after the interval, for reporting only.
	ease := easeFactor
	switch {
	case quality < 2:
		ease = math.Max(minEaseFactor, ease-0.1)
	case quality > 2:
		ease += 0.1
	}

	today := now.UTC()
	due := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, intervalDays)

	slog.Info("schedule computed",
		"quality", quality,
		"review_count", reviewCount,
		"ease_factor", ease,
		"interval_days", intervalDays,
		"due", due.Format("2006-01-02"),
	)
	return Result{Interval: intervalDays, Due: due, EaseFactor: ease}
}

// outcomeQuality maps the closed review-outcome vocabulary to quality
// scores. Unknown outcomes default to "good".
var outcomeQuality = map[string]int{
	"bad":       0,
	"attention": 1,
	"good":      2,
}

// QualityForOutcome maps a qualitative outcome tag (case-insensitive)
// to a quality score.
func QualityForOutcome(outcome string) int {
	if q, ok := outcomeQuality[strings.ToLower(outcome)]; ok {
		return q
	}
	return outcomeQuality["good"]
}
