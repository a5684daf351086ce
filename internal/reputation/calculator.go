// Package reputation computes a runner's manner distance from the full
// history of peer evaluations they received.
//
// Every quantity in the formula is a multiple of 0.1 km, so the calculation
// runs on integer tenths. Results are exact and do not depend on the order in
// which evaluations are read.
package reputation

import "math"

const (
	// BaseTenths is the 10.0 km every runner starts from.
	BaseTenths = 100

	// MaxDistance is the marathon distance; no score goes above it.
	MaxDistance = 42.195
	MinDistance = 0.0

	// DefaultAverageScore is reported when a runner has no scored evaluations.
	DefaultAverageScore = 5.0

	maxVolumeBonusTenths = 20
	tagVarietyThreshold  = 3
	tagVarietyTenths     = 2
)

const (
	SituationNoShow                = "no-show"
	SituationLate                  = "late"
	SituationInappropriateBehavior = "inappropriate-behavior"
)

var scoreDeltaTenths = map[int]int{
	5: 10,
	4: 7,
	3: 5,
	2: -5,
	1: -7,
}

var situationDeltaTenths = map[string]int{
	SituationNoShow:                -10,
	SituationLate:                  -3,
	SituationInappropriateBehavior: -10,
}

// Stats is the subset of community statistics the base distance depends on.
type Stats struct {
	MannerScoreCount  int
	TotalParticipated int
	HostedEvents      int
	ReceivedTags      map[string]int
}

// Entry is one evaluation addressed to the runner. MannerScore is zero when
// the evaluator left no usable score.
type Entry struct {
	EvaluationID      string
	MannerScore       int
	SpecialSituations []string
}

// HasScore reports whether the entry carries a manner score in 1..5.
func (e Entry) HasScore() bool {
	_, ok := scoreDeltaTenths[e.MannerScore]
	return ok
}

// Outcome is the result of one calculation.
type Outcome struct {
	BaseDistance     float64
	TotalChange      float64
	Distance         float64
	AverageScore     float64
	ScoredCount      int
	EvaluationsFound int
}

// ScoreDelta returns the distance change for a manner score, 0 for scores
// outside 1..5.
func ScoreDelta(score int) float64 {
	return tenthsToKm(scoreDeltaTenths[score])
}

// SituationDelta returns the distance change for a special situation tag, 0
// for unknown tags.
func SituationDelta(tag string) float64 {
	return tenthsToKm(situationDeltaTenths[tag])
}

// BaseDistance returns the starting distance earned from community activity.
func BaseDistance(stats Stats) float64 {
	return tenthsToKm(baseTenths(stats))
}

func baseTenths(stats Stats) int {
	tenths := BaseTenths

	volume := stats.MannerScoreCount
	if volume < 0 {
		volume = 0
	}
	tenths += min(volume, maxVolumeBonusTenths)

	switch {
	case stats.TotalParticipated >= 10:
		tenths += 10
	case stats.TotalParticipated >= 5:
		tenths += 5
	}

	switch {
	case stats.HostedEvents >= 5:
		tenths += 10
	case stats.HostedEvents >= 2:
		tenths += 5
	}

	if DistinctTagCount(stats.ReceivedTags) >= tagVarietyThreshold {
		tenths += tagVarietyTenths
	}
	return tenths
}

// DistinctTagCount counts tags that were received at least once.
func DistinctTagCount(tags map[string]int) int {
	n := 0
	for _, count := range tags {
		if count > 0 {
			n++
		}
	}
	return n
}

// Compute applies the manner distance formula to stats and entries.
func Compute(stats Stats, entries []Entry) Outcome {
	changeTenths := 0
	scoreSum := 0
	scored := 0

	for _, e := range entries {
		if e.HasScore() {
			changeTenths += scoreDeltaTenths[e.MannerScore]
			scoreSum += e.MannerScore
			scored++
		}
		for _, tag := range e.SpecialSituations {
			changeTenths += situationDeltaTenths[tag]
		}
	}

	base := baseTenths(stats)
	avg := DefaultAverageScore
	if scored > 0 {
		avg = math.Round(float64(scoreSum)*10/float64(scored)) / 10
	}

	return Outcome{
		BaseDistance:     tenthsToKm(base),
		TotalChange:      tenthsToKm(changeTenths),
		Distance:         Clamp(tenthsToKm(base + changeTenths)),
		AverageScore:     avg,
		ScoredCount:      scored,
		EvaluationsFound: len(entries),
	}
}

// Clamp bounds a distance to [MinDistance, MaxDistance].
func Clamp(km float64) float64 {
	if km < MinDistance {
		return MinDistance
	}
	if km > MaxDistance {
		return MaxDistance
	}
	return km
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func tenthsToKm(tenths int) float64 {
	return float64(tenths) / 10
}
