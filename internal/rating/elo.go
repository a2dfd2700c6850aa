// Package rating computes MMR deltas. Every function here is pure: no I/O,
// no locks, no wall-clock reads. The match lifecycle and admin override
// components are the only callers; they own persisting the result.
package rating

import (
	"errors"
	"math"
	"sort"

	"github.com/openmohaa/ladder-core/internal/models"
)

// ErrInvalidResult is returned by Delta when result is not one of {0,1,2}.
// Unlike the component-level ladderr.Kind taxonomy, this is a programmer
// error (spec §7) and is never translated into a user-facing message.
var ErrInvalidResult = errors.New("rating: invalid result")

// Engine computes MMR deltas with a fixed K-factor. The K-factor and
// whether it should vary by games played or race is left to the
// implementer by spec §9 Open Question 2; this engine pins it as a single
// configuration constant, frozen for the lifetime of a process.
type Engine struct {
	K int
}

// DefaultKFactor is the constant pinned by this implementation (spec §9
// Open Question 2). Chosen to keep the S3/S4 test vectors' deltas in a
// legible two-digit range; there is no other significance to the value.
const DefaultKFactor = 32

// NewEngine returns an Engine using DefaultKFactor when k <= 0.
func NewEngine(k int) Engine {
	if k <= 0 {
		k = DefaultKFactor
	}
	return Engine{K: k}
}

// Delta returns the signed MMR delta for player 1 given both players'
// current MMR and a match result (0 = draw, 1 = P1 win, 2 = P2 win).
// Player 2's delta is always -Delta(...). result values outside {0,1,2}
// return ErrInvalidResult.
func (e Engine) Delta(aBefore, bBefore int, result models.MatchResult) (int, error) {
	var scoreA float64
	switch result {
	case models.ResultDraw:
		scoreA = 0.5
	case models.ResultP1Won:
		scoreA = 1
	case models.ResultP2Won:
		scoreA = 0
	default:
		return 0, ErrInvalidResult
	}

	expectedA := 1.0 / (1.0 + math.Pow(10, float64(bBefore-aBefore)/400.0))
	delta := float64(e.K) * (scoreA - expectedA)
	return int(math.Round(delta)), nil
}

// RankLetter buckets an MMR value into a quantile-derived letter grade over
// the supplied population of currently-ranked MMR values for the same
// race. Population must be sorted ascending by the caller's choosing, or
// RankLetter sorts a copy itself; either way the original slice is never
// mutated. Supplemental derived field from spec §3, not specified in
// spec.md's algorithms — see SPEC_FULL.md.
func RankLetter(mmr int, rankedPopulation []int) models.RankLetter {
	if len(rankedPopulation) == 0 {
		return models.RankF
	}
	sorted := make([]int, len(rankedPopulation))
	copy(sorted, rankedPopulation)
	sort.Ints(sorted)

	rank := sort.SearchInts(sorted, mmr)
	quantile := float64(rank) / float64(len(sorted))

	switch {
	case quantile >= 0.95:
		return models.RankS
	case quantile >= 0.80:
		return models.RankA
	case quantile >= 0.55:
		return models.RankB
	case quantile >= 0.30:
		return models.RankC
	case quantile >= 0.10:
		return models.RankD
	default:
		return models.RankF
	}
}
