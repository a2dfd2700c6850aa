package matchmaker

import (
	"sort"

	"github.com/openmohaa/ladder-core/internal/models"
)

// Pair is one proposed pairing produced by a wave run. Lead is drawn from
// the lead side (the smaller title-queue after Z-dumping); Follow from the
// other.
type Pair struct {
	Lead   models.QueueEntry
	LeadRace   models.Race
	Follow models.QueueEntry
	FollowRace models.Race
}

// windowParams returns the (base, growth, step) triple for queue size q,
// per spec §4.4 step 6's size-bucketed table.
func windowParams(q int) (base, growth, step int) {
	switch {
	case q < 6:
		return 125, 75, 6
	case q < 12:
		return 100, 50, 6
	default:
		return 75, 25, 6
	}
}

// ElasticWindow computes max_diff for a LEAD player with the given
// waves_waited, at queue size q. Exported so S1 in the scenario suite can
// assert the exact arithmetic independent of a full wave run.
func ElasticWindow(q, wavesWaited int) int {
	base, growth, step := windowParams(q)
	return base + (wavesWaited/step)*growth
}

// mean returns the arithmetic mean of a QueueEntry slice's MaxMMR, or 0 for
// an empty slice.
func mean(entries []models.QueueEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.MaxMMR()
	}
	return float64(sum) / float64(len(entries))
}

// partition splits entries into X (BW-only), Y (SC2-only), Z (dual-title),
// each sorted by MaxMMR descending, per spec §4.4 step 1.
func partition(entries []models.QueueEntry) (x, y, z []models.QueueEntry) {
	for _, e := range entries {
		switch {
		case e.IsDualTitle():
			z = append(z, e)
		case e.Titles()[models.TitleBW]:
			x = append(x, e)
		case e.Titles()[models.TitleSC2]:
			y = append(y, e)
		}
	}
	sortDesc := func(s []models.QueueEntry) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].MaxMMR() > s[j].MaxMMR() })
	}
	sortDesc(x)
	sortDesc(y)
	sortDesc(z)
	return x, y, z
}

// balance dumps Z into X and Y until they are of equal length or Z is
// exhausted, per spec §4.4 step 2.
func balance(x, y, z []models.QueueEntry) (xp, yp []models.QueueEntry) {
	xp = append([]models.QueueEntry(nil), x...)
	yp = append([]models.QueueEntry(nil), y...)
	zp := append([]models.QueueEntry(nil), z...)

	alternateToX := true
	for len(xp) != len(yp) && len(zp) > 0 {
		smallerIsX := len(xp) < len(yp)
		var target *[]models.QueueEntry
		var other []models.QueueEntry
		if smallerIsX {
			target, other = &xp, yp
		} else {
			target, other = &yp, xp
		}

		meanTarget, meanOther := mean(*target), mean(other)

		var idx int
		if meanTarget == meanOther {
			// Tie: alternate which extreme of Z is pulled.
			if alternateToX {
				idx = 0 // highest-MMR (z sorted descending)
			} else {
				idx = len(zp) - 1 // lowest-MMR
			}
			alternateToX = !alternateToX
		} else if meanTarget < meanOther {
			idx = 0 // highest-MMR Z-player
		} else {
			idx = len(zp) - 1 // lowest-MMR Z-player
		}

		picked := zp[idx]
		zp = append(zp[:idx], zp[idx+1:]...)
		*target = append(*target, picked)
	}
	return xp, yp
}

// selectLead picks the LEAD side between the balanced X'/Y' partitions, per
// spec §4.4 step 3: the smaller side leads; a true tie (|X'| == |Y'|) picks
// Y' (SC2) as LEAD, exercised directly by scenario S2.
func selectLead(xp, yp []models.QueueEntry) (lead, follow []models.QueueEntry, leadTitle, followTitle models.Title) {
	if len(xp) < len(yp) {
		return xp, yp, models.TitleBW, models.TitleSC2
	}
	return yp, xp, models.TitleSC2, models.TitleBW
}

// RunWave executes a single matchmaking wave: snapshot, pair, and commit.
// The pairing work (steps 3-6 of spec §4.4) happens without holding the
// queue lock; only the snapshot and commit phases touch it.
func (q *Queue) RunWave() []Pair {
	entries := q.snapshotEntries()
	qSize := len(entries)

	x, y, z := partition(entries)
	xp, yp := balance(x, y, z)

	lead, follow, leadRaceTitle, followRaceTitle := selectLead(xp, yp)

	leadMean := mean(lead)

	type scored struct {
		entry    models.QueueEntry
		priority float64
	}
	scoredLead := make([]scored, 0, len(lead))
	for _, e := range lead {
		priority := absFloat(float64(e.MaxMMR())-leadMean) + 10*float64(e.WavesWaited)
		scoredLead = append(scoredLead, scored{e, priority})
	}
	sort.SliceStable(scoredLead, func(i, j int) bool { return scoredLead[i].priority > scoredLead[j].priority })

	available := make([]models.QueueEntry, len(follow))
	copy(available, follow)
	taken := make(map[int64]bool, len(available))

	var pairs []Pair
	for _, sl := range scoredLead {
		leadEntry := sl.entry
		maxDiff := ElasticWindow(qSize, leadEntry.WavesWaited)
		leadRace, _ := leadEntry.RaceForTitle(leadRaceTitle)
		leadMMR := leadEntry.MMRByRace[leadRace]

		bestIdx := -1
		bestDist := -1
		for i, f := range available {
			if taken[f.DiscordUID] {
				continue
			}
			followRace, ok := f.RaceForTitle(followRaceTitle)
			if !ok {
				continue
			}
			followMMR := f.MMRByRace[followRace]
			dist := abs(leadMMR - followMMR)
			if dist > maxDiff {
				continue
			}
			if bestIdx == -1 || dist < bestDist ||
				(dist == bestDist && betterFollow(f, available[bestIdx])) {
				bestIdx, bestDist = i, dist
			}
		}
		if bestIdx == -1 {
			continue
		}

		followEntry := available[bestIdx]
		taken[followEntry.DiscordUID] = true
		followRace, _ := followEntry.RaceForTitle(followRaceTitle)

		pairs = append(pairs, Pair{
			Lead:       leadEntry,
			LeadRace:   leadRace,
			Follow:     followEntry,
			FollowRace: followRace,
		})
	}

	q.commitWave(pairs, entries)
	return pairs
}

// betterFollow reports whether candidate a should be preferred over b at an
// equal MMR-distance tie: lower waves_waited first, then lower MMR (spec
// §4.4 step 6's tie-break).
func betterFollow(a, b models.QueueEntry) bool {
	if a.WavesWaited != b.WavesWaited {
		return a.WavesWaited < b.WavesWaited
	}
	return a.MaxMMR() < b.MaxMMR()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func absFloat(n float64) float64 {
	if n < 0 {
		return -n
	}
	return n
}
