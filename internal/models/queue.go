package models

import "time"

// QueueEntry is the ephemeral record of a player waiting for a match. At
// most one exists per DiscordUID system-wide (enforced by the matchmaker's
// queue lock, not here).
type QueueEntry struct {
	DiscordUID      int64
	SelectedRaces   []Race // 1 or 2, at most one per title
	VetoedMaps      []string
	MMRByRace       map[Race]int // snapshot taken at enter() time
	EnqueueInstant  time.Time
	WavesWaited     int
	PresenterHandle string // opaque token identifying the one active presenter
}

// MaxMMR returns the highest snapshotted MMR across the entry's selected
// races, used to sort the title-queues in wave partitioning.
func (q QueueEntry) MaxMMR() int {
	max := 0
	first := true
	for _, r := range q.SelectedRaces {
		m := q.MMRByRace[r]
		if first || m > max {
			max = m
			first = false
		}
	}
	return max
}

// Titles returns the distinct titles represented by SelectedRaces.
func (q QueueEntry) Titles() map[Title]bool {
	out := make(map[Title]bool, 2)
	for _, r := range q.SelectedRaces {
		out[r.TitleOf()] = true
	}
	return out
}

// IsDualTitle reports whether the entry has one race selected in each of
// BW and SC2 (the Z bucket of spec §4.4).
func (q QueueEntry) IsDualTitle() bool {
	t := q.Titles()
	return t[TitleBW] && t[TitleSC2]
}

// RaceForTitle returns the selected race for the given title, if any.
func (q QueueEntry) RaceForTitle(t Title) (Race, bool) {
	for _, r := range q.SelectedRaces {
		if r.TitleOf() == t {
			return r, true
		}
	}
	return "", false
}
