package store

import (
	"time"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// DefaultMMR is the starting rating for a race an existing player has
// never queued for. Spec §3 does not name a starting value; we pin it to
// a standard Elo floor used by every comparable ladder in the pack.
const DefaultMMR = 1000

// GetMMR returns a snapshot of the (uid, race) entry. If the entry does
// not exist yet, a zero-value entry seeded at DefaultMMR is returned
// without creating a row — callers who need persistence call EnsureMMR.
func (s *Store) GetMMR(uid int64, race models.Race) (models.MMREntry, error) {
	if !race.Valid() {
		return models.MMREntry{}, ladderr.New(ladderr.InvalidInput, "unknown race")
	}

	s.mmrsMu.RLock()
	defer s.mmrsMu.RUnlock()

	if e, ok := s.mmrs[mmrKey{uid, race}]; ok {
		return *e, nil
	}
	return models.MMREntry{DiscordUID: uid, Race: race, MMR: DefaultMMR}, nil
}

// EnsureMMR gets or creates the (uid, race) row, seeding MMR at
// DefaultMMR. Idempotent.
func (s *Store) EnsureMMR(uid int64, race models.Race) (models.MMREntry, error) {
	if !race.Valid() {
		return models.MMREntry{}, ladderr.New(ladderr.InvalidInput, "unknown race")
	}

	key := mmrKey{uid, race}
	s.mmrsMu.Lock()
	e, existed := s.mmrs[key]
	if !existed {
		e = &models.MMREntry{DiscordUID: uid, Race: race, MMR: DefaultMMR}
		s.mmrs[key] = e
	}
	snapshot := *e
	s.mmrsMu.Unlock()

	if !existed {
		s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdateMMR, MMREntry: &snapshot})
	}
	return snapshot, nil
}

// UpdateMMR sets a new MMR value and optionally applies game-stat deltas.
// Fails loud if the (uid, race) row does not exist — callers must
// EnsureMMR first, mirroring update_mmr's documented precondition.
func (s *Store) UpdateMMR(uid int64, race models.Race, newMMR int, delta *models.GameStatDelta) (models.MMREntry, error) {
	key := mmrKey{uid, race}
	s.mmrsMu.Lock()
	e, ok := s.mmrs[key]
	if !ok {
		s.mmrsMu.Unlock()
		return models.MMREntry{}, ladderr.New(ladderr.NotFound, "update_mmr: unknown mmr entry")
	}

	if delta != nil {
		played := e.GamesPlayed + delta.Played
		won := e.GamesWon + delta.Won
		lost := e.GamesLost + delta.Lost
		drawn := e.GamesDrawn + delta.Drawn
		if played != won+lost+drawn {
			s.mmrsMu.Unlock()
			return models.MMREntry{}, ladderr.New(ladderr.IntegrityViolation, "games_played != won+lost+drawn")
		}
		e.GamesPlayed, e.GamesWon, e.GamesLost, e.GamesDrawn = played, won, lost, drawn
		if delta.Played != 0 {
			e.LastPlayed = time.Now().UTC()
		}
	}
	e.MMR = newMMR
	snapshot := *e
	s.mmrsMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdateMMR, MMREntry: &snapshot, GameStatDelta: delta})
	return snapshot, nil
}

// SetMMROnly adjusts the MMR value without touching any game-stat column
// (the admin adjust_mmr / override path — spec invariant 5: "after any
// adjust_mmr, games_played and W/L/D are unchanged").
func (s *Store) SetMMROnly(uid int64, race models.Race, newMMR int) (models.MMREntry, error) {
	return s.UpdateMMR(uid, race, newMMR, nil)
}

// RankedPopulation returns the current MMR values of every ranked entry
// for a race (supplemental §3 "rank letter" derived field).
func (s *Store) RankedPopulation(race models.Race, now time.Time) []int {
	s.mmrsMu.RLock()
	defer s.mmrsMu.RUnlock()

	var pop []int
	for k, e := range s.mmrs {
		if k.Race != race {
			continue
		}
		if e.Ranked(now) {
			pop = append(pop, e.MMR)
		}
	}
	return pop
}
