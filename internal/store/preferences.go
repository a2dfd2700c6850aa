package store

import (
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// GetPreferences returns a snapshot of the player's preferences, or a
// zero-value record if none have been saved yet.
func (s *Store) GetPreferences(uid int64) models.Preferences {
	s.prefsMu.RLock()
	defer s.prefsMu.RUnlock()

	if p, ok := s.prefs[uid]; ok {
		return *p
	}
	return models.Preferences{DiscordUID: uid}
}

// UpdatePreferences overwrites the stored race/veto selections for uid.
// Idempotent upsert — preferences have no existence precondition since
// they are purely a UX convenience, not an invariant-bearing entity.
func (s *Store) UpdatePreferences(uid int64, races []models.Race, vetoes []string) models.Preferences {
	racesCopy := append([]models.Race(nil), races...)
	vetoesCopy := append([]string(nil), vetoes...)

	s.prefsMu.Lock()
	p := &models.Preferences{DiscordUID: uid, LastChosenRaces: racesCopy, LastChosenVetoes: vetoesCopy}
	s.prefs[uid] = p
	snapshot := *p
	s.prefsMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdatePreferences, Preferences: &snapshot})
	return snapshot
}
