package store

import "github.com/openmohaa/ladder-core/internal/models"

// SnapshotMMR returns uid's current MMR for race, seeded at DefaultMMR if
// no entry exists yet. Used by the matchmaker to snapshot MMR at enter()
// time without creating a durable row for a race the player has never
// queued before.
func (s *Store) SnapshotMMR(uid int64, race models.Race) int {
	e, err := s.GetMMR(uid, race)
	if err != nil {
		return DefaultMMR
	}
	return e.MMR
}

// IsBanned reports whether uid is banned. Unknown players are treated as
// not banned; callers that must distinguish "unknown" use GetPlayer.
func (s *Store) IsBanned(uid int64) bool {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()

	p, ok := s.players[uid]
	return ok && p.IsBanned
}

// PlayerExists reports whether a player record exists for uid.
func (s *Store) PlayerExists(uid int64) bool {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()

	_, ok := s.players[uid]
	return ok
}

// InLiveMatch reports whether uid participates in any non-terminal match.
func (s *Store) InLiveMatch(uid int64) bool {
	s.matchesMu.RLock()
	defer s.matchesMu.RUnlock()

	for _, m := range s.matches {
		if _, ok := m.Participant(uid); ok && !m.Terminal() {
			return true
		}
	}
	return false
}
