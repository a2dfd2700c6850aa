package store

import (
	"time"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// GetPlayer returns a snapshot copy of the player record, or NotFound.
func (s *Store) GetPlayer(uid int64) (models.Player, error) {
	s.playersMu.RLock()
	defer s.playersMu.RUnlock()

	p, ok := s.players[uid]
	if !ok {
		return models.Player{}, ladderr.New(ladderr.NotFound, "player not found")
	}
	return *p, nil
}

// EnsurePlayer gets or creates a minimal player record. Idempotent.
func (s *Store) EnsurePlayer(uid int64) models.Player {
	s.playersMu.Lock()
	p, existed := s.players[uid]
	if !existed {
		now := time.Now().UTC()
		p = &models.Player{
			DiscordUID:      uid,
			RemainingAborts: MaxAborts,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		s.players[uid] = p
	}
	snapshot := *p
	s.playersMu.Unlock()

	if !existed {
		s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindEnsurePlayer, Player: &snapshot})
	}
	return snapshot
}

// MaxAborts is the ceiling (and initial value) for Player.RemainingAborts
// (spec §6 MAX_ABORTS).
const MaxAborts = 3

// UpdatePlayer applies a partial patch to an existing player. Fails loud
// (NotFound) if the player does not already exist: this mutator never
// creates a row.
func (s *Store) UpdatePlayer(uid int64, patch models.PlayerPatch) (models.Player, error) {
	s.playersMu.Lock()
	p, ok := s.players[uid]
	if !ok {
		s.playersMu.Unlock()
		return models.Player{}, ladderr.New(ladderr.NotFound, "update_player: unknown player")
	}

	if patch.PlayerName != nil {
		p.PlayerName = *patch.PlayerName
	}
	if patch.Battletag != nil {
		p.Battletag = *patch.Battletag
	}
	if patch.AltPlayerNames != nil {
		p.AltPlayerNames = *patch.AltPlayerNames
	}
	if patch.Country != nil {
		p.Country = *patch.Country
	}
	if patch.Region != nil {
		p.Region = *patch.Region
	}
	if patch.AcceptedTOS != nil {
		p.AcceptedTOS = *patch.AcceptedTOS
	}
	if patch.CompletedSetup != nil {
		p.CompletedSetup = *patch.CompletedSetup
	}
	if patch.RemainingAborts != nil {
		v := *patch.RemainingAborts
		if v < 0 {
			v = 0
		}
		if v > MaxAborts {
			v = MaxAborts
		}
		p.RemainingAborts = v
	}
	if patch.ShieldBatteryAck != nil {
		p.ShieldBatteryAck = *patch.ShieldBatteryAck
	}
	if patch.IsBanned != nil {
		p.IsBanned = *patch.IsBanned
	}
	p.UpdatedAt = time.Now().UTC()
	snapshot := *p
	s.playersMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdatePlayer, Player: &snapshot, PlayerPatch: &patch})
	return snapshot, nil
}

// SetShieldBatteryAck sets the shield_battery_bug_ack flag.
func (s *Store) SetShieldBatteryAck(uid int64, ack bool) error {
	s.playersMu.Lock()
	p, ok := s.players[uid]
	if !ok {
		s.playersMu.Unlock()
		return ladderr.New(ladderr.NotFound, "set_shield_battery_bug_ack: unknown player")
	}
	p.ShieldBatteryAck = ack
	p.UpdatedAt = time.Now().UTC()
	s.playersMu.Unlock()

	v := ack
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindSetShieldBatteryAck, MatchID: 0, Bool: &v, Player: &models.Player{DiscordUID: uid}})
	return nil
}

// SetIsBanned sets the is_banned flag.
func (s *Store) SetIsBanned(uid int64, banned bool) error {
	s.playersMu.Lock()
	p, ok := s.players[uid]
	if !ok {
		s.playersMu.Unlock()
		return ladderr.New(ladderr.NotFound, "set_is_banned: unknown player")
	}
	p.IsBanned = banned
	p.UpdatedAt = time.Now().UTC()
	s.playersMu.Unlock()

	v := banned
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindSetIsBanned, Bool: &v, Player: &models.Player{DiscordUID: uid}})
	return nil
}

// DecrementAborts decrements remaining_aborts by 1, floored at 0, and
// returns the resulting count. Used by the self-abort report path.
func (s *Store) DecrementAborts(uid int64) (int, error) {
	s.playersMu.Lock()
	p, ok := s.players[uid]
	if !ok {
		s.playersMu.Unlock()
		return 0, ladderr.New(ladderr.NotFound, "decrement_aborts: unknown player")
	}
	if p.RemainingAborts > 0 {
		p.RemainingAborts--
	}
	p.UpdatedAt = time.Now().UTC()
	remaining := p.RemainingAborts
	snapshot := *p
	s.playersMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdatePlayer, Player: &snapshot})
	return remaining, nil
}

// RecordPlayerActionLog enqueues an audit row without mutating hot-store
// player state (the caller already applied the change via UpdatePlayer or
// a Set* method).
func (s *Store) RecordPlayerActionLog(log models.PlayerActionLog) {
	log.ChangedAt = time.Now().UTC()
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindPlayerActionLog, PlayerActionLog: &log})
}

// RecordCommandCall enqueues a command_calls audit row.
func (s *Store) RecordCommandCall(uid int64, command string) {
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindCommandCall, CommandCall: &models.CommandCall{
		DiscordUID: uid,
		Command:    command,
		At:         time.Now().UTC(),
	}})
}
