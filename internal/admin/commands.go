package admin

import (
	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
)

// QueueStore is the subset of the matchmaker queue the remove_from_queue
// and clear_queue commands act on.
type QueueStore interface {
	Leave(uid int64)
	Snapshot() []int64
}

// PlayerStore is the subset of the hot store the remaining administrative
// commands (adjust_mmr, reset_aborts, ban) act on.
type PlayerStore interface {
	GetMMR(uid int64, race models.Race) (models.MMREntry, error)
	SetMMROnly(uid int64, race models.Race, newMMR int) (models.MMREntry, error)
	UpdatePlayer(uid int64, patch models.PlayerPatch) (models.Player, error)
	SetIsBanned(uid int64, banned bool) error
}

// CommandsService implements the five administrative commands (spec §6)
// that are not resolve(): adjust_mmr, remove_from_queue, reset_aborts,
// clear_queue, ban. Kept as a separate type from Service so a deployment
// that only wants resolve()'s idempotence-critical path can wire it
// without the rest of the admin surface.
type CommandsService struct {
	players PlayerStore
	queue   QueueStore
}

// NewCommandsService constructs a CommandsService.
func NewCommandsService(players PlayerStore, queue QueueStore) *CommandsService {
	return &CommandsService{players: players, queue: queue}
}

// AdjustMMR applies op to uid's (race) MMR. Per invariant 5, this never
// touches games_played/W/L/D — SetMMROnly's contract guarantees that.
func (c *CommandsService) AdjustMMR(uid int64, race models.Race, op models.MMRAdjustOp, value int, reason string) (models.MMREntry, error) {
	current, err := c.players.GetMMR(uid, race)
	if err != nil {
		return models.MMREntry{}, err
	}

	var newMMR int
	switch op {
	case models.MMRAdjustAdd:
		newMMR = current.MMR + value
	case models.MMRAdjustSubtract:
		newMMR = current.MMR - value
	case models.MMRAdjustSet:
		newMMR = value
	default:
		return models.MMREntry{}, ladderr.New(ladderr.InvalidInput, "adjust_mmr: unknown op")
	}

	return c.players.SetMMROnly(uid, race, newMMR)
}

// RemoveFromQueue drops uid from the matchmaker queue, if present.
// Idempotent, matching Queue.Leave.
func (c *CommandsService) RemoveFromQueue(uid int64, reason string) {
	c.queue.Leave(uid)
}

// ClearQueue removes every currently-queued player.
func (c *CommandsService) ClearQueue(reason string) {
	for _, uid := range c.queue.Snapshot() {
		c.queue.Leave(uid)
	}
}

// ResetAborts restores uid's remaining_aborts to newCount, clamped to
// [0, store.MaxAborts] by UpdatePlayer's patch application.
func (c *CommandsService) ResetAborts(uid int64, newCount int, reason string) (models.Player, error) {
	return c.players.UpdatePlayer(uid, models.PlayerPatch{RemainingAborts: &newCount})
}

// Ban sets is_banned for uid, which blocks future queue entry (matchmaker
// rejects Enter for a banned player).
func (c *CommandsService) Ban(uid int64, reason string) error {
	return c.players.SetIsBanned(uid, true)
}
