// Package matchmaker implements the per-wave scheduler (C4): the queue of
// waiting players and the elastic-MMR, cross-title pairing algorithm that
// runs every wave period.
package matchmaker

import (
	"sync"
	"time"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
)

// MaxVetoes is the cap on vetoed maps per queue entry (spec §3).
const MaxVetoes = 4

// PlayerLookup resolves whether a player exists, is banned, and is
// currently in a live match — the matchmaker consults the hot store only
// through this narrow seam so it never needs direct table access.
type PlayerLookup interface {
	PlayerExists(uid int64) bool
	IsBanned(uid int64) bool
	InLiveMatch(uid int64) bool
	SnapshotMMR(uid int64, race models.Race) int
}

// Queue holds the set of Queue Entries and enforces the "at most one per
// player" invariant (spec invariant 1). All enter/leave/wave operations
// serialize on a single lock, matching spec §5 ("Queue enter/leave
// serializes on a queue-level lock. Wave execution acquires the same
// lock.").
type Queue struct {
	mu      sync.Mutex
	entries map[int64]*models.QueueEntry
	lookup  PlayerLookup
}

// NewQueue constructs an empty Queue.
func NewQueue(lookup PlayerLookup) *Queue {
	return &Queue{
		entries: make(map[int64]*models.QueueEntry),
		lookup:  lookup,
	}
}

// Enter validates and admits uid to the queue. Fails with NotFound (no
// player record), InvalidInput, AuthorizationFailure (banned), or
// InvalidTransition (already enqueued / in a live match).
func (q *Queue) Enter(uid int64, selectedRaces []models.Race, vetoedMaps []string, presenterHandle string) (models.QueueEntry, error) {
	if !q.lookup.PlayerExists(uid) {
		return models.QueueEntry{}, ladderr.New(ladderr.NotFound, "enter: player record does not exist")
	}
	if err := validateSelection(selectedRaces, vetoedMaps); err != nil {
		return models.QueueEntry{}, err
	}
	if q.lookup.IsBanned(uid) {
		return models.QueueEntry{}, ladderr.New(ladderr.AuthorizationFailure, "enter: player is banned")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, already := q.entries[uid]; already {
		return models.QueueEntry{}, ladderr.New(ladderr.InvalidTransition, "enter: player already enqueued")
	}
	if q.lookup.InLiveMatch(uid) {
		return models.QueueEntry{}, ladderr.New(ladderr.InvalidTransition, "enter: player already in a live match")
	}

	snapshot := make(map[models.Race]int, len(selectedRaces))
	for _, r := range selectedRaces {
		snapshot[r] = q.lookup.SnapshotMMR(uid, r)
	}

	entry := &models.QueueEntry{
		DiscordUID:      uid,
		SelectedRaces:   append([]models.Race(nil), selectedRaces...),
		VetoedMaps:      append([]string(nil), vetoedMaps...),
		MMRByRace:       snapshot,
		EnqueueInstant:  time.Now().UTC(),
		WavesWaited:     0,
		PresenterHandle: presenterHandle,
	}
	q.entries[uid] = entry
	return *entry, nil
}

// validateSelection enforces: exactly 1 or 2 races, at most one BW and one
// SC2 race, and at most MaxVetoes vetoed maps.
func validateSelection(races []models.Race, vetoes []string) error {
	if len(races) != 1 && len(races) != 2 {
		return ladderr.New(ladderr.InvalidInput, "must select exactly 1 or 2 races")
	}
	seenTitle := map[models.Title]bool{}
	for _, r := range races {
		if !r.Valid() {
			return ladderr.New(ladderr.InvalidInput, "unknown race")
		}
		t := r.TitleOf()
		if seenTitle[t] {
			return ladderr.New(ladderr.InvalidInput, "at most one race per title")
		}
		seenTitle[t] = true
	}
	if len(vetoes) > MaxVetoes {
		return ladderr.New(ladderr.InvalidInput, "too many vetoed maps")
	}
	return nil
}

// Leave removes uid's queue entry if present. Idempotent.
func (q *Queue) Leave(uid int64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, uid)
}

// IsQueued reports whether uid currently has a queue entry.
func (q *Queue) IsQueued(uid int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.entries[uid]
	return ok
}

// Snapshot returns the DiscordUIDs currently queued, for administrative
// commands (clear_queue) that need to enumerate without pairing them.
func (q *Queue) Snapshot() []int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]int64, 0, len(q.entries))
	for uid := range q.entries {
		out = append(out, uid)
	}
	return out
}

// snapshotEntries returns a defensive copy of all current entries, used by
// RunWave so the pairing algorithm never races with concurrent
// enter/leave calls once it has taken its snapshot (the lock is held only
// long enough to copy, then released for the (possibly slow) pairing
// work, then re-acquired to commit results — mirroring spec §5's
// "cooperative" suspension model: no I/O happens while holding the lock).
func (q *Queue) snapshotEntries() []models.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.QueueEntry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, *e)
	}
	return out
}

// commitWave removes paired players from the queue and increments
// waves_waited for everyone left unmatched.
func (q *Queue) commitWave(paired []Pair, allConsidered []models.QueueEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pairedUIDs := make(map[int64]bool, len(paired)*2)
	for _, p := range paired {
		pairedUIDs[p.Lead.DiscordUID] = true
		pairedUIDs[p.Follow.DiscordUID] = true
	}

	for _, considered := range allConsidered {
		if pairedUIDs[considered.DiscordUID] {
			delete(q.entries, considered.DiscordUID)
			continue
		}
		if e, ok := q.entries[considered.DiscordUID]; ok {
			e.WavesWaited++
		}
	}
}
