// Package store implements the single-writer in-memory hot store (C1): the
// sole authority for players, MMR entries, preferences, matches, and replay
// metadata. Every mutation is applied atomically against an in-process
// table and then queued for durable write-behind; reads never block on
// durable I/O. Grounded in the teacher's mutex-guarded service structs and
// in the pack's squash-ladder Model (RWMutex-protected table + append-only
// log of the mutations applied to it).
package store

import (
	"sync"

	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// Enqueuer is the subset of writequeue.Queue the hot store depends on. A
// narrow interface keeps store testable without a real queue.
type Enqueuer interface {
	Enqueue(job writequeue.Job) bool
}

// noopEnqueuer drops every job; used only when a Store is built without a
// durable backing (tests that only care about in-memory semantics).
type noopEnqueuer struct{}

func (noopEnqueuer) Enqueue(writequeue.Job) bool { return true }

// mmrKey is the (discord_uid, race) unique key for the MMR table.
type mmrKey struct {
	UID  int64
	Race models.Race
}

// Store is the process-wide in-memory authority for all ladder state.
type Store struct {
	logger *zap.SugaredLogger
	queue  Enqueuer

	playersMu sync.RWMutex
	players   map[int64]*models.Player

	mmrsMu sync.RWMutex
	mmrs   map[mmrKey]*models.MMREntry

	prefsMu sync.RWMutex
	prefs   map[int64]*models.Preferences

	matchesMu   sync.RWMutex
	matches     map[int64]*models.Match
	nextMatchID int64

	replaysMu sync.RWMutex
	replays   map[string]*models.Replay // keyed by replay_path
}

// New constructs an empty Store. If queue is nil, mutations are not
// durably queued (suitable for unit tests of in-memory semantics only).
func New(logger *zap.Logger, queue Enqueuer) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if queue == nil {
		queue = noopEnqueuer{}
	}
	return &Store{
		logger:  logger.Sugar(),
		queue:   queue,
		players: make(map[int64]*models.Player),
		mmrs:    make(map[mmrKey]*models.MMREntry),
		prefs:   make(map[int64]*models.Preferences),
		matches: make(map[int64]*models.Match),
		replays: make(map[string]*models.Replay),
	}
}
