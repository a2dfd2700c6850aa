// Package notify implements the fan-out registry (C9): per-match callback
// lists and a single active per-player presenter slot, dispatching the
// seven named lifecycle events with isolated-failure delivery.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/models"
)

// Event names the seven lifecycle events a callback may receive.
type Event string

const (
	EventMatchFound      Event = "match_found"
	EventConfirmed       Event = "confirmed"
	EventMatchComplete   Event = "match_complete"
	EventMatchConflict   Event = "match_conflict"
	EventMatchAbort      Event = "match_abort"
	EventAdminResolution Event = "admin_resolution"
	EventReminder        Event = "reminder"
)

// Payload is the structured data delivered with an event. Match is the
// match record, which holds both players' initial MMRs. The lifecycle
// service fills P1MMRBefore/P1MMRAfter (player 1's live MMR before and
// after the rating change) on match_complete only; no sender fills
// P2MMRBefore/P2MMRAfter, so those and every other event's MMR fields are
// zero.
type Payload struct {
	Event   Event
	Match   models.Match
	P1MMRBefore, P1MMRAfter int
	P2MMRBefore, P2MMRAfter int
	AdminID *int64
	Reason  string
}

// Callback receives a fan-out event. Implementations must not block for
// long; the registry invokes them synchronously in registration order.
type Callback func(Payload)

// Registry holds match-scoped callback lists and per-player single-slot
// presenter callbacks (spec §4.9 — "at most one active presenter per
// player at any time; re-registration replaces").
type Registry struct {
	logger *zap.SugaredLogger

	mu           sync.Mutex
	matchCbs     map[int64][]Callback
	playerCbs    map[int64]Callback
}

// NewRegistry constructs an empty Registry.
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		logger:    logger,
		matchCbs:  make(map[int64][]Callback),
		playerCbs: make(map[int64]Callback),
	}
}

// RegisterMatch appends cb to the callback list for matchID.
func (r *Registry) RegisterMatch(matchID int64, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matchCbs[matchID] = append(r.matchCbs[matchID], cb)
}

// RegisterPlayer sets uid's single active presenter callback, replacing
// any prior registration.
func (r *Registry) RegisterPlayer(uid int64, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playerCbs[uid] = cb
}

// Unregister drops all callbacks for a match (called on terminal
// transition, spec §4.5 "Cleanup").
func (r *Registry) Unregister(matchID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matchCbs, matchID)
}

// UnregisterPlayer clears uid's presenter slot, allowing immediate
// re-registration (spec §4.5: "release the queue lock on both players;
// they may re-enter immediately").
func (r *Registry) UnregisterPlayer(uid int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playerCbs, uid)
}

// Fan out delivers payload to every match-scoped callback for
// payload.Match.ID, then to each participant's player-scoped callback if
// registered, in registration order (spec §5: "Presenter callbacks execute
// in registration order per event but concurrently across different
// matches"). Fan itself makes no concurrency decision for one event's
// callback list; concurrency across matches falls out of C5 calling Fan
// from each match's own goroutine-free call path without holding a
// cross-match lock. Each callback is recovered and logged in isolation —
// one panicking callback never prevents delivery to the rest (spec §4.9:
// "Callback invocation failures are isolated").
func (r *Registry) Fan(payload Payload) {
	r.mu.Lock()
	cbs := append([]Callback(nil), r.matchCbs[payload.Match.ID]...)
	if cb, ok := r.playerCbs[payload.Match.Player1UID]; ok {
		cbs = append(cbs, cb)
	}
	if cb, ok := r.playerCbs[payload.Match.Player2UID]; ok {
		cbs = append(cbs, cb)
	}
	r.mu.Unlock()

	for _, cb := range cbs {
		r.invoke(cb, payload)
	}
}

func (r *Registry) invoke(cb Callback, payload Payload) {
	defer func() {
		if rec := recover(); rec != nil && r.logger != nil {
			r.logger.Errorw("notify: callback panicked", "event", payload.Event, "match_id", payload.Match.ID, "recover", rec)
		}
	}()
	cb(payload)
}
