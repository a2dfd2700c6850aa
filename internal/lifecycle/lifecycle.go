// Package lifecycle implements the match lifecycle service (C5): per-match
// confirmation and abort timers, report collection, and the concurrency
// guard that lets exactly one completion handler fire per match.
package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/notify"
	"github.com/openmohaa/ladder-core/internal/ratelimit"
	"github.com/openmohaa/ladder-core/internal/rating"
)

// DefaultConfirmTimer and DefaultAbortTimer are spec §4.5's implementation
// defaults.
const (
	DefaultConfirmTimer = 60 * time.Second
	DefaultAbortTimer   = 180 * time.Second
)

// ReminderFraction is the point in the abort timer's lifetime (measured
// from match start) at which an unconfirmed player receives a low-priority
// reminder (spec §4.5: "ABORT_TIMER/3").
const ReminderFraction = 1.0 / 3.0

// matchState is the live bookkeeping for one in-flight match: its
// per-match lock (spec §5's "one lock per live match"), its three timers,
// and whether it has already produced a terminal transition (the
// "already-processed set" referenced by the admin override's terminal
// path, spec §4.6).
type matchState struct {
	mu sync.Mutex

	processed bool

	confirmTimer *time.Timer
	abortTimer   *time.Timer
	reminderTimer *time.Timer
}

// Service runs the confirmation/abort timers and record_report state
// machine for every live match.
type Service struct {
	store    Store
	rating   rating.Engine
	notifier *notify.Registry
	limiter  *ratelimit.Limiter
	logger   *zap.SugaredLogger

	confirmTimer     time.Duration
	abortTimer       time.Duration
	reminderFraction float64

	mu      sync.Mutex
	matches map[int64]*matchState
}

// Config configures a Service's timer durations, falling back to the spec
// defaults for zero values.
type Config struct {
	ConfirmTimer     time.Duration
	AbortTimer       time.Duration
	ReminderFraction float64
}

// NewService constructs a Service.
func NewService(store Store, ratingEngine rating.Engine, notifier *notify.Registry, limiter *ratelimit.Limiter, cfg Config, logger *zap.SugaredLogger) *Service {
	if cfg.ConfirmTimer <= 0 {
		cfg.ConfirmTimer = DefaultConfirmTimer
	}
	if cfg.AbortTimer <= 0 {
		cfg.AbortTimer = DefaultAbortTimer
	}
	if cfg.ReminderFraction <= 0 {
		cfg.ReminderFraction = ReminderFraction
	}
	return &Service{
		store:            store,
		rating:           ratingEngine,
		notifier:         notifier,
		limiter:          limiter,
		logger:           logger,
		confirmTimer:     cfg.ConfirmTimer,
		abortTimer:       cfg.AbortTimer,
		reminderFraction: cfg.ReminderFraction,
		matches:          make(map[int64]*matchState),
	}
}

// BeginLifecycle registers a freshly created match, starts its timers, and
// fans out match_found. Called by the matchmaker immediately after
// Hot Store.create_match (spec §4.4 "Hands the new match_id to C5 to
// begin lifecycle").
func (s *Service) BeginLifecycle(match models.Match) {
	state := &matchState{}

	s.mu.Lock()
	s.matches[match.ID] = state
	s.mu.Unlock()

	state.confirmTimer = time.AfterFunc(s.confirmTimer, func() { s.onConfirmExpiry(match.ID) })
	state.abortTimer = time.AfterFunc(s.abortTimer, func() { s.onAbortExpiry(match.ID) })
	reminderAt := time.Duration(float64(s.abortTimer) * s.reminderFraction)
	state.reminderTimer = time.AfterFunc(reminderAt, func() { s.onReminder(match.ID) })

	s.fan(notify.EventMatchFound, match, 0, 0, nil, "")
}

// state returns the matchState for id, or nil if the match is not (or no
// longer) tracked.
func (s *Service) state(id int64) *matchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches[id]
}

// Confirm records that uid confirmed match id. When both players have
// confirmed, the confirmation timer is cancelled and play begins.
func (s *Service) Confirm(matchID, uid int64) error {
	match, err := s.store.SetConfirmed(matchID, uid)
	if err != nil {
		return err
	}
	if _, ok := match.Participant(uid); !ok {
		return ladderr.New(ladderr.AuthorizationFailure, "confirm: not a participant")
	}

	st := s.state(matchID)
	if st == nil {
		return nil
	}
	if match.Confirmed[match.Player1UID] && match.Confirmed[match.Player2UID] {
		st.mu.Lock()
		if st.confirmTimer != nil {
			st.confirmTimer.Stop()
		}
		st.mu.Unlock()
		s.fan(notify.EventConfirmed, match, 0, 0, nil, "")
	}
	return nil
}

// onConfirmExpiry fires the no-show procedure if the match has not
// already reached a terminal state by the time the confirmation timer
// expires (spec §4.5).
func (s *Service) onConfirmExpiry(matchID int64) {
	s.expireAsNoShow(matchID)
}

// onAbortExpiry applies the same no-show procedure at the outer abort
// deadline, covering matches that never reached confirmation completion
// by some other path.
func (s *Service) onAbortExpiry(matchID int64) {
	s.expireAsNoShow(matchID)
}

// onReminder sends a low-priority reminder to any player who has not yet
// confirmed. Routed through the rate limiter since reminders are
// explicitly non-critical (spec §4.8). The match is still live at this
// point, so this fans EventReminder, never EventMatchAbort — the match
// may still be confirmed and played out after the reminder fires.
func (s *Service) onReminder(matchID int64) {
	match, err := s.store.GetMatch(matchID)
	if err != nil || match.Terminal() {
		return
	}
	if match.Confirmed[match.Player1UID] && match.Confirmed[match.Player2UID] {
		return
	}
	if s.limiter == nil {
		return
	}
	s.limiter.Submit(func() {
		s.fan(notify.EventReminder, match, 0, 0, nil, "")
	})
}

// noShowReason names which player(s) caused the timer-expiry no-show, per
// spec §7's user-visible cause strings (scenarios S5/S6).
func noShowReason(match models.Match) string {
	p1Confirmed := match.Confirmed[match.Player1UID]
	p2Confirmed := match.Confirmed[match.Player2UID]
	switch {
	case !p1Confirmed && !p2Confirmed:
		return "neither player confirmed"
	case !p1Confirmed:
		return fmt.Sprintf("only %d did not confirm", match.Player1UID)
	default:
		return fmt.Sprintf("only %d did not confirm", match.Player2UID)
	}
}

// expireAsNoShow applies spec §4.5's timer-expiry procedure: unconfirmed
// players are marked no-show, confirmed players keep a nil report,
// match_result is set to aborted, and no abort-counter decrement occurs.
func (s *Service) expireAsNoShow(matchID int64) {
	st := s.state(matchID)
	if st == nil {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.processed {
		return
	}

	match, err := s.store.GetMatch(matchID)
	if err != nil || match.Terminal() {
		return
	}
	reason := noShowReason(match)

	// Only players who never confirmed become no-show; a confirmed
	// player's report stays None (spec §4.5). If neither confirmed, both
	// slots are written via the single atomic record_system_abort step;
	// otherwise each unconfirmed slot is written individually so the
	// confirmed side's report is left untouched.
	if !match.Confirmed[match.Player1UID] && !match.Confirmed[match.Player2UID] {
		if _, err := s.store.RecordSystemAbort(matchID, models.ReportNoShow, models.ReportNoShow); err != nil {
			if s.logger != nil {
				s.logger.Errorw("lifecycle: record_system_abort failed", "match_id", matchID, "error", err, "reason", reason)
			}
			return
		}
	} else {
		if !match.Confirmed[match.Player1UID] {
			if _, err := s.store.UpdateMatchReport(matchID, 1, models.ReportNoShow); err != nil && s.logger != nil {
				s.logger.Warnw("lifecycle: update_match_report failed", "match_id", matchID, "error", err)
			}
		}
		if !match.Confirmed[match.Player2UID] {
			if _, err := s.store.UpdateMatchReport(matchID, 2, models.ReportNoShow); err != nil && s.logger != nil {
				s.logger.Warnw("lifecycle: update_match_report failed", "match_id", matchID, "error", err)
			}
		}
		if _, err := s.store.SetMatchResult(matchID, models.ResultAborted); err != nil {
			if s.logger != nil {
				s.logger.Errorw("lifecycle: set_match_result failed", "match_id", matchID, "error", err)
			}
			return
		}
	}

	updated, err := s.store.GetMatch(matchID)
	if err != nil {
		return
	}

	st.processed = true
	s.cancelTimers(st)
	s.cleanup(matchID)
	s.fan(notify.EventMatchAbort, updated, 0, 0, nil, reason)
}

// RecordReport implements spec §4.5's record_report contract. value must
// be one of {0, 1, 2, -3}; -3 is a self-initiated abort and decrements the
// submitter's remaining_aborts.
func (s *Service) RecordReport(matchID, uid int64, value int) (models.Match, error) {
	if !models.ValidReportValue(value) {
		return models.Match{}, ladderr.New(ladderr.InvalidInput, "record_report: invalid report value")
	}

	st := s.state(matchID)
	if st == nil {
		if m, gerr := s.store.GetMatch(matchID); gerr == nil && m.Terminal() {
			return models.Match{}, ladderr.New(ladderr.InvalidTransition, "record_report: match already terminal")
		}
		return models.Match{}, ladderr.New(ladderr.NotFound, "record_report: unknown or already-closed match")
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	match, err := s.store.GetMatch(matchID)
	if err != nil {
		return models.Match{}, err
	}
	if match.Terminal() || st.processed {
		return models.Match{}, ladderr.New(ladderr.InvalidTransition, "record_report: match already terminal")
	}
	slot, ok := match.Participant(uid)
	if !ok {
		return models.Match{}, ladderr.New(ladderr.AuthorizationFailure, "record_report: not a participant")
	}

	report := models.Report(value)
	if report == models.ReportSelfAbort {
		if _, derr := s.store.DecrementAborts(uid); derr != nil && s.logger != nil {
			s.logger.Warnw("lifecycle: decrement_aborts failed", "uid", uid, "error", derr)
		}
	}

	match, err = s.store.UpdateMatchReport(matchID, slot, report)
	if err != nil {
		return models.Match{}, err
	}
	if !match.BothReported() {
		return match, nil
	}

	return s.resolveBothReported(st, match)
}

// resolveBothReported classifies the completed report pair and drives the
// appropriate terminal transition, per spec §4.5's three cases. Caller
// must hold st.mu.
func (s *Service) resolveBothReported(st *matchState, match models.Match) (models.Match, error) {
	p1, p2 := *match.Player1Report, *match.Player2Report

	switch {
	case isAbortLike(p1) || isAbortLike(p2):
		updated, err := s.store.SetMatchResult(match.ID, models.ResultAborted)
		if err != nil {
			return models.Match{}, err
		}
		st.processed = true
		s.cancelTimers(st)
		s.cleanup(match.ID)
		s.fan(notify.EventMatchAbort, updated, 0, 0, nil, selfAbortReason(match, p1, p2))
		return updated, nil

	case p1 == p2:
		return s.completeAgreed(st, match, p1)

	default:
		updated, err := s.store.SetMatchResult(match.ID, models.ResultConflict)
		if err != nil {
			return models.Match{}, err
		}
		st.processed = true
		s.cancelTimers(st)
		s.cleanup(match.ID)
		s.fan(notify.EventMatchConflict, updated, 0, 0, nil, "")
		return updated, nil
	}
}

func isAbortLike(r models.Report) bool {
	return r == models.ReportSelfAbort || r == models.ReportNoShow
}

// selfAbortReason names the player whose self-abort report drove this
// terminal transition, per spec §7's "<player> aborted" cause string
// (scenario S6). RecordReport only ever accepts ReportSelfAbort from a
// participant (ReportNoShow is system-assigned, never player-submitted),
// so at least one side here is always a self-abort.
func selfAbortReason(match models.Match, p1, p2 models.Report) string {
	p1Aborted := p1 == models.ReportSelfAbort
	p2Aborted := p2 == models.ReportSelfAbort
	switch {
	case p1Aborted && p2Aborted:
		return fmt.Sprintf("%d and %d both aborted", match.Player1UID, match.Player2UID)
	case p1Aborted:
		return fmt.Sprintf("%d aborted", match.Player1UID)
	case p2Aborted:
		return fmt.Sprintf("%d aborted", match.Player2UID)
	default:
		return noShowReason(match)
	}
}

// completeAgreed applies the rating delta for an agreed result and marks
// the match complete. Caller must hold st.mu.
func (s *Service) completeAgreed(st *matchState, match models.Match, agreed models.Report) (models.Match, error) {
	result := models.MatchResult(agreed)

	delta, err := s.rating.Delta(match.Player1MMR, match.Player2MMR, result)
	if err != nil {
		return models.Match{}, ladderr.Wrap(ladderr.IntegrityViolation, "complete: rating engine rejected result", err)
	}

	p1Before, err := s.store.GetMMR(match.Player1UID, match.Player1Race)
	if err != nil {
		return models.Match{}, err
	}
	p2Before, err := s.store.GetMMR(match.Player2UID, match.Player2Race)
	if err != nil {
		return models.Match{}, err
	}

	p1Delta := &models.GameStatDelta{Played: 1}
	p2Delta := &models.GameStatDelta{Played: 1}
	switch result {
	case models.ResultDraw:
		p1Delta.Drawn, p2Delta.Drawn = 1, 1
	case models.ResultP1Won:
		p1Delta.Won, p2Delta.Lost = 1, 1
	case models.ResultP2Won:
		p1Delta.Lost, p2Delta.Won = 1, 1
	}

	if _, err := s.store.UpdateMMR(match.Player1UID, match.Player1Race, p1Before.MMR+delta, p1Delta); err != nil {
		return models.Match{}, err
	}
	if _, err := s.store.UpdateMMR(match.Player2UID, match.Player2Race, p2Before.MMR-delta, p2Delta); err != nil {
		return models.Match{}, err
	}

	updated, err := s.store.SetMatchResult(match.ID, result)
	if err != nil {
		return models.Match{}, err
	}
	updated, err = s.store.UpdateMatchMMRChange(match.ID, delta)
	if err != nil {
		return models.Match{}, err
	}

	st.processed = true
	s.cancelTimers(st)
	s.cleanup(match.ID)

	s.fan(notify.EventMatchComplete, updated, p1Before.MMR, p1Before.MMR+delta, nil, "")
	return updated, nil
}

// cancelTimers stops all three of a match's timers. Caller must hold
// st.mu.
func (s *Service) cancelTimers(st *matchState) {
	if st.confirmTimer != nil {
		st.confirmTimer.Stop()
	}
	if st.abortTimer != nil {
		st.abortTimer.Stop()
	}
	if st.reminderTimer != nil {
		st.reminderTimer.Stop()
	}
}

// cleanup unregisters a terminal match from the live registry (spec
// §4.5's "Cleanup": cancel timers, unregister presenter callbacks).
func (s *Service) cleanup(matchID int64) {
	s.notifier.Unregister(matchID)

	s.mu.Lock()
	delete(s.matches, matchID)
	s.mu.Unlock()
}

// Reopen removes a match from the already-processed set, allowing the
// admin override's terminal path to drive a fresh transition against the
// same match id (spec §4.6: "remove the match from the already-processed
// set held by C5").
func (s *Service) Reopen(matchID int64) {
	s.mu.Lock()
	st, ok := s.matches[matchID]
	if !ok {
		st = &matchState{}
		s.matches[matchID] = st
	}
	s.mu.Unlock()

	st.mu.Lock()
	st.processed = false
	s.cancelTimers(st)
	st.mu.Unlock()
}

func (s *Service) fan(event notify.Event, match models.Match, before, after int, adminID *int64, reason string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Fan(notify.Payload{
		Event:       event,
		Match:       match,
		P1MMRBefore: before,
		P1MMRAfter:  after,
		AdminID:     adminID,
		Reason:      reason,
	})
}
