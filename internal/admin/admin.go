// Package admin implements the administrative override (C6): resolve(),
// whose fresh-path/terminal-path dichotomy is selected entirely by the
// match's stored data, never by a status flag, and whose repeated
// application obeys the idempotence law (spec §4.6).
package admin

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/notify"
	"github.com/openmohaa/ladder-core/internal/rating"
)

// Store is the subset of the hot store resolve() needs.
type Store interface {
	GetMatch(id int64) (models.Match, error)
	UpdateMatchReport(id int64, which int, value models.Report) (models.Match, error)
	SetMatchResult(id int64, result models.MatchResult) (models.Match, error)
	UpdateMatchMMRChange(id int64, change int) (models.Match, error)
	SetMMROnly(uid int64, race models.Race, newMMR int) (models.MMREntry, error)
	UpdateMMR(uid int64, race models.Race, newMMR int, delta *models.GameStatDelta) (models.MMREntry, error)
	RecordAdminAction(action models.AdminAction)
}

// Lifecycle is the subset of C5 the terminal path depends on: removing a
// match from the already-processed set so a later record_report-style
// transition can run again (spec §4.6 step (a)).
type Lifecycle interface {
	Reopen(matchID int64)
}

// Service implements resolve().
type Service struct {
	store     Store
	lifecycle Lifecycle
	rating    rating.Engine
	notifier  *notify.Registry
	logger    *zap.SugaredLogger
}

// NewService constructs a Service.
func NewService(store Store, lifecycle Lifecycle, ratingEngine rating.Engine, notifier *notify.Registry, logger *zap.SugaredLogger) *Service {
	return &Service{store: store, lifecycle: lifecycle, rating: ratingEngine, notifier: notifier, logger: logger}
}

// outcomeReport maps a non-invalidate Outcome to the per-player report
// value that would have produced it via the normal record_report path.
func outcomeReport(o models.Outcome) (models.Report, bool) {
	switch o {
	case models.OutcomeP1Win:
		return models.ReportP1Won, true
	case models.OutcomeP2Win:
		return models.ReportP2Won, true
	case models.OutcomeDraw:
		return models.ReportDraw, true
	default:
		return 0, false
	}
}

// Resolve applies outcome to match id on behalf of adminID, selecting the
// fresh or terminal path by inspecting the match's stored reports and
// result — never a synthetic status (spec §4.6).
func (s *Service) Resolve(matchID, adminID int64, outcome models.Outcome, reason string) (models.Match, error) {
	match, err := s.store.GetMatch(matchID)
	if err != nil {
		return models.Match{}, err
	}

	var updated models.Match
	isFresh := match.Player1Report == nil && match.Player2Report == nil && match.MatchResult == nil
	if isFresh {
		updated, err = s.resolveFresh(match, outcome)
	} else {
		updated, err = s.resolveTerminal(match, outcome)
	}
	if err != nil {
		return models.Match{}, err
	}

	details, _ := json.Marshal(struct {
		Outcome models.Outcome `json:"outcome"`
		Fresh   bool           `json:"fresh_path"`
	}{outcome, isFresh})

	mid := matchID
	s.store.RecordAdminAction(models.AdminAction{
		AdminUID:   adminID,
		ActionType: "resolve",
		TargetUID:  0,
		MatchID:    &mid,
		Reason:     reason,
		Details:    details,
		At:         time.Now().UTC(),
	})

	if s.notifier != nil {
		s.notifier.Fan(notify.Payload{
			Event:   notify.EventAdminResolution,
			Match:   updated,
			AdminID: &adminID,
			Reason:  reason,
		})
	}
	return updated, nil
}

// resolveFresh handles a never-touched match: a normal outcome is
// synthesized as both players' agreed report and counted exactly like an
// ordinary completion; INVALIDATE on a fresh match short-circuits straight
// to the aborted terminal state with no stats ever recorded.
func (s *Service) resolveFresh(match models.Match, outcome models.Outcome) (models.Match, error) {
	if outcome == models.OutcomeInvalidate {
		if _, err := s.store.UpdateMatchMMRChange(match.ID, 0); err != nil {
			return models.Match{}, err
		}
		return s.store.SetMatchResult(match.ID, models.ResultAborted)
	}

	report, ok := outcomeReport(outcome)
	if !ok {
		return models.Match{}, ladderr.New(ladderr.InvalidInput, "resolve: unknown outcome")
	}

	if _, err := s.store.UpdateMatchReport(match.ID, 1, report); err != nil {
		return models.Match{}, err
	}
	if _, err := s.store.UpdateMatchReport(match.ID, 2, report); err != nil {
		return models.Match{}, err
	}
	return s.applyRatingFromInitial(match, models.MatchResult(report), true)
}

// resolveTerminal handles a match with any existing report or result. It
// always recomputes from the match's frozen initial MMRs, never from
// whatever the live MMR currently holds, which is what makes repeated or
// superseding overrides idempotent (spec §4.6's idempotence law).
func (s *Service) resolveTerminal(match models.Match, outcome models.Outcome) (models.Match, error) {
	s.lifecycle.Reopen(match.ID)

	if outcome == models.OutcomeInvalidate {
		if _, err := s.store.SetMMROnly(match.Player1UID, match.Player1Race, match.Player1MMR); err != nil {
			return models.Match{}, err
		}
		if _, err := s.store.SetMMROnly(match.Player2UID, match.Player2Race, match.Player2MMR); err != nil {
			return models.Match{}, err
		}
		if _, err := s.store.UpdateMatchMMRChange(match.ID, 0); err != nil {
			return models.Match{}, err
		}
		return s.store.SetMatchResult(match.ID, models.ResultAborted)
	}

	report, ok := outcomeReport(outcome)
	if !ok {
		return models.Match{}, ladderr.New(ladderr.InvalidInput, "resolve: unknown outcome")
	}
	if _, err := s.store.UpdateMatchReport(match.ID, 1, report); err != nil {
		return models.Match{}, err
	}
	if _, err := s.store.UpdateMatchReport(match.ID, 2, report); err != nil {
		return models.Match{}, err
	}
	return s.applyRatingFromInitial(match, models.MatchResult(report), false)
}

// applyRatingFromInitial computes mmr_delta against the match's frozen
// initial MMRs and sets current MMR to initial +/- delta absolutely
// (never relative to whatever the live value currently is), then sets
// match_result and mmr_change. When countsAsNewGame is true (the fresh
// path, where no report was ever previously recorded for this match),
// games_played and the matching win/loss/draw counter are incremented
// exactly as an ordinary record_report completion would; the terminal
// path never touches those counters (spec §4.6: "do not change
// win/loss/draw counts — games were already counted, if at all").
func (s *Service) applyRatingFromInitial(match models.Match, result models.MatchResult, countsAsNewGame bool) (models.Match, error) {
	delta, err := s.rating.Delta(match.Player1MMR, match.Player2MMR, result)
	if err != nil {
		return models.Match{}, ladderr.Wrap(ladderr.IntegrityViolation, "resolve: rating engine rejected result", err)
	}

	if countsAsNewGame {
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
		if _, err := s.store.UpdateMMR(match.Player1UID, match.Player1Race, match.Player1MMR+delta, p1Delta); err != nil {
			return models.Match{}, err
		}
		if _, err := s.store.UpdateMMR(match.Player2UID, match.Player2Race, match.Player2MMR-delta, p2Delta); err != nil {
			return models.Match{}, err
		}
	} else {
		if _, err := s.store.SetMMROnly(match.Player1UID, match.Player1Race, match.Player1MMR+delta); err != nil {
			return models.Match{}, err
		}
		if _, err := s.store.SetMMROnly(match.Player2UID, match.Player2Race, match.Player2MMR-delta); err != nil {
			return models.Match{}, err
		}
	}

	if _, err := s.store.SetMatchResult(match.ID, result); err != nil {
		return models.Match{}, err
	}
	return s.store.UpdateMatchMMRChange(match.ID, delta)
}
