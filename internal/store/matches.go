package store

import (
	"time"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// GetMatch returns a snapshot copy of a match, or NotFound.
func (s *Store) GetMatch(id int64) (models.Match, error) {
	s.matchesMu.RLock()
	defer s.matchesMu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return models.Match{}, ladderr.New(ladderr.NotFound, "match not found")
	}
	return cloneMatch(m), nil
}

func cloneMatch(m *models.Match) models.Match {
	out := *m
	out.Confirmed = make(map[int64]bool, len(m.Confirmed))
	for k, v := range m.Confirmed {
		out.Confirmed[k] = v
	}
	if m.Player1Report != nil {
		v := *m.Player1Report
		out.Player1Report = &v
	}
	if m.Player2Report != nil {
		v := *m.Player2Report
		out.Player2Report = &v
	}
	if m.MatchResult != nil {
		v := *m.MatchResult
		out.MatchResult = &v
	}
	return out
}

// CreateMatch atomically inserts a new match, freezing both players'
// initial MMRs from their current live MMR entries. Rejects identical
// players (spec invariant 8, self-pairing).
func (s *Store) CreateMatch(p1UID int64, p1Race models.Race, p2UID int64, p2Race models.Race, mapName, server, chatChannelTag string) (models.Match, error) {
	if p1UID == p2UID {
		return models.Match{}, ladderr.New(ladderr.IntegrityViolation, "create_match: player cannot be paired with self")
	}
	if p1Race.TitleOf() == p2Race.TitleOf() {
		return models.Match{}, ladderr.New(ladderr.IntegrityViolation, "create_match: both races belong to the same title")
	}

	p1MMR, err := s.EnsureMMR(p1UID, p1Race)
	if err != nil {
		return models.Match{}, err
	}
	p2MMR, err := s.EnsureMMR(p2UID, p2Race)
	if err != nil {
		return models.Match{}, err
	}

	s.matchesMu.Lock()
	s.nextMatchID++
	id := s.nextMatchID
	m := &models.Match{
		ID:             id,
		Player1UID:     p1UID,
		Player1Race:    p1Race,
		Player2UID:     p2UID,
		Player2Race:    p2Race,
		MapName:        mapName,
		Server:         server,
		ChatChannelTag: chatChannelTag,
		CreatedAt:      time.Now().UTC(),
		Player1MMR:     p1MMR.MMR,
		Player2MMR:     p2MMR.MMR,
		Confirmed:      make(map[int64]bool, 2),
	}
	s.matches[id] = m
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindCreateMatch, MatchID: id, Match: &snapshot})
	return snapshot, nil
}

// UpdateMatch applies a free-form patch (map/server/replay path/time).
func (s *Store) UpdateMatch(id int64, patch models.MatchPatch) (models.Match, error) {
	s.matchesMu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.NotFound, "update_match: unknown match")
	}

	if patch.MapName != nil {
		m.MapName = *patch.MapName
	}
	if patch.Server != nil {
		m.Server = *patch.Server
	}
	if patch.Player1ReplayPath != nil {
		m.Player1ReplayPath = *patch.Player1ReplayPath
	}
	if patch.Player2ReplayPath != nil {
		m.Player2ReplayPath = *patch.Player2ReplayPath
	}
	if patch.Player1ReplayTime != nil {
		m.Player1ReplayTime = patch.Player1ReplayTime
	}
	if patch.Player2ReplayTime != nil {
		m.Player2ReplayTime = patch.Player2ReplayTime
	}
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdateMatch, MatchID: id, MatchPatch: &patch})
	return snapshot, nil
}

// UpdateMatchReport sets one player's report value. which must be 1 or 2.
// Fails loud on an unknown match id.
func (s *Store) UpdateMatchReport(id int64, which int, value models.Report) (models.Match, error) {
	s.matchesMu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.NotFound, "update_match_report: unknown match")
	}

	v := value
	switch which {
	case 1:
		m.Player1Report = &v
	case 2:
		m.Player2Report = &v
	default:
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.InvalidInput, "update_match_report: which must be 1 or 2")
	}
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdateMatchReport, MatchID: id, Report: &v, ReportSlot: which})
	return snapshot, nil
}

// SetMatchResult sets the match_result column. Unlike report values, this
// may legitimately be reset by the admin override's terminal path, so no
// "already terminal" guard lives here — callers (lifecycle/admin) enforce
// the write-once-except-override rule.
func (s *Store) SetMatchResult(id int64, result models.MatchResult) (models.Match, error) {
	s.matchesMu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.NotFound, "set_match_result: unknown match")
	}
	r := result
	m.MatchResult = &r
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()

	patch := models.MatchPatch{}
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdateMatch, MatchID: id, MatchPatch: &patch, Match: &snapshot})
	return snapshot, nil
}

// UpdateMatchMMRChange sets the mmr_change column.
func (s *Store) UpdateMatchMMRChange(id int64, change int) (models.Match, error) {
	s.matchesMu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.NotFound, "update_match_mmr_change: unknown match")
	}
	m.MMRChange = change
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()

	c := change
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindUpdateMatchMMR, MatchID: id, MMRChange: &c})
	return snapshot, nil
}

// SetConfirmed records that uid confirmed match id.
func (s *Store) SetConfirmed(id int64, uid int64) (models.Match, error) {
	s.matchesMu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.NotFound, "set_confirmed: unknown match")
	}
	if m.Confirmed == nil {
		m.Confirmed = make(map[int64]bool, 2)
	}
	m.Confirmed[uid] = true
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()
	return snapshot, nil
}

// RecordSystemAbort sets both reports in one atomic step (no-show abort at
// timer expiry) and marks the match aborted.
func (s *Store) RecordSystemAbort(id int64, p1Report, p2Report models.Report) (models.Match, error) {
	s.matchesMu.Lock()
	m, ok := s.matches[id]
	if !ok {
		s.matchesMu.Unlock()
		return models.Match{}, ladderr.New(ladderr.NotFound, "record_system_abort: unknown match")
	}
	v1, v2 := p1Report, p2Report
	m.Player1Report = &v1
	m.Player2Report = &v2
	aborted := models.ResultAborted
	m.MatchResult = &aborted
	m.MMRChange = 0
	snapshot := cloneMatch(m)
	s.matchesMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindRecordSystemAbort, MatchID: id, Match: &snapshot})
	return snapshot, nil
}

// InsertReplay inserts a replay metadata record.
func (s *Store) InsertReplay(r models.Replay) {
	s.replaysMu.Lock()
	rec := r
	s.replays[r.ReplayPath] = &rec
	s.replaysMu.Unlock()

	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindInsertReplay, Replay: &rec})
}

// GetReplay returns a replay by path, or NotFound.
func (s *Store) GetReplay(path string) (models.Replay, error) {
	s.replaysMu.RLock()
	defer s.replaysMu.RUnlock()

	r, ok := s.replays[path]
	if !ok {
		return models.Replay{}, ladderr.New(ladderr.NotFound, "replay not found")
	}
	return *r, nil
}
