package models

import "time"

// Report is a per-player result submission. A nil *Report models "None" —
// no report yet.
type Report int

const (
	ReportDraw      Report = 0
	ReportP1Won     Report = 1
	ReportP2Won     Report = 2
	ReportSelfAbort Report = -3
	ReportNoShow    Report = -4
)

// ValidReportValue reports whether v is one of the values a player may
// submit via record_report (None is represented by the absence of a call,
// not by a value here).
func ValidReportValue(v int) bool {
	switch Report(v) {
	case ReportDraw, ReportP1Won, ReportP2Won, ReportSelfAbort:
		return true
	default:
		return false
	}
}

// MatchResult is the match-level outcome. A nil *MatchResult models "None"
// — the match is still in progress.
type MatchResult int

const (
	ResultDraw     MatchResult = 0
	ResultP1Won    MatchResult = 1
	ResultP2Won    MatchResult = 2
	ResultAborted  MatchResult = -1
	ResultConflict MatchResult = -2
)

// Terminal reports whether a match with this result may accept no further
// reports. There is no synthetic status column: terminal-ness is this
// predicate over the stored result, nothing else.
func (r MatchResult) Terminal() bool {
	switch r {
	case ResultDraw, ResultP1Won, ResultP2Won, ResultAborted, ResultConflict:
		return true
	default:
		return false
	}
}

// State is a tagged variant derived from a Match's stored columns for
// display purposes. It is computed on read, never persisted (spec §9:
// "do not persist it").
type State int

const (
	StateInProgress State = iota
	StateConflict
	StateAborted
	StateCompleted
)

// DeriveState computes the display state of a match from its stored
// result column.
func DeriveState(result *MatchResult) State {
	if result == nil {
		return StateInProgress
	}
	switch *result {
	case ResultConflict:
		return StateConflict
	case ResultAborted:
		return StateAborted
	default:
		return StateCompleted
	}
}

// Match is one pairing's full lifecycle record. PlayerXMMR is frozen at
// creation and is the sole baseline for all rating arithmetic on this
// match, including every admin re-resolution.
type Match struct {
	ID int64

	Player1UID  int64
	Player1Race Race
	Player2UID  int64
	Player2Race Race

	MapName        string
	Server         string
	ChatChannelTag string

	CreatedAt time.Time

	Player1MMR int // frozen at creation
	Player2MMR int // frozen at creation

	Player1Report *Report
	Player2Report *Report
	MatchResult   *MatchResult
	MMRChange     int // positive = P1 gained; 0 if aborted/conflict/not yet

	Player1ReplayPath string
	Player2ReplayPath string
	Player1ReplayTime *time.Time
	Player2ReplayTime *time.Time

	Confirmed map[int64]bool // which players confirmed
}

// Terminal reports whether this match will accept no further reports.
func (m *Match) Terminal() bool {
	return m.MatchResult != nil && m.MatchResult.Terminal()
}

// BothReported reports whether both per-player reports are set.
func (m *Match) BothReported() bool {
	return m.Player1Report != nil && m.Player2Report != nil
}

// Participant reports whether uid is one of the two players in m, and if
// so, which slot (1 or 2).
func (m *Match) Participant(uid int64) (slot int, ok bool) {
	switch uid {
	case m.Player1UID:
		return 1, true
	case m.Player2UID:
		return 2, true
	default:
		return 0, false
	}
}

// OtherPlayer returns the uid of the player other than uid, assuming uid
// participates in m.
func (m *Match) OtherPlayer(uid int64) int64 {
	if uid == m.Player1UID {
		return m.Player2UID
	}
	return m.Player1UID
}

// MatchPatch describes a partial update to a Match's free-form fields.
type MatchPatch struct {
	MapName           *string
	Server            *string
	Player1ReplayPath *string
	Player2ReplayPath *string
	Player1ReplayTime *time.Time
	Player2ReplayTime *time.Time
}
