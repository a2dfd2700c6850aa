package writequeue

import (
	"time"

	"github.com/openmohaa/ladder-core/internal/models"
)

// Kind identifies which durable mutation a Job carries. One variant per
// hot-store mutator (spec §4.1/§4.2).
type Kind string

const (
	KindEnsurePlayer       Kind = "ensure_player"
	KindUpdatePlayer       Kind = "update_player"
	KindUpdateMMR          Kind = "update_mmr"
	KindUpdatePreferences  Kind = "update_preferences"
	KindCreateMatch        Kind = "create_match"
	KindUpdateMatch        Kind = "update_match"
	KindUpdateMatchReport  Kind = "update_match_report"
	KindUpdateMatchMMR     Kind = "update_match_mmr_change"
	KindSetShieldBatteryAck Kind = "set_shield_battery_bug_ack"
	KindSetIsBanned        Kind = "set_is_banned"
	KindInsertReplay       Kind = "insert_replay"
	KindRecordSystemAbort  Kind = "record_system_abort"
	KindPlayerActionLog    Kind = "player_action_log"
	KindAdminAction        Kind = "admin_action"
	KindCommandCall        Kind = "command_call"
)

// Job is one typed durable write, queued in issue order. MatchID, when
// non-zero, is the causal-ordering key: the consumer never reorders jobs
// sharing a MatchID (spec invariant 10 / §4.2).
type Job struct {
	Kind      Kind
	MatchID   int64 // 0 when the job is not match-scoped
	Enqueued  time.Time
	Attempt   int

	Player         *models.Player
	PlayerPatch    *models.PlayerPatch
	MMREntry       *models.MMREntry
	GameStatDelta  *models.GameStatDelta
	Preferences    *models.Preferences
	Match          *models.Match
	MatchPatch     *models.MatchPatch
	Report         *models.Report
	ReportSlot     int // 1 or 2, valid when Report != nil
	MMRChange      *int
	Bool           *bool // generic payload for set_* boolean toggles
	Replay         *models.Replay
	PlayerActionLog *models.PlayerActionLog
	AdminAction    *models.AdminAction
	CommandCall    *models.CommandCall
}
