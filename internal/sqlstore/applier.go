package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// pgExecer is the narrow slice of *pgxpool.Pool this package actually
// calls, kept as an interface so tests can substitute a hand-rolled fake
// instead of a live pool — the teacher's MockConn/MockRows pattern in
// internal/logic/mock_ch_test.go does the same thing for ClickHouse.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Applier implements writequeue.Applier against Postgres (via pgxpool),
// additionally mirroring completed matches into ClickHouse. ch may be nil,
// in which case the analytics mirror is skipped — grounded in the
// teacher's playerStatsService, which holds exactly one driver.Conn field
// and dispatches every method over it.
type Applier struct {
	pool   pgExecer
	ch     driver.Conn
	logger *zap.SugaredLogger
}

// NewApplier constructs an Applier. ch may be nil to disable the
// analytics mirror (e.g. in environments without a ClickHouse instance).
func NewApplier(pool *pgxpool.Pool, ch driver.Conn, logger *zap.Logger) *Applier {
	return &Applier{pool: pool, ch: ch, logger: logger.Sugar()}
}

// newApplierForTest builds an Applier over a fake pgExecer/driver.Conn,
// bypassing the need for a live Postgres/ClickHouse connection in tests.
func newApplierForTest(pool pgExecer, ch driver.Conn) *Applier {
	return &Applier{pool: pool, ch: ch, logger: zap.NewNop().Sugar()}
}

// Apply dispatches job.Kind to the matching SQL statement. Keyed inserts
// use `ON CONFLICT` and updates set absolute values, so replaying one of
// those jobs — retried after a timeout whose write actually succeeded — is
// idempotent. The audit inserts (player_action_log, admin_action,
// command_call) have no conflict key, so a replay of one adds a second row.
func (a *Applier) Apply(ctx context.Context, job writequeue.Job) error {
	switch job.Kind {
	case writequeue.KindEnsurePlayer:
		return a.applyEnsurePlayer(ctx, job)
	case writequeue.KindUpdatePlayer:
		return a.applyUpdatePlayer(ctx, job)
	case writequeue.KindSetShieldBatteryAck:
		return a.applyBoolToggle(ctx, "shield_battery_bug_ack", job)
	case writequeue.KindSetIsBanned:
		return a.applyBoolToggle(ctx, "is_banned", job)
	case writequeue.KindUpdateMMR:
		return a.applyUpdateMMR(ctx, job)
	case writequeue.KindUpdatePreferences:
		return a.applyUpdatePreferences(ctx, job)
	case writequeue.KindCreateMatch:
		return a.applyCreateMatch(ctx, job)
	case writequeue.KindUpdateMatch:
		return a.applyUpdateMatch(ctx, job)
	case writequeue.KindUpdateMatchReport:
		return a.applyUpdateMatchReport(ctx, job)
	case writequeue.KindUpdateMatchMMR:
		return a.applyUpdateMatchMMR(ctx, job)
	case writequeue.KindRecordSystemAbort:
		return a.applyRecordSystemAbort(ctx, job)
	case writequeue.KindInsertReplay:
		return a.applyInsertReplay(ctx, job)
	case writequeue.KindPlayerActionLog:
		return a.applyPlayerActionLog(ctx, job)
	case writequeue.KindAdminAction:
		return a.applyAdminAction(ctx, job)
	case writequeue.KindCommandCall:
		return a.applyCommandCall(ctx, job)
	default:
		return fmt.Errorf("sqlstore: unknown job kind %q", job.Kind)
	}
}

func (a *Applier) applyEnsurePlayer(ctx context.Context, job writequeue.Job) error {
	p := job.Player
	_, err := a.pool.Exec(ctx, `
		INSERT INTO players (discord_uid, remaining_aborts, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (discord_uid) DO NOTHING
	`, p.DiscordUID, p.RemainingAborts, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ensure_player: %w", err)
	}
	return nil
}

func (a *Applier) applyUpdatePlayer(ctx context.Context, job writequeue.Job) error {
	p := job.Player
	_, err := a.pool.Exec(ctx, `
		UPDATE players SET
			player_name = $2, battletag = $3, alt_player_names = $4,
			country = $5, region = $6, accepted_tos = $7, completed_setup = $8,
			remaining_aborts = $9, shield_battery_bug_ack = $10, is_banned = $11,
			updated_at = $12
		WHERE discord_uid = $1
	`, p.DiscordUID, p.PlayerName, p.Battletag, p.AltPlayerNames,
		p.Country, p.Region, p.AcceptedTOS, p.CompletedSetup,
		p.RemainingAborts, p.ShieldBatteryAck, p.IsBanned, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update_player: %w", err)
	}
	return nil
}

func (a *Applier) applyBoolToggle(ctx context.Context, column string, job writequeue.Job) error {
	query := fmt.Sprintf(`UPDATE players SET %s = $2, updated_at = now() WHERE discord_uid = $1`, column)
	_, err := a.pool.Exec(ctx, query, job.Player.DiscordUID, *job.Bool)
	if err != nil {
		return fmt.Errorf("set_%s: %w", column, err)
	}
	return nil
}

func (a *Applier) applyUpdateMMR(ctx context.Context, job writequeue.Job) error {
	e := job.MMREntry
	_, err := a.pool.Exec(ctx, `
		INSERT INTO mmrs_1v1 (discord_uid, race, mmr, games_played, games_won, games_lost, games_drawn, last_played)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (discord_uid, race) DO UPDATE SET
			mmr = EXCLUDED.mmr, games_played = EXCLUDED.games_played,
			games_won = EXCLUDED.games_won, games_lost = EXCLUDED.games_lost,
			games_drawn = EXCLUDED.games_drawn, last_played = EXCLUDED.last_played
	`, e.DiscordUID, e.Race, e.MMR, e.GamesPlayed, e.GamesWon, e.GamesLost, e.GamesDrawn, nullTime(e.LastPlayed))
	if err != nil {
		return fmt.Errorf("update_mmr: %w", err)
	}
	return nil
}

func (a *Applier) applyUpdatePreferences(ctx context.Context, job writequeue.Job) error {
	pr := job.Preferences
	_, err := a.pool.Exec(ctx, `
		INSERT INTO preferences_1v1 (discord_uid, data)
		VALUES ($1, $2)
		ON CONFLICT (discord_uid) DO UPDATE SET data = EXCLUDED.data
	`, pr.DiscordUID, pr)
	if err != nil {
		return fmt.Errorf("update_preferences: %w", err)
	}
	return nil
}

func (a *Applier) applyCreateMatch(ctx context.Context, job writequeue.Job) error {
	m := job.Match
	_, err := a.pool.Exec(ctx, `
		INSERT INTO matches_1v1 (
			id, player1_uid, player1_race, player2_uid, player2_race,
			map_name, server, chat_channel_tag, created_at, player1_mmr, player2_mmr
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, m.ID, m.Player1UID, m.Player1Race, m.Player2UID, m.Player2Race,
		m.MapName, m.Server, m.ChatChannelTag, m.CreatedAt, m.Player1MMR, m.Player2MMR)
	if err != nil {
		return fmt.Errorf("create_match: %w", err)
	}
	return nil
}

func (a *Applier) applyUpdateMatch(ctx context.Context, job writequeue.Job) error {
	m := job.Match
	if m == nil {
		return nil
	}
	_, err := a.pool.Exec(ctx, `
		UPDATE matches_1v1 SET
			map_name = $2, server = $3,
			player1_replay_path = $4, player2_replay_path = $5,
			player1_replay_time = $6, player2_replay_time = $7,
			player1_report = $8, player2_report = $9,
			match_result = $10, mmr_change = $11
		WHERE id = $1
	`, m.ID, m.MapName, m.Server, m.Player1ReplayPath, m.Player2ReplayPath,
		m.Player1ReplayTime, m.Player2ReplayTime,
		nullReport(m.Player1Report), nullReport(m.Player2Report),
		nullResult(m.MatchResult), m.MMRChange)
	if err != nil {
		return fmt.Errorf("update_match: %w", err)
	}
	if m.MatchResult != nil && m.MatchResult.Terminal() {
		return a.mirrorCompletedMatch(ctx, *m)
	}
	return nil
}

func (a *Applier) applyUpdateMatchReport(ctx context.Context, job writequeue.Job) error {
	column := "player1_report"
	if job.ReportSlot == 2 {
		column = "player2_report"
	}
	query := fmt.Sprintf(`UPDATE matches_1v1 SET %s = $2 WHERE id = $1`, column)
	_, err := a.pool.Exec(ctx, query, job.MatchID, int(*job.Report))
	if err != nil {
		return fmt.Errorf("update_match_report: %w", err)
	}
	return nil
}

func (a *Applier) applyUpdateMatchMMR(ctx context.Context, job writequeue.Job) error {
	_, err := a.pool.Exec(ctx, `UPDATE matches_1v1 SET mmr_change = $2 WHERE id = $1`, job.MatchID, *job.MMRChange)
	if err != nil {
		return fmt.Errorf("update_match_mmr_change: %w", err)
	}
	return nil
}

func (a *Applier) applyRecordSystemAbort(ctx context.Context, job writequeue.Job) error {
	m := job.Match
	_, err := a.pool.Exec(ctx, `
		UPDATE matches_1v1 SET
			player1_report = $2, player2_report = $3, match_result = $4, mmr_change = $5
		WHERE id = $1
	`, m.ID, int(*m.Player1Report), int(*m.Player2Report), int(*m.MatchResult), m.MMRChange)
	if err != nil {
		return fmt.Errorf("record_system_abort: %w", err)
	}
	return a.mirrorCompletedMatch(ctx, *m)
}

func (a *Applier) applyInsertReplay(ctx context.Context, job writequeue.Job) error {
	r := job.Replay
	_, err := a.pool.Exec(ctx, `
		INSERT INTO replays (
			replay_path, replay_hash, replay_date, player1_name, player2_name,
			player1_race, player2_race, result, player1_handle, player2_handle,
			observers, map_name, duration_seconds, game_privacy, game_speed,
			game_duration_setting, locked_alliances, uploaded_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (replay_path) DO NOTHING
	`, r.ReplayPath, r.ReplayHash, r.ReplayDate, r.Player1Name, r.Player2Name,
		r.Player1Race, r.Player2Race, r.Result, r.Player1Handle, r.Player2Handle,
		r.Observers, r.MapName, int(r.Duration.Seconds()), r.GamePrivacy, r.GameSpeed,
		r.GameDurationSetting, r.LockedAlliances, r.UploadedAt)
	if err != nil {
		return fmt.Errorf("insert_replay: %w", err)
	}
	return nil
}

func (a *Applier) applyPlayerActionLog(ctx context.Context, job writequeue.Job) error {
	l := job.PlayerActionLog
	_, err := a.pool.Exec(ctx, `
		INSERT INTO player_action_logs (discord_uid, field, old_value, new_value, changed_by, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, l.DiscordUID, l.SettingName, l.OldValue, l.NewValue, l.ChangedBy, l.ChangedAt)
	if err != nil {
		return fmt.Errorf("player_action_log: %w", err)
	}
	return nil
}

func (a *Applier) applyAdminAction(ctx context.Context, job writequeue.Job) error {
	act := job.AdminAction
	_, err := a.pool.Exec(ctx, `
		INSERT INTO admin_actions (admin_uid, action_type, target_uid, match_id, reason, details, at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, act.AdminUID, act.ActionType, nullZeroInt(act.TargetUID), act.MatchID, act.Reason, act.Details, act.At)
	if err != nil {
		return fmt.Errorf("admin_action: %w", err)
	}
	return nil
}

func (a *Applier) applyCommandCall(ctx context.Context, job writequeue.Job) error {
	c := job.CommandCall
	_, err := a.pool.Exec(ctx, `
		INSERT INTO command_calls (discord_uid, command, at) VALUES ($1, $2, $3)
	`, c.DiscordUID, c.Command, c.At)
	if err != nil {
		return fmt.Errorf("command_call: %w", err)
	}
	return nil
}

// mirrorCompletedMatch inserts a row into ClickHouse's match_results
// analytics table. Skipped entirely if ch is nil.
func (a *Applier) mirrorCompletedMatch(ctx context.Context, m models.Match) error {
	if a.ch == nil {
		return nil
	}
	err := a.ch.Exec(ctx, `
		INSERT INTO ladder.match_results (match_id, player1_uid, player2_uid, player1_race, player2_race, match_result, mmr_change, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.Player1UID, m.Player2UID, string(m.Player1Race), string(m.Player2Race), int8(*m.MatchResult), m.MMRChange, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clickhouse mirror: %w", err)
	}
	return nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullReport(r *models.Report) *int {
	if r == nil {
		return nil
	}
	v := int(*r)
	return &v
}

func nullResult(r *models.MatchResult) *int {
	if r == nil {
		return nil
	}
	v := int(*r)
	return &v
}

func nullZeroInt(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
