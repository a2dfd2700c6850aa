// Package sqlstore is the durable-write side of the write-behind pipeline
// (C2's Applier): it turns a writequeue.Job into inline SQL against
// Postgres (via pgx), mirrors completed matches into ClickHouse for
// analytics, and offers an alternate database/sql-backed Applier selected
// by DSN scheme for deployments that run MySQL or a plain libpq stack
// instead.
package sqlstore

// Schema holds the DDL for every table named in spec §6. Nothing in this
// module executes it; the statements are CREATE TABLE IF NOT EXISTS only
// and never drop or alter a table.
var Schema = []string{
	schemaPlayers,
	schemaPlayerActionLogs,
	schemaAdminActions,
	schemaMMRs1v1,
	schemaPreferences1v1,
	schemaMatches1v1,
	schemaReplays,
	schemaCommandCalls,
}

const schemaPlayers = `
CREATE TABLE IF NOT EXISTS players (
	discord_uid          BIGINT PRIMARY KEY,
	player_name          TEXT NOT NULL DEFAULT '',
	battletag            TEXT NOT NULL DEFAULT '',
	alt_player_names      TEXT[] NOT NULL DEFAULT '{}',
	country              TEXT NOT NULL DEFAULT '',
	region               TEXT NOT NULL DEFAULT '',
	accepted_tos         BOOLEAN NOT NULL DEFAULT FALSE,
	completed_setup      BOOLEAN NOT NULL DEFAULT FALSE,
	remaining_aborts     INT NOT NULL DEFAULT 3,
	shield_battery_bug_ack BOOLEAN NOT NULL DEFAULT FALSE,
	is_banned            BOOLEAN NOT NULL DEFAULT FALSE,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const schemaPlayerActionLogs = `
CREATE TABLE IF NOT EXISTS player_action_logs (
	id          BIGSERIAL PRIMARY KEY,
	discord_uid BIGINT NOT NULL REFERENCES players(discord_uid),
	field       TEXT NOT NULL,
	old_value   TEXT,
	new_value   TEXT,
	changed_by  TEXT NOT NULL,
	changed_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const schemaAdminActions = `
CREATE TABLE IF NOT EXISTS admin_actions (
	id          BIGSERIAL PRIMARY KEY,
	admin_uid   BIGINT NOT NULL,
	action_type TEXT NOT NULL,
	target_uid  BIGINT,
	match_id    BIGINT,
	reason      TEXT NOT NULL DEFAULT '',
	details     JSONB,
	at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const schemaMMRs1v1 = `
CREATE TABLE IF NOT EXISTS mmrs_1v1 (
	discord_uid  BIGINT NOT NULL REFERENCES players(discord_uid),
	race         TEXT NOT NULL,
	mmr          INT NOT NULL,
	games_played INT NOT NULL DEFAULT 0,
	games_won    INT NOT NULL DEFAULT 0,
	games_lost   INT NOT NULL DEFAULT 0,
	games_drawn  INT NOT NULL DEFAULT 0,
	last_played  TIMESTAMPTZ,
	PRIMARY KEY (discord_uid, race)
);
`

const schemaPreferences1v1 = `
CREATE TABLE IF NOT EXISTS preferences_1v1 (
	discord_uid BIGINT PRIMARY KEY REFERENCES players(discord_uid),
	data        JSONB NOT NULL DEFAULT '{}'
);
`

const schemaMatches1v1 = `
CREATE TABLE IF NOT EXISTS matches_1v1 (
	id                  BIGSERIAL PRIMARY KEY,
	player1_uid         BIGINT NOT NULL REFERENCES players(discord_uid),
	player1_race        TEXT NOT NULL,
	player2_uid         BIGINT NOT NULL REFERENCES players(discord_uid),
	player2_race        TEXT NOT NULL,
	map_name            TEXT NOT NULL,
	server              TEXT NOT NULL,
	chat_channel_tag    TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	player1_mmr         INT NOT NULL,
	player2_mmr         INT NOT NULL,
	player1_report      INT,
	player2_report      INT,
	match_result        INT,
	mmr_change          INT NOT NULL DEFAULT 0,
	player1_replay_path TEXT NOT NULL DEFAULT '',
	player2_replay_path TEXT NOT NULL DEFAULT '',
	player1_replay_time TIMESTAMPTZ,
	player2_replay_time TIMESTAMPTZ
);
`

const schemaReplays = `
CREATE TABLE IF NOT EXISTS replays (
	id                    BIGSERIAL PRIMARY KEY,
	replay_path           TEXT NOT NULL UNIQUE,
	replay_hash           TEXT NOT NULL,
	replay_date           TIMESTAMPTZ NOT NULL,
	player1_name          TEXT NOT NULL DEFAULT '',
	player2_name          TEXT NOT NULL DEFAULT '',
	player1_race          TEXT NOT NULL,
	player2_race          TEXT NOT NULL,
	result                TEXT NOT NULL DEFAULT '',
	player1_handle        TEXT NOT NULL DEFAULT '',
	player2_handle        TEXT NOT NULL DEFAULT '',
	observers             TEXT[] NOT NULL DEFAULT '{}',
	map_name              TEXT NOT NULL,
	duration_seconds      INT NOT NULL DEFAULT 0,
	game_privacy          TEXT NOT NULL DEFAULT '',
	game_speed            TEXT NOT NULL DEFAULT '',
	game_duration_setting TEXT NOT NULL DEFAULT '',
	locked_alliances      TEXT NOT NULL DEFAULT '',
	uploaded_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const schemaCommandCalls = `
CREATE TABLE IF NOT EXISTS command_calls (
	id          BIGSERIAL PRIMARY KEY,
	discord_uid BIGINT NOT NULL,
	command     TEXT NOT NULL,
	at          TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// clickhouseMatchResultsMV is the append-only analytics mirror of
// completed matches (SPEC_FULL.md §2 A5), queried for ladder history
// dashboards rather than live decisions — the hot store remains
// authoritative for every live decision per §5.
const clickhouseMatchResultsMV = `
CREATE TABLE IF NOT EXISTS ladder.match_results (
	match_id     Int64,
	player1_uid  Int64,
	player2_uid  Int64,
	player1_race String,
	player2_race String,
	match_result Int8,
	mmr_change   Int32,
	completed_at DateTime
) ENGINE = MergeTree()
ORDER BY (completed_at, match_id);
`
