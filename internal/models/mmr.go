package models

import "time"

// RankedWindow is the lookback period within which an MMR entry counts as
// "ranked" (spec §3, RANKED_WINDOW_DAYS default).
const RankedWindow = 14 * 24 * time.Hour

// MMREntry is a player's rating and game-stat record for one race. The pair
// (DiscordUID, Race) is unique.
type MMREntry struct {
	DiscordUID  int64     `json:"discord_uid"`
	Race        Race      `json:"race"`
	MMR         int       `json:"mmr"`
	GamesPlayed int       `json:"games_played"`
	GamesWon    int       `json:"games_won"`
	GamesLost   int       `json:"games_lost"`
	GamesDrawn  int       `json:"games_drawn"`
	LastPlayed  time.Time `json:"last_played"`
}

// GameStatDelta describes optional increments applied alongside an MMR
// update (update_mmr's "optional game-stat deltas").
type GameStatDelta struct {
	Played int
	Won    int
	Lost   int
	Drawn  int
}

// Ranked reports whether e has at least one game within RankedWindow of now.
func (e MMREntry) Ranked(now time.Time) bool {
	return e.GamesPlayed > 0 && !e.LastPlayed.Before(now.Add(-RankedWindow))
}

// RankLetter is the quantile bucket computed over currently-ranked entries
// for a race (§3 derived field; supplemental — see SPEC_FULL.md).
type RankLetter string

const (
	RankS RankLetter = "S"
	RankA RankLetter = "A"
	RankB RankLetter = "B"
	RankC RankLetter = "C"
	RankD RankLetter = "D"
	RankF RankLetter = "F"
)
