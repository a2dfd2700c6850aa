package models

import "time"

// Replay is the durable metadata record for an uploaded replay artifact,
// keyed by ReplayPath. The blob itself lives in the object store.
type Replay struct {
	ID             int64
	ReplayPath     string
	ReplayHash     string
	ReplayDate     time.Time
	Player1Name    string
	Player2Name    string
	Player1Race    Race
	Player2Race    Race
	Result         string
	Player1Handle  string
	Player2Handle  string
	Observers      []string
	MapName        string
	Duration       time.Duration

	GamePrivacy         string // expect "Normal"
	GameSpeed           string // expect "Faster"
	GameDurationSetting string // expect "Unlimited"
	LockedAlliances     string // expect "Yes"

	UploadedAt time.Time
}
