package models

import (
	"encoding/json"
	"time"
)

// AdminAction is an append-only audit row for every administrative command
// (§6 admin_actions).
type AdminAction struct {
	ID         int64
	AdminUID   int64
	ActionType string
	TargetUID  int64
	MatchID    *int64
	Reason     string
	Details    json.RawMessage
	At         time.Time
}

// Outcome is the administrative override's outcome enum for resolve().
type Outcome string

const (
	OutcomeP1Win     Outcome = "P1_WIN"
	OutcomeP2Win     Outcome = "P2_WIN"
	OutcomeDraw      Outcome = "DRAW"
	OutcomeInvalidate Outcome = "INVALIDATE"
)

// MMRAdjustOp is the operation for the adjust_mmr admin command.
type MMRAdjustOp string

const (
	MMRAdjustAdd      MMRAdjustOp = "Add"
	MMRAdjustSubtract MMRAdjustOp = "Subtract"
	MMRAdjustSet      MMRAdjustOp = "Set"
)
