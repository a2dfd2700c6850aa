// Package replay implements the replay verifier (C7): an 8-check,
// side-effect-free comparison between parsed replay metadata and a match
// record. The verifier never mutates anything; it is called by presenters
// when a player uploads a replay file.
package replay

import (
	"fmt"
	"time"

	"github.com/openmohaa/ladder-core/internal/models"
)

// MaxTimestampSkew is the allowed drift between replay.replay_date and
// match.created_at (spec §4.7 check 3).
const MaxTimestampSkew = 20 * time.Minute

const (
	expectedGamePrivacy         = "Normal"
	expectedGameSpeed           = "Faster"
	expectedGameDurationSetting = "Unlimited"
	expectedLockedAlliances     = "Yes"
)

// CheckName identifies one of the 8 named checks.
type CheckName string

const (
	CheckRaces               CheckName = "races"
	CheckMap                 CheckName = "map"
	CheckTimestamp           CheckName = "timestamp"
	CheckObservers           CheckName = "observers"
	CheckGamePrivacy         CheckName = "game_privacy"
	CheckGameSpeed           CheckName = "game_speed"
	CheckGameDurationSetting CheckName = "game_duration_setting"
	CheckLockedAlliances     CheckName = "locked_alliances"
)

// Check is one named verification result: whether it passed, and what was
// expected versus what was actually found.
type Check struct {
	Name     CheckName
	Passed   bool
	Expected string
	Found    string
}

// Report is the full 8-check verification outcome.
type Report struct {
	Checks    []Check
	AllPassed bool
}

// Verify compares a parsed replay against its match record and returns the
// structured 8-check report. Pure: no I/O, no mutation.
func Verify(r models.Replay, m models.Match) Report {
	checks := []Check{
		checkRaces(r, m),
		checkMap(r, m),
		checkTimestamp(r, m),
		checkObservers(r),
		checkEquals(CheckGamePrivacy, expectedGamePrivacy, r.GamePrivacy),
		checkEquals(CheckGameSpeed, expectedGameSpeed, r.GameSpeed),
		checkEquals(CheckGameDurationSetting, expectedGameDurationSetting, r.GameDurationSetting),
		checkEquals(CheckLockedAlliances, expectedLockedAlliances, r.LockedAlliances),
	}

	all := true
	for _, c := range checks {
		if !c.Passed {
			all = false
			break
		}
	}
	return Report{Checks: checks, AllPassed: all}
}

func checkRaces(r models.Replay, m models.Match) Check {
	expected := map[models.Race]bool{m.Player1Race: true, m.Player2Race: true}
	found := map[models.Race]bool{r.Player1Race: true, r.Player2Race: true}

	passed := len(expected) == len(found)
	if passed {
		for race := range expected {
			if !found[race] {
				passed = false
				break
			}
		}
	}
	return Check{
		Name:     CheckRaces,
		Passed:   passed,
		Expected: fmt.Sprintf("{%s, %s}", m.Player1Race, m.Player2Race),
		Found:    fmt.Sprintf("{%s, %s}", r.Player1Race, r.Player2Race),
	}
}

func checkMap(r models.Replay, m models.Match) Check {
	return Check{
		Name:     CheckMap,
		Passed:   r.MapName == m.MapName,
		Expected: m.MapName,
		Found:    r.MapName,
	}
}

func checkTimestamp(r models.Replay, m models.Match) Check {
	skew := r.ReplayDate.Sub(m.CreatedAt)
	if skew < 0 {
		skew = -skew
	}
	return Check{
		Name:     CheckTimestamp,
		Passed:   skew <= MaxTimestampSkew,
		Expected: fmt.Sprintf("within %s of %s", MaxTimestampSkew, m.CreatedAt),
		Found:    r.ReplayDate.String(),
	}
}

func checkObservers(r models.Replay) Check {
	return Check{
		Name:     CheckObservers,
		Passed:   len(r.Observers) == 0,
		Expected: "empty",
		Found:    fmt.Sprintf("%v", r.Observers),
	}
}

func checkEquals(name CheckName, expected, found string) Check {
	return Check{Name: name, Passed: expected == found, Expected: expected, Found: found}
}
