package replay

import (
	"testing"
	"time"

	"github.com/openmohaa/ladder-core/internal/models"
)

func validMatch() models.Match {
	return models.Match{
		ID:          1,
		Player1Race: models.RaceBWTerran,
		Player2Race: models.RaceSC2Zerg,
		MapName:     "Fighting Spirit",
		CreatedAt:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func validReplay() models.Replay {
	return models.Replay{
		Player1Race:         models.RaceBWTerran,
		Player2Race:         models.RaceSC2Zerg,
		MapName:             "Fighting Spirit",
		ReplayDate:          time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC),
		Observers:           nil,
		GamePrivacy:         "Normal",
		GameSpeed:           "Faster",
		GameDurationSetting: "Unlimited",
		LockedAlliances:     "Yes",
	}
}

func TestVerifyAllPassOnMatchingReplay(t *testing.T) {
	report := Verify(validReplay(), validMatch())
	if !report.AllPassed {
		t.Fatalf("expected all checks to pass, got %+v", report.Checks)
	}
}

// TestVerifyFailsOnGamePrivacyMismatch is scenario S8.
func TestVerifyFailsOnGamePrivacyMismatch(t *testing.T) {
	r := validReplay()
	r.GamePrivacy = "Private"

	report := Verify(r, validMatch())
	if report.AllPassed {
		t.Fatalf("expected verification to fail on game_privacy mismatch")
	}

	var found bool
	for _, c := range report.Checks {
		if c.Name == CheckGamePrivacy {
			found = true
			if c.Passed {
				t.Fatalf("expected game_privacy check to fail")
			}
			if c.Expected != "Normal" || c.Found != "Private" {
				t.Fatalf("unexpected expected/found values: %+v", c)
			}
		}
	}
	if !found {
		t.Fatalf("expected a game_privacy check in the report")
	}
}

func TestVerifyFailsOnRaceMismatch(t *testing.T) {
	r := validReplay()
	r.Player1Race = models.RaceBWZerg

	report := Verify(r, validMatch())
	if report.AllPassed {
		t.Fatalf("expected verification to fail on race mismatch")
	}
}

func TestVerifyRacesOrderInsensitive(t *testing.T) {
	r := validReplay()
	r.Player1Race, r.Player2Race = r.Player2Race, r.Player1Race

	c := checkRaces(r, validMatch())
	if !c.Passed {
		t.Fatalf("expected order-insensitive race match to pass")
	}
}

func TestVerifyFailsOnTimestampSkewBeyondWindow(t *testing.T) {
	r := validReplay()
	r.ReplayDate = validMatch().CreatedAt.Add(21 * time.Minute)

	report := Verify(r, validMatch())
	if report.AllPassed {
		t.Fatalf("expected verification to fail on timestamp skew > 20min")
	}
}

func TestVerifyFailsOnNonemptyObservers(t *testing.T) {
	r := validReplay()
	r.Observers = []string{"spectator1"}

	report := Verify(r, validMatch())
	if report.AllPassed {
		t.Fatalf("expected verification to fail with nonempty observers")
	}
}
