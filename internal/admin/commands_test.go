package admin

import (
	"testing"

	"github.com/openmohaa/ladder-core/internal/matchmaker"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/store"
)

type fakeLookup struct{}

func (fakeLookup) PlayerExists(uid int64) bool               { return true }
func (fakeLookup) IsBanned(uid int64) bool                   { return false }
func (fakeLookup) InLiveMatch(uid int64) bool                { return false }
func (fakeLookup) SnapshotMMR(uid int64, r models.Race) int  { return 1000 }

func TestAdjustMMR(t *testing.T) {
	st := store.New(nil, nil)
	st.EnsurePlayer(1)
	if _, err := st.UpdateMMR(1, models.RaceBWZerg, 1500, nil); err != nil {
		t.Fatal(err)
	}

	svc := NewCommandsService(st, matchmaker.NewQueue(fakeLookup{}))

	updated, err := svc.AdjustMMR(1, models.RaceBWZerg, models.MMRAdjustAdd, 25, "correction")
	if err != nil {
		t.Fatal(err)
	}
	if updated.MMR != 1525 {
		t.Fatalf("want mmr=1525, got %d", updated.MMR)
	}
	if updated.GamesPlayed != 0 {
		t.Fatalf("adjust_mmr must never touch games_played, got %d", updated.GamesPlayed)
	}

	updated, err = svc.AdjustMMR(1, models.RaceBWZerg, models.MMRAdjustSet, 1200, "reset")
	if err != nil {
		t.Fatal(err)
	}
	if updated.MMR != 1200 {
		t.Fatalf("want mmr=1200 after Set, got %d", updated.MMR)
	}
}

func TestRemoveFromQueueAndClearQueue(t *testing.T) {
	q := matchmaker.NewQueue(fakeLookup{})
	if _, err := q.Enter(1, []models.Race{models.RaceBWZerg}, nil, "h1"); err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enter(2, []models.Race{models.RaceSC2Terran}, nil, "h2"); err != nil {
		t.Fatal(err)
	}

	svc := NewCommandsService(store.New(nil, nil), q)
	svc.RemoveFromQueue(1, "afk")
	if q.IsQueued(1) {
		t.Fatalf("expected player 1 removed from queue")
	}
	if !q.IsQueued(2) {
		t.Fatalf("expected player 2 still queued")
	}

	svc.ClearQueue("maintenance")
	if q.IsQueued(2) {
		t.Fatalf("expected clear_queue to remove every player")
	}
}

func TestResetAborts(t *testing.T) {
	st := store.New(nil, nil)
	st.EnsurePlayer(1)

	svc := NewCommandsService(st, matchmaker.NewQueue(fakeLookup{}))
	p, err := svc.ResetAborts(1, 0, "abuse")
	if err != nil {
		t.Fatal(err)
	}
	if p.RemainingAborts != 0 {
		t.Fatalf("want remaining_aborts=0, got %d", p.RemainingAborts)
	}
}

func TestBan(t *testing.T) {
	st := store.New(nil, nil)
	st.EnsurePlayer(1)

	svc := NewCommandsService(st, matchmaker.NewQueue(fakeLookup{}))
	if err := svc.Ban(1, "cheating"); err != nil {
		t.Fatal(err)
	}
	p, err := st.GetPlayer(1)
	if err != nil {
		t.Fatal(err)
	}
	if !p.IsBanned {
		t.Fatalf("want is_banned=true")
	}
}
