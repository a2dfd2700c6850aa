package admin

import (
	"testing"

	"github.com/openmohaa/ladder-core/internal/lifecycle"
	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/notify"
	"github.com/openmohaa/ladder-core/internal/rating"
	"github.com/openmohaa/ladder-core/internal/store"
)

func newTestSetup(t *testing.T) (*Service, *store.Store, models.Match) {
	t.Helper()

	st := store.New(nil, nil)
	st.EnsurePlayer(1)
	st.EnsurePlayer(2)
	if _, err := st.UpdateMMR(1, models.RaceBWZerg, 1492, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := st.UpdateMMR(2, models.RaceSC2Terran, 1505, nil); err != nil {
		t.Fatal(err)
	}
	match, err := st.CreateMatch(1, models.RaceBWZerg, 2, models.RaceSC2Terran, "map", "server", "tag")
	if err != nil {
		t.Fatal(err)
	}

	engine := rating.NewEngine(32)
	lc := lifecycle.NewService(st, engine, notify.NewRegistry(nil), nil, lifecycle.Config{}, nil)
	svc := NewService(st, lc, engine, notify.NewRegistry(nil), nil)

	return svc, st, match
}

// TestResolveFreshOverride is scenario S3.
func TestResolveFreshOverride(t *testing.T) {
	svc, st, match := newTestSetup(t)

	engine := rating.NewEngine(32)
	wantDelta, err := engine.Delta(1492, 1505, models.ResultP2Won)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Resolve(match.ID, 999, models.OutcomeP2Win, "ref review")
	if err != nil {
		t.Fatal(err)
	}

	if updated.MMRChange != wantDelta {
		t.Fatalf("want mmr_change=%d, got %d", wantDelta, updated.MMRChange)
	}
	if *updated.MatchResult != models.ResultP2Won {
		t.Fatalf("want match_result=p2_won, got %v", *updated.MatchResult)
	}

	mmr1, _ := st.GetMMR(1, models.RaceBWZerg)
	mmr2, _ := st.GetMMR(2, models.RaceSC2Terran)
	if mmr1.MMR != 1492+wantDelta {
		t.Fatalf("want p1 mmr=%d, got %d", 1492+wantDelta, mmr1.MMR)
	}
	if mmr2.MMR != 1505-wantDelta {
		t.Fatalf("want p2 mmr=%d, got %d", 1505-wantDelta, mmr2.MMR)
	}
	if mmr1.GamesPlayed != 1 || mmr2.GamesPlayed != 1 {
		t.Fatalf("want games_played incremented once on fresh-path resolve")
	}
	if mmr2.GamesWon != 1 || mmr1.GamesLost != 1 {
		t.Fatalf("want p2 win / p1 loss recorded")
	}
}

// TestResolveIdempotence is scenario S4: re-resolving a match multiple
// times always recomputes from the frozen initial MMRs, never from the
// post-previous-override live value, and games_played is never
// incremented again past the first (fresh-path) resolution.
func TestResolveIdempotence(t *testing.T) {
	svc, st, match := newTestSetup(t)
	engine := rating.NewEngine(32)

	if _, err := svc.Resolve(match.ID, 999, models.OutcomeP2Win, "first pass"); err != nil {
		t.Fatal(err)
	}
	mmrAfterFirst1, _ := st.GetMMR(1, models.RaceBWZerg)
	if mmrAfterFirst1.GamesPlayed != 1 {
		t.Fatalf("expected games_played=1 after fresh-path resolve")
	}

	wantDeltaP1Win, err := engine.Delta(1492, 1505, models.ResultP1Won)
	if err != nil {
		t.Fatal(err)
	}
	updated, err := svc.Resolve(match.ID, 999, models.OutcomeP1Win, "overturned")
	if err != nil {
		t.Fatal(err)
	}
	if updated.MMRChange != wantDeltaP1Win {
		t.Fatalf("want mmr_change=%d recomputed from initial MMRs, got %d", wantDeltaP1Win, updated.MMRChange)
	}

	mmr1, _ := st.GetMMR(1, models.RaceBWZerg)
	mmr2, _ := st.GetMMR(2, models.RaceSC2Terran)
	if mmr1.MMR != 1492+wantDeltaP1Win || mmr2.MMR != 1505-wantDeltaP1Win {
		t.Fatalf("want currents recomputed from initial MMRs, got p1=%d p2=%d", mmr1.MMR, mmr2.MMR)
	}
	if mmr1.GamesPlayed != 1 || mmr2.GamesPlayed != 1 {
		t.Fatalf("want games_played unchanged across re-resolution, got p1=%d p2=%d", mmr1.GamesPlayed, mmr2.GamesPlayed)
	}

	// DRAW next: currents should converge back toward (1492, 1505).
	if _, err := svc.Resolve(match.ID, 999, models.OutcomeDraw, "compromise"); err != nil {
		t.Fatal(err)
	}
	mmr1Draw, _ := st.GetMMR(1, models.RaceBWZerg)
	mmr2Draw, _ := st.GetMMR(2, models.RaceSC2Terran)
	wantDraw, _ := engine.Delta(1492, 1505, models.ResultDraw)
	if mmr1Draw.MMR != 1492+wantDraw || mmr2Draw.MMR != 1505-wantDraw {
		t.Fatalf("want draw-recomputed currents, got p1=%d p2=%d", mmr1Draw.MMR, mmr2Draw.MMR)
	}

	// INVALIDATE: exact restoration to initial MMRs, mmr_change=0.
	final, err := svc.Resolve(match.ID, 999, models.OutcomeInvalidate, "struck from record")
	if err != nil {
		t.Fatal(err)
	}
	if final.MMRChange != 0 {
		t.Fatalf("want mmr_change=0 after invalidate, got %d", final.MMRChange)
	}
	if *final.MatchResult != models.ResultAborted {
		t.Fatalf("want match_result=aborted after invalidate, got %v", *final.MatchResult)
	}
	mmr1Final, _ := st.GetMMR(1, models.RaceBWZerg)
	mmr2Final, _ := st.GetMMR(2, models.RaceSC2Terran)
	if mmr1Final.MMR != 1492 || mmr2Final.MMR != 1505 {
		t.Fatalf("want exact restoration to initial MMRs, got p1=%d p2=%d", mmr1Final.MMR, mmr2Final.MMR)
	}
	if mmr1Final.GamesPlayed != 1 || mmr2Final.GamesPlayed != 1 {
		t.Fatalf("want games_played still frozen at 1 after invalidate")
	}
}

func TestResolveInvalidateOnNeverTouchedMatch(t *testing.T) {
	svc, st, match := newTestSetup(t)

	updated, err := svc.Resolve(match.ID, 999, models.OutcomeInvalidate, "bad replay")
	if err != nil {
		t.Fatal(err)
	}
	if updated.MMRChange != 0 || *updated.MatchResult != models.ResultAborted {
		t.Fatalf("want mmr_change=0, match_result=aborted, got %+v", updated)
	}

	mmr1, _ := st.GetMMR(1, models.RaceBWZerg)
	if mmr1.GamesPlayed != 0 {
		t.Fatalf("want no game ever counted for an invalidated fresh match, got %d", mmr1.GamesPlayed)
	}
}
