package lifecycle

import (
	"testing"
	"time"

	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/notify"
	"github.com/openmohaa/ladder-core/internal/rating"
	"github.com/openmohaa/ladder-core/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Store, *notify.Registry, models.Match) {
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

	registry := notify.NewRegistry(nil)
	svc := NewService(st, rating.NewEngine(32), registry, nil, Config{
		ConfirmTimer: time.Hour, // tests drive transitions directly, not via real timers
		AbortTimer:   time.Hour,
	}, nil)

	// Register without relying on the real timers firing.
	svc.mu.Lock()
	svc.matches[match.ID] = &matchState{}
	svc.mu.Unlock()

	return svc, st, registry, match
}

// TestRecordReportConflict is scenario S7.
func TestRecordReportConflict(t *testing.T) {
	svc, st, _, match := newTestService(t)

	if _, err := svc.RecordReport(match.ID, 1, int(models.ReportP1Won)); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.RecordReport(match.ID, 2, int(models.ReportP2Won))
	if err != nil {
		t.Fatal(err)
	}

	if updated.MatchResult == nil || *updated.MatchResult != models.ResultConflict {
		t.Fatalf("expected match_result=conflict, got %+v", updated.MatchResult)
	}
	if updated.MMRChange != 0 {
		t.Fatalf("expected no mmr change on conflict")
	}

	mmr1, _ := st.GetMMR(1, models.RaceBWZerg)
	if mmr1.MMR != 1492 {
		t.Fatalf("expected mmr unchanged on conflict, got %d", mmr1.MMR)
	}
}

// TestRecordReportSelfAbort is scenario S6.
func TestRecordReportSelfAbort(t *testing.T) {
	svc, st, _, match := newTestService(t)

	p1, err := st.GetPlayer(1)
	if err != nil {
		t.Fatal(err)
	}
	startAborts := p1.RemainingAborts

	updated, err := svc.RecordReport(match.ID, 1, int(models.ReportSelfAbort))
	if err != nil {
		t.Fatal(err)
	}
	if updated.MatchResult != nil {
		t.Fatalf("expected no terminal transition until both reports land, got %+v", updated.MatchResult)
	}
	if *updated.Player1Report != models.ReportSelfAbort {
		t.Fatalf("expected player_1_report = self-abort")
	}
	if updated.Player2Report != nil {
		t.Fatalf("expected player_2_report to stay None")
	}

	p1After, err := st.GetPlayer(1)
	if err != nil {
		t.Fatal(err)
	}
	if p1After.RemainingAborts != startAborts-1 {
		t.Fatalf("expected remaining_aborts decremented by 1, got %d (was %d)", p1After.RemainingAborts, startAborts)
	}

	final, err := svc.RecordReport(match.ID, 2, int(models.ReportP2Won))
	if err != nil {
		t.Fatal(err)
	}
	if final.MatchResult == nil || *final.MatchResult != models.ResultAborted {
		t.Fatalf("expected match_result=aborted once both reports present and one is self-abort")
	}
	if final.MMRChange != 0 {
		t.Fatalf("expected no mmr change on abort")
	}
}

// TestRecordReportRejectsOnTerminalMatch covers the TerminalMatch
// rejection named in spec §4.5.
func TestRecordReportRejectsOnTerminalMatch(t *testing.T) {
	svc, _, _, match := newTestService(t)

	if _, err := svc.RecordReport(match.ID, 1, int(models.ReportDraw)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordReport(match.ID, 2, int(models.ReportDraw)); err != nil {
		t.Fatal(err)
	}

	_, err := svc.RecordReport(match.ID, 1, int(models.ReportDraw))
	if err == nil {
		t.Fatalf("expected error submitting a report on an already-terminal match")
	}
}

func TestRecordReportRejectsNonParticipant(t *testing.T) {
	svc, _, _, match := newTestService(t)

	_, err := svc.RecordReport(match.ID, 999, int(models.ReportDraw))
	if err == nil {
		t.Fatalf("expected error for non-participant report submission")
	}
}

// TestExpireAsNoShowNeitherConfirmed is scenario S5.
func TestExpireAsNoShowNeitherConfirmed(t *testing.T) {
	svc, _, _, match := newTestService(t)

	svc.expireAsNoShow(match.ID)

	updated, err := svc.store.GetMatch(match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *updated.Player1Report != models.ReportNoShow || *updated.Player2Report != models.ReportNoShow {
		t.Fatalf("expected both reports = no-show")
	}
	if *updated.MatchResult != models.ResultAborted {
		t.Fatalf("expected match_result=aborted")
	}
	if updated.MMRChange != 0 {
		t.Fatalf("expected no mmr change")
	}
}

func TestExpireAsNoShowPreservesConfirmedPlayersNilReport(t *testing.T) {
	svc, st, _, match := newTestService(t)

	if _, err := st.SetConfirmed(match.ID, 1); err != nil {
		t.Fatal(err)
	}

	svc.expireAsNoShow(match.ID)

	updated, err := svc.store.GetMatch(match.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Player1Report != nil {
		t.Fatalf("expected confirmed player's report to stay None, got %v", *updated.Player1Report)
	}
	if *updated.Player2Report != models.ReportNoShow {
		t.Fatalf("expected unconfirmed player's report = no-show")
	}
}

// TestNoShowReasonNamesTheNonConfirmingPlayer is scenario S5's companion:
// when only one side failed to confirm, the cause string must name that
// player rather than using the neither-confirmed wording.
func TestNoShowReasonNamesTheNonConfirmingPlayer(t *testing.T) {
	match := models.Match{
		Player1UID: 1,
		Player2UID: 2,
		Confirmed:  map[int64]bool{1: true},
	}
	want := "only 2 did not confirm"
	if got := noShowReason(match); got != want {
		t.Fatalf("want reason %q, got %q", want, got)
	}
}

// TestNoShowReasonNeitherConfirmed covers the other S5 branch.
func TestNoShowReasonNeitherConfirmed(t *testing.T) {
	match := models.Match{
		Player1UID: 1,
		Player2UID: 2,
		Confirmed:  map[int64]bool{},
	}
	want := "neither player confirmed"
	if got := noShowReason(match); got != want {
		t.Fatalf("want reason %q, got %q", want, got)
	}
}

// TestSelfAbortReasonNamesTheAbortingPlayer is scenario S6's companion:
// the fanned Reason must name whichever player self-aborted.
func TestSelfAbortReasonNamesTheAbortingPlayer(t *testing.T) {
	match := models.Match{Player1UID: 1, Player2UID: 2}
	want := "1 aborted"
	if got := selfAbortReason(match, models.ReportSelfAbort, models.ReportP2Won); got != want {
		t.Fatalf("want reason %q, got %q", want, got)
	}
}

func TestCompleteAgreedAppliesRatingAndStats(t *testing.T) {
	svc, st, _, match := newTestService(t)

	if _, err := svc.RecordReport(match.ID, 1, int(models.ReportP1Won)); err != nil {
		t.Fatal(err)
	}
	updated, err := svc.RecordReport(match.ID, 2, int(models.ReportP1Won))
	if err != nil {
		t.Fatal(err)
	}

	if *updated.MatchResult != models.ResultP1Won {
		t.Fatalf("expected match_result=p1_won")
	}

	mmr1, _ := st.GetMMR(1, models.RaceBWZerg)
	mmr2, _ := st.GetMMR(2, models.RaceSC2Terran)
	if mmr1.GamesPlayed != 1 || mmr1.GamesWon != 1 {
		t.Fatalf("expected p1 games_played=1 won=1, got %+v", mmr1)
	}
	if mmr2.GamesPlayed != 1 || mmr2.GamesLost != 1 {
		t.Fatalf("expected p2 games_played=1 lost=1, got %+v", mmr2)
	}
	if updated.MMRChange == 0 {
		t.Fatalf("expected nonzero mmr_change for a decisive result")
	}
}
