package matchmaker

import (
	"errors"
	"testing"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
)

func TestEnterRejectsUnknownPlayer(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: false})

	_, err := q.Enter(1, []models.Race{models.RaceBWTerran}, nil, "h")
	var lerr *ladderr.Error
	if !errors.As(err, &lerr) || lerr.Kind != ladderr.NotFound {
		t.Fatalf("want NotFound, got %v", err)
	}
}

func TestEnterRejectsBannedPlayer(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true, banned: true})

	_, err := q.Enter(1, []models.Race{models.RaceBWTerran}, nil, "h")
	var lerr *ladderr.Error
	if !errors.As(err, &lerr) || lerr.Kind != ladderr.AuthorizationFailure {
		t.Fatalf("want AuthorizationFailure, got %v", err)
	}
}

func TestEnterRejectsSameTitleDoubleSelection(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true})

	_, err := q.Enter(1, []models.Race{models.RaceBWTerran, models.RaceBWZerg}, nil, "h")
	var lerr *ladderr.Error
	if !errors.As(err, &lerr) || lerr.Kind != ladderr.InvalidInput {
		t.Fatalf("want InvalidInput for two same-title races, got %v", err)
	}
}

func TestEnterRejectsTooManyVetoes(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true})

	_, err := q.Enter(1, []models.Race{models.RaceBWTerran}, []string{"a", "b", "c", "d", "e"}, "h")
	var lerr *ladderr.Error
	if !errors.As(err, &lerr) || lerr.Kind != ladderr.InvalidInput {
		t.Fatalf("want InvalidInput for too many vetoes, got %v", err)
	}
}

func TestEnterRejectsDoubleEnqueue(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true})

	if _, err := q.Enter(1, []models.Race{models.RaceBWTerran}, nil, "h"); err != nil {
		t.Fatal(err)
	}
	_, err := q.Enter(1, []models.Race{models.RaceSC2Terran}, nil, "h")
	var lerr *ladderr.Error
	if !errors.As(err, &lerr) || lerr.Kind != ladderr.InvalidTransition {
		t.Fatalf("want InvalidTransition for already-enqueued player, got %v", err)
	}
}

func TestEnterRejectsPlayerInLiveMatch(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true, live: true})

	_, err := q.Enter(1, []models.Race{models.RaceBWTerran}, nil, "h")
	var lerr *ladderr.Error
	if !errors.As(err, &lerr) || lerr.Kind != ladderr.InvalidTransition {
		t.Fatalf("want InvalidTransition for player in a live match, got %v", err)
	}
}

func TestLeaveIsIdempotent(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true})

	if _, err := q.Enter(1, []models.Race{models.RaceBWTerran}, nil, "h"); err != nil {
		t.Fatal(err)
	}
	q.Leave(1)
	q.Leave(1) // must not panic or error

	if q.IsQueued(1) {
		t.Fatalf("expected player removed from queue")
	}
}

func TestEnterAcceptsDualTitleSelection(t *testing.T) {
	q := NewQueue(&fakeLookup{exists: true})

	e, err := q.Enter(1, []models.Race{models.RaceBWTerran, models.RaceSC2Zerg}, nil, "h")
	if err != nil {
		t.Fatal(err)
	}
	if !e.IsDualTitle() {
		t.Fatalf("expected dual-title entry")
	}
}
