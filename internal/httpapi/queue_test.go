package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openmohaa/ladder-core/internal/ladderr"
	"github.com/openmohaa/ladder-core/internal/models"
)

func TestEnterQueueSuccess(t *testing.T) {
	var entered int64
	h := &Handler{
		queue: &mockQueueService{
			EnterFunc: func(uid int64, races []models.Race, vetoes []string, handle string) (models.QueueEntry, error) {
				entered = uid
				return models.QueueEntry{DiscordUID: uid, SelectedRaces: races}, nil
			},
		},
		store: &mockPlayerStore{},
	}

	body, _ := json.Marshal(enterQueueRequest{DiscordUID: 7, SelectedRaces: []models.Race{models.RaceBWZerg}, PresenterHandle: "h"})
	req := httptest.NewRequest(http.MethodPost, "/queue/enter", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.EnterQueue(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
	if entered != 7 {
		t.Fatalf("want queue.Enter called with uid=7, got %d", entered)
	}
}

func TestEnterQueueMapsInvalidTransitionTo409(t *testing.T) {
	h := &Handler{
		queue: &mockQueueService{
			EnterFunc: func(uid int64, races []models.Race, vetoes []string, handle string) (models.QueueEntry, error) {
				return models.QueueEntry{}, ladderr.New(ladderr.InvalidTransition, "already enqueued")
			},
		},
		store: &mockPlayerStore{},
	}

	body, _ := json.Marshal(enterQueueRequest{DiscordUID: 7, SelectedRaces: []models.Race{models.RaceBWZerg}})
	req := httptest.NewRequest(http.MethodPost, "/queue/enter", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.EnterQueue(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestLeaveQueue(t *testing.T) {
	var left int64 = -1
	h := &Handler{
		queue: &mockQueueService{
			LeaveFunc: func(uid int64) { left = uid },
		},
	}

	body, _ := json.Marshal(leaveQueueRequest{DiscordUID: 9})
	req := httptest.NewRequest(http.MethodPost, "/queue/leave", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.LeaveQueue(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if left != 9 {
		t.Fatalf("want Leave called with uid=9, got %d", left)
	}
}
