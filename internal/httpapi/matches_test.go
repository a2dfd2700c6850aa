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

func newRoutedHandler() *Handler {
	return &Handler{
		queue:     &mockQueueService{},
		lifecycle: &mockLifecycleService{},
		admin:     &mockAdminService{},
		commands:  &mockCommandsService{},
		store:     &mockPlayerStore{},
		blobs:     &mockBlobStore{},
	}
}

func TestConfirmMatchSuccess(t *testing.T) {
	h := newRoutedHandler()
	var confirmedMatch, confirmedUID int64
	h.lifecycle = &mockLifecycleService{
		ConfirmFunc: func(matchID, uid int64) error {
			confirmedMatch, confirmedUID = matchID, uid
			return nil
		},
	}

	body, _ := json.Marshal(confirmRequest{DiscordUID: 3})
	req := httptest.NewRequest(http.MethodPost, "/matches/42/confirm", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
	if confirmedMatch != 42 || confirmedUID != 3 {
		t.Fatalf("want Confirm(42, 3), got Confirm(%d, %d)", confirmedMatch, confirmedUID)
	}
}

func TestConfirmMatchAuthorizationFailureMapsTo403(t *testing.T) {
	h := newRoutedHandler()
	h.lifecycle = &mockLifecycleService{
		ConfirmFunc: func(matchID, uid int64) error {
			return ladderr.New(ladderr.AuthorizationFailure, "not a participant")
		},
	}

	body, _ := json.Marshal(confirmRequest{DiscordUID: 999})
	req := httptest.NewRequest(http.MethodPost, "/matches/42/confirm", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestRecordReportSuccess(t *testing.T) {
	h := newRoutedHandler()
	h.lifecycle = &mockLifecycleService{
		RecordReportFunc: func(matchID, uid int64, value int) (models.Match, error) {
			return models.Match{ID: matchID, MatchResult: nil}, nil
		},
	}

	body, _ := json.Marshal(reportRequest{DiscordUID: 1, Value: 1})
	req := httptest.NewRequest(http.MethodPost, "/matches/7/report", bytes.NewReader(body))
	w := httptest.NewRecorder()

	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body=%s", w.Code, w.Body.String())
	}
}

func TestGetMatchNotFound(t *testing.T) {
	h := newRoutedHandler()
	h.store = &mockPlayerStore{
		GetMatchFunc: func(id int64) (models.Match, error) {
			return models.Match{}, ladderr.New(ladderr.NotFound, "no such match")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/matches/404", nil)
	w := httptest.NewRecorder()

	h.Routes().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
