package httpapi

import (
	"context"

	"github.com/openmohaa/ladder-core/internal/models"
)

// mockQueueService follows the teacher's Mock*Service func-field pattern
// (internal/handlers/mocks_test.go): a nil func falls back to a sane
// default so tests only set the behavior they actually exercise.
type mockQueueService struct {
	EnterFunc func(uid int64, races []models.Race, vetoes []string, handle string) (models.QueueEntry, error)
	LeaveFunc func(uid int64)
	IsQueuedFunc func(uid int64) bool
}

func (m *mockQueueService) Enter(uid int64, races []models.Race, vetoes []string, handle string) (models.QueueEntry, error) {
	if m.EnterFunc != nil {
		return m.EnterFunc(uid, races, vetoes, handle)
	}
	return models.QueueEntry{DiscordUID: uid}, nil
}

func (m *mockQueueService) Leave(uid int64) {
	if m.LeaveFunc != nil {
		m.LeaveFunc(uid)
	}
}

func (m *mockQueueService) IsQueued(uid int64) bool {
	if m.IsQueuedFunc != nil {
		return m.IsQueuedFunc(uid)
	}
	return false
}

type mockLifecycleService struct {
	ConfirmFunc      func(matchID, uid int64) error
	RecordReportFunc func(matchID, uid int64, value int) (models.Match, error)
}

func (m *mockLifecycleService) Confirm(matchID, uid int64) error {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(matchID, uid)
	}
	return nil
}

func (m *mockLifecycleService) RecordReport(matchID, uid int64, value int) (models.Match, error) {
	if m.RecordReportFunc != nil {
		return m.RecordReportFunc(matchID, uid, value)
	}
	return models.Match{ID: matchID}, nil
}

type mockAdminService struct {
	ResolveFunc func(matchID, adminID int64, outcome models.Outcome, reason string) (models.Match, error)
}

func (m *mockAdminService) Resolve(matchID, adminID int64, outcome models.Outcome, reason string) (models.Match, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(matchID, adminID, outcome, reason)
	}
	return models.Match{ID: matchID}, nil
}

type mockCommandsService struct {
	AdjustMMRFunc       func(uid int64, race models.Race, op models.MMRAdjustOp, value int, reason string) (models.MMREntry, error)
	RemoveFromQueueFunc func(uid int64, reason string)
	ClearQueueFunc      func(reason string)
	ResetAbortsFunc     func(uid int64, newCount int, reason string) (models.Player, error)
	BanFunc             func(uid int64, reason string) error
}

func (m *mockCommandsService) AdjustMMR(uid int64, race models.Race, op models.MMRAdjustOp, value int, reason string) (models.MMREntry, error) {
	if m.AdjustMMRFunc != nil {
		return m.AdjustMMRFunc(uid, race, op, value, reason)
	}
	return models.MMREntry{DiscordUID: uid, Race: race}, nil
}

func (m *mockCommandsService) RemoveFromQueue(uid int64, reason string) {
	if m.RemoveFromQueueFunc != nil {
		m.RemoveFromQueueFunc(uid, reason)
	}
}

func (m *mockCommandsService) ClearQueue(reason string) {
	if m.ClearQueueFunc != nil {
		m.ClearQueueFunc(reason)
	}
}

func (m *mockCommandsService) ResetAborts(uid int64, newCount int, reason string) (models.Player, error) {
	if m.ResetAbortsFunc != nil {
		return m.ResetAbortsFunc(uid, newCount, reason)
	}
	return models.Player{DiscordUID: uid, RemainingAborts: newCount}, nil
}

func (m *mockCommandsService) Ban(uid int64, reason string) error {
	if m.BanFunc != nil {
		return m.BanFunc(uid, reason)
	}
	return nil
}

type mockPlayerStore struct {
	GetPlayerFunc         func(uid int64) (models.Player, error)
	EnsurePlayerFunc      func(uid int64) models.Player
	GetPreferencesFunc    func(uid int64) models.Preferences
	UpdatePreferencesFunc func(uid int64, races []models.Race, vetoes []string) models.Preferences
	GetMMRFunc            func(uid int64, race models.Race) (models.MMREntry, error)
	GetMatchFunc          func(id int64) (models.Match, error)
	InsertReplayFunc      func(r models.Replay)
	GetReplayFunc         func(path string) (models.Replay, error)
	RecordCommandCallFunc func(uid int64, command string)
}

func (m *mockPlayerStore) GetPlayer(uid int64) (models.Player, error) {
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(uid)
	}
	return models.Player{DiscordUID: uid}, nil
}

func (m *mockPlayerStore) EnsurePlayer(uid int64) models.Player {
	if m.EnsurePlayerFunc != nil {
		return m.EnsurePlayerFunc(uid)
	}
	return models.Player{DiscordUID: uid}
}

func (m *mockPlayerStore) GetPreferences(uid int64) models.Preferences {
	if m.GetPreferencesFunc != nil {
		return m.GetPreferencesFunc(uid)
	}
	return models.Preferences{DiscordUID: uid}
}

func (m *mockPlayerStore) UpdatePreferences(uid int64, races []models.Race, vetoes []string) models.Preferences {
	if m.UpdatePreferencesFunc != nil {
		return m.UpdatePreferencesFunc(uid, races, vetoes)
	}
	return models.Preferences{DiscordUID: uid}
}

func (m *mockPlayerStore) GetMMR(uid int64, race models.Race) (models.MMREntry, error) {
	if m.GetMMRFunc != nil {
		return m.GetMMRFunc(uid, race)
	}
	return models.MMREntry{DiscordUID: uid, Race: race}, nil
}

func (m *mockPlayerStore) GetMatch(id int64) (models.Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return models.Match{ID: id}, nil
}

func (m *mockPlayerStore) InsertReplay(r models.Replay) {
	if m.InsertReplayFunc != nil {
		m.InsertReplayFunc(r)
	}
}

func (m *mockPlayerStore) GetReplay(path string) (models.Replay, error) {
	if m.GetReplayFunc != nil {
		return m.GetReplayFunc(path)
	}
	return models.Replay{ReplayPath: path}, nil
}

func (m *mockPlayerStore) RecordCommandCall(uid int64, command string) {
	if m.RecordCommandCallFunc != nil {
		m.RecordCommandCallFunc(uid, command)
	}
}

type mockBlobStore struct {
	PutBlobFunc func(ctx context.Context, key string, data []byte, contentType string) error
}

func (m *mockBlobStore) PutBlob(ctx context.Context, key string, data []byte, contentType string) error {
	if m.PutBlobFunc != nil {
		return m.PutBlobFunc(ctx, key, data, contentType)
	}
	return nil
}
