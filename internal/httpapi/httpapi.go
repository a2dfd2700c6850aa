// Package httpapi is the HTTP transport (the presenter surface named
// throughout the core packages' doc comments): chi routing, JSON
// request/response bodies, and the error-Kind-to-status mapping every
// handler funnels through. It never contains ladder logic itself — every
// handler is a thin adapter onto matchmaker.Queue, lifecycle.Service,
// admin.Service/CommandsService, replay.Verify and the hot store.
package httpapi

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/models"
)

// QueueService is the subset of matchmaker.Queue the HTTP layer drives.
type QueueService interface {
	Enter(uid int64, selectedRaces []models.Race, vetoedMaps []string, presenterHandle string) (models.QueueEntry, error)
	Leave(uid int64)
	IsQueued(uid int64) bool
}

// LifecycleService is the subset of lifecycle.Service the HTTP layer
// drives.
type LifecycleService interface {
	Confirm(matchID, uid int64) error
	RecordReport(matchID, uid int64, value int) (models.Match, error)
}

// AdminService is the subset of admin.Service the HTTP layer drives.
type AdminService interface {
	Resolve(matchID, adminID int64, outcome models.Outcome, reason string) (models.Match, error)
}

// CommandsService is the subset of admin.CommandsService the HTTP layer
// drives.
type CommandsService interface {
	AdjustMMR(uid int64, race models.Race, op models.MMRAdjustOp, value int, reason string) (models.MMREntry, error)
	RemoveFromQueue(uid int64, reason string)
	ClearQueue(reason string)
	ResetAborts(uid int64, newCount int, reason string) (models.Player, error)
	Ban(uid int64, reason string) error
}

// PlayerStore is the subset of the hot store read and mutated directly by
// HTTP handlers that aren't routed through one of the services above
// (player/preferences lookups, replay metadata, audit logging).
type PlayerStore interface {
	GetPlayer(uid int64) (models.Player, error)
	EnsurePlayer(uid int64) models.Player
	GetPreferences(uid int64) models.Preferences
	UpdatePreferences(uid int64, races []models.Race, vetoes []string) models.Preferences
	GetMMR(uid int64, race models.Race) (models.MMREntry, error)
	GetMatch(id int64) (models.Match, error)
	InsertReplay(r models.Replay)
	GetReplay(path string) (models.Replay, error)
	RecordCommandCall(uid int64, command string)
}

// BlobStore is the subset of objectstore.Store the replay-upload handler
// depends on.
type BlobStore interface {
	PutBlob(ctx context.Context, key string, data []byte, contentType string) error
}

// Pinger is satisfied by *pgxpool.Pool / driver.Conn / *redis.Client; Ready
// only needs to know "did the ping succeed", following the teacher's
// Ready handler.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config wires a Handler's dependencies. Any field may be left nil in a
// test Config so long as the handlers under test don't reach it — mirrors
// the teacher's Config/New(cfg) construction style.
type Config struct {
	Queue     QueueService
	Lifecycle LifecycleService
	Admin     AdminService
	Commands  CommandsService
	Store     PlayerStore
	Blobs     BlobStore

	Postgres   Pinger
	ClickHouse Pinger
	Redis      *redis.Client

	AllowedOrigins []string
	Logger         *zap.Logger
}

// Handler holds the unexported, already-Sugar()'d form of Config, plus the
// idempotency helper's redis handle.
type Handler struct {
	queue     QueueService
	lifecycle LifecycleService
	admin     AdminService
	commands  CommandsService
	store     PlayerStore
	blobs     BlobStore

	postgres   Pinger
	clickhouse Pinger
	redis      *redis.Client

	allowedOrigins []string
	logger         *zap.SugaredLogger
}

// New builds a Handler from cfg.
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		queue:          cfg.Queue,
		lifecycle:      cfg.Lifecycle,
		admin:          cfg.Admin,
		commands:       cfg.Commands,
		store:          cfg.Store,
		blobs:          cfg.Blobs,
		postgres:       cfg.Postgres,
		clickhouse:     cfg.ClickHouse,
		redis:          cfg.Redis,
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger.Sugar(),
	}
}

// idempotencyTTL is how long a cached admin-command response is replayed
// back to a client that retries the same Idempotency-Key.
const idempotencyTTL = 10 * time.Minute
