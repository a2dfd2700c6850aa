package store

import (
	"time"

	"github.com/openmohaa/ladder-core/internal/models"
	"github.com/openmohaa/ladder-core/internal/writequeue"
)

// RecordAdminAction enqueues an admin_actions audit row. The hot store has
// no in-memory admin_actions table — this is a pure fan-out to durable
// storage, mirroring RecordPlayerActionLog/RecordCommandCall.
func (s *Store) RecordAdminAction(action models.AdminAction) {
	action.At = time.Now().UTC()
	s.queue.Enqueue(writequeue.Job{Kind: writequeue.KindAdminAction, AdminAction: &action})
}
