package lifecycle

import "github.com/openmohaa/ladder-core/internal/models"

// Store is the subset of the hot store the match lifecycle needs. A
// narrow interface keeps the service testable against an in-memory fake.
type Store interface {
	GetMatch(id int64) (models.Match, error)
	UpdateMatchReport(id int64, which int, value models.Report) (models.Match, error)
	SetMatchResult(id int64, result models.MatchResult) (models.Match, error)
	UpdateMatchMMRChange(id int64, change int) (models.Match, error)
	RecordSystemAbort(id int64, p1Report, p2Report models.Report) (models.Match, error)
	SetConfirmed(id int64, uid int64) (models.Match, error)

	GetMMR(uid int64, race models.Race) (models.MMREntry, error)
	UpdateMMR(uid int64, race models.Race, newMMR int, delta *models.GameStatDelta) (models.MMREntry, error)

	DecrementAborts(uid int64) (int, error)
}
