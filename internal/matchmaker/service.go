package matchmaker

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/ladder-core/internal/models"
)

// MatchStore is the subset of the hot store the matchmaker needs to turn a
// Pair into a persisted Match.
type MatchStore interface {
	CreateMatch(p1UID int64, p1Race models.Race, p2UID int64, p2Race models.Race, mapName, server, chatChannelTag string) (models.Match, error)
}

// LifecycleStarter is notified of every freshly created match so C5 can
// begin its confirmation/abort timers.
type LifecycleStarter interface {
	BeginLifecycle(match models.Match)
}

// Service wires the Queue and the pure wave algorithm to match creation
// and lifecycle handoff, running one wave every WavePeriod until Stop is
// called (spec §4.4's "a wave runs every WAVE_PERIOD").
type Service struct {
	Queue      *Queue
	Store      MatchStore
	Lifecycle  LifecycleStarter
	MapPool    []string
	Servers    ServerTable
	WavePeriod time.Duration
	Rng        *rand.Rand
	Logger     *zap.SugaredLogger

	stop chan struct{}
}

// NewService constructs a Service whose Rng is seeded from the current
// time; RunOnce uses Rng directly, so it must not be set to nil.
func NewService(queue *Queue, st MatchStore, lc LifecycleStarter, mapPool []string, servers ServerTable, wavePeriod time.Duration, logger *zap.SugaredLogger) *Service {
	return &Service{
		Queue:      queue,
		Store:      st,
		Lifecycle:  lc,
		MapPool:    mapPool,
		Servers:    servers,
		WavePeriod: wavePeriod,
		Rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Run blocks, executing a wave on every tick, until Stop is called.
func (svc *Service) Run() {
	ticker := time.NewTicker(svc.WavePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.RunOnce()
		case <-svc.stop:
			return
		}
	}
}

// Stop halts Run's ticking loop.
func (svc *Service) Stop() {
	close(svc.stop)
}

// RunOnce executes exactly one wave: pairing, match creation, lifecycle
// handoff. Exposed separately from Run so tests and an admin "force wave"
// command can drive it deterministically.
func (svc *Service) RunOnce() {
	pairs := svc.Queue.RunWave()

	for _, pair := range pairs {
		p1UID, p1Race := pickBWSide(pair)
		p2UID, p2Race := pickSC2Side(pair)

		mapName := PickMap(svc.Rng, svc.MapPool, pair.Lead.VetoedMaps, pair.Follow.VetoedMaps)
		server := svc.Servers.PickServer(countryOf(pair.Lead), countryOf(pair.Follow))
		tag := ChatChannelTag(svc.Rng)

		match, err := svc.Store.CreateMatch(p1UID, p1Race, p2UID, p2Race, mapName, server, tag)
		if err != nil {
			if svc.Logger != nil {
				svc.Logger.Errorw("wave: create_match failed", "error", err)
			}
			continue
		}
		if svc.Lifecycle != nil {
			svc.Lifecycle.BeginLifecycle(match)
		}
	}
}

// pickBWSide returns whichever side of the pair holds a BW race, assigned
// to player 1 per spec §4.4's "P1=BW, P2=SC2 by convention".
func pickBWSide(p Pair) (uid int64, race models.Race) {
	if p.LeadRace.TitleOf() == models.TitleBW {
		return p.Lead.DiscordUID, p.LeadRace
	}
	return p.Follow.DiscordUID, p.FollowRace
}

func pickSC2Side(p Pair) (uid int64, race models.Race) {
	if p.LeadRace.TitleOf() == models.TitleSC2 {
		return p.Lead.DiscordUID, p.LeadRace
	}
	return p.Follow.DiscordUID, p.FollowRace
}

// countryOf is a placeholder seam: country is carried on the Player
// record, not the QueueEntry, and is not looked up here, so it always
// returns "" and PickServer falls back to an arbitrary table entry for
// every match. Tests exercise PickServer directly.
func countryOf(models.QueueEntry) string { return "" }
