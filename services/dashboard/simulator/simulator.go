package simulator

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/iulianpascalau/keys-telemetry/commonGo"
	"github.com/iulianpascalau/keys-telemetry/services/dashboard/common"
	"github.com/jonboulle/clockwork"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	// DefaultTickInterval is the time between two generated batches
	DefaultTickInterval = 2 * time.Second
	// DefaultSeedPoints is the length of the usage series seeded on first activation
	DefaultSeedPoints = 20
)

var log = logger.GetOrCreate("simulator")

// ArgsSimulator defines the simulator arguments
type ArgsSimulator struct {
	Store        Store
	Recorder     common.IngestionRecorder
	Clock        clockwork.Clock
	TickInterval time.Duration
	SeedPoints   int
	Random       *rand.Rand
}

type simulator struct {
	store        Store
	recorder     common.IngestionRecorder
	clock        clockwork.Clock
	tickInterval time.Duration
	seedPoints   int

	mutLifecycle sync.Mutex
	cancel       context.CancelFunc
	done         <-chan struct{}
	seeded       bool

	// guards the generator and the counters, held for the whole tick
	mutTick  sync.Mutex
	gen      *generator
	counters unlockCounters
}

// NewSimulator creates the local producer used while the live stream is not connected
func NewSimulator(args ArgsSimulator) (*simulator, error) {
	if check.IfNil(args.Store) {
		return nil, errors.New("nil store")
	}
	if check.IfNil(args.Recorder) {
		return nil, errors.New("nil ingestion recorder")
	}
	if args.Clock == nil {
		return nil, errors.New("nil clock")
	}

	tickInterval := args.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	seedPoints := args.SeedPoints
	if seedPoints <= 0 {
		seedPoints = DefaultSeedPoints
	}
	rnd := args.Random
	if rnd == nil {
		rnd = rand.New(rand.NewSource(args.Clock.Now().UnixNano()))
	}

	return &simulator{
		store:        args.Store,
		recorder:     args.Recorder,
		clock:        args.Clock,
		tickInterval: tickInterval,
		seedPoints:   seedPoints,
		gen:          &generator{rnd: rnd},
	}, nil
}

// Seed writes the initial usage series. It does something only once and only if the store has no usage samples.
func (s *simulator) Seed() bool {
	s.mutLifecycle.Lock()
	defer s.mutLifecycle.Unlock()

	if s.seeded {
		return false
	}
	s.seeded = true

	s.mutTick.Lock()
	points := s.gen.seedSeries(s.clock.Now(), s.seedPoints, s.tickInterval)
	s.mutTick.Unlock()

	seeded := s.store.SeedUsage(points)
	log.Debug("usage series seeding", "points", len(points), "applied", seeded)

	return seeded
}

// Start begins ticking. Calling it while running does nothing.
func (s *simulator) Start() {
	s.mutLifecycle.Lock()
	defer s.mutLifecycle.Unlock()

	if s.cancel != nil {
		return
	}

	s.mutTick.Lock()
	s.counters = countersFromMetrics(s.store.Metrics())
	s.mutTick.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = commonGo.CronJobStarter(ctx, s.clock, s.tick, s.tickInterval, false)

	log.Info("simulator started", "tick interval", s.tickInterval)
}

// Stop cancels the tick timer and returns after an in-flight tick, if any, completed.
// No store write happens after Stop returns. Calling it while stopped does nothing.
func (s *simulator) Stop() {
	s.mutLifecycle.Lock()
	defer s.mutLifecycle.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	log.Info("simulator stopped")
}

// IsRunning returns true between a Start and a Stop call
func (s *simulator) IsRunning() bool {
	s.mutLifecycle.Lock()
	defer s.mutLifecycle.Unlock()

	return s.cancel != nil
}

func (s *simulator) tick(ctx context.Context) {
	s.mutTick.Lock()
	defer s.mutTick.Unlock()

	if ctx.Err() != nil {
		return
	}

	now := s.clock.Now()
	counters := s.gen.nextCounters(s.counters)
	metrics := s.gen.nextMetrics(s.store.Metrics(), counters)
	event, telemetryError := s.gen.nextRecord(now)

	batch := common.Batch{
		Metrics: &metrics,
		Event:   event,
		Error:   telemetryError,
	}
	last, hasUsage := s.store.LastUsageSample()
	if hasUsage {
		usage := s.gen.nextUsage(last, now)
		batch.Usage = &usage
	}

	accepted := s.store.Commit(common.SourceSimulator, batch)
	s.recorder.RecordSimulatorTick()
	if !accepted {
		log.Debug("simulator batch dropped, simulator is not authoritative")
		return
	}

	s.counters = counters
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *simulator) IsInterfaceNil() bool {
	return s == nil
}
