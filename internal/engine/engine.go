package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/metrics"
)

// Options configures an Engine. Source and Fetcher are required.
type Options struct {
	Source    TickSource
	Fetcher   Fetcher
	Start     time.Time
	Tolerance time.Duration
	EventLog  *events.EventLog   // optional, defaults to an in-memory log
	Metrics   *metrics.Collector // optional
	Logger    *logger.Logger     // optional
}

// Snapshot is a consistent read of the whole simulation.
type Snapshot struct {
	Clock      ClockState  `json:"clock"`
	Fish       []fish.Fish `json:"fish"`
	AllDead    bool        `json:"all_dead"`
	IsFetching bool        `json:"is_fetching"`
	LoadError  string      `json:"load_error,omitempty"`
}

// Observer receives a snapshot after every state change. Observers run on the
// tick path and must not call Stop.
type Observer func(Snapshot)

// Engine is the central orchestrator wiring the clock, the registry and the
// journal together.
type Engine struct {
	clock    *Clock
	registry *Registry
	loader   *Loader
	eventLog *events.EventLog
	metrics  *metrics.Collector
	logger   *logger.Logger

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObsID int
}

// NewEngine initializes the clock, registry and loader.
func NewEngine(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	eventLog := opts.EventLog
	if eventLog == nil {
		eventLog = events.NewEventLog(nil)
	}
	start := opts.Start
	if start.IsZero() {
		start = DefaultStartTime(time.Now(), 12, time.Local)
	}

	clock := NewClock(opts.Source, start, log)
	registry := NewRegistry(clock, opts.Tolerance, log)

	e := &Engine{
		clock:     clock,
		registry:  registry,
		loader:    NewLoader(opts.Fetcher, registry, clock, log),
		eventLog:  eventLog,
		metrics:   opts.Metrics,
		logger:    log,
		observers: make(map[int]Observer),
	}
	clock.OnTick(e.onTick)
	e.metrics.SetSpeed(clock.Speed())
	return e
}

// Clock exposes the simulation clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Registry exposes the fish registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Loader exposes the ingestion state.
func (e *Engine) Loader() *Loader {
	return e.loader
}

// EventLog exposes the journal.
func (e *Engine) EventLog() *events.EventLog {
	return e.eventLog
}

// Subscribe registers an observer and returns a func that removes it.
func (e *Engine) Subscribe(fn Observer) func() {
	e.obsMu.Lock()
	id := e.nextObsID
	e.nextObsID++
	e.observers[id] = fn
	e.obsMu.Unlock()

	return func() {
		e.obsMu.Lock()
		delete(e.observers, id)
		e.obsMu.Unlock()
	}
}

// FeedingScheduleInfo reports last/next feed times for a fish.
func (e *Engine) FeedingScheduleInfo(fishID int) (ScheduleInfo, bool) {
	return e.registry.FeedingScheduleInfo(fishID)
}

// Snapshot returns the current simulation state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Clock:      e.clock.State(),
		Fish:       e.registry.All(),
		AllDead:    e.registry.IsAllDead(),
		IsFetching: e.loader.IsFetching(),
	}
	if err := e.loader.LastError(); err != nil {
		s.LoadError = err.Error()
	}
	return s
}

// Load fetches the fish list and replaces the registry contents.
func (e *Engine) Load(ctx context.Context) error {
	n, err := e.loader.Load(ctx)
	e.metrics.RecordLoad(err)
	if err != nil {
		e.notify()
		return err
	}

	e.record(events.Event{
		Type:    events.EventTypeFishLoaded,
		SimTime: e.clock.Now(),
		Payload: map[string]int{"count": n},
	})
	e.metrics.SetFishCounts(e.registry.Len(), e.registry.AliveCount())
	e.notify()
	return nil
}

// Feed applies a feeding at the current simulated time.
func (e *Engine) Feed(fishID int, amount float64) FeedResult {
	res := e.registry.Attempt(fishID, amount)
	e.metrics.RecordFeeding(string(res.Outcome))

	evt := events.Event{
		FishID:  fishID,
		SimTime: res.At,
		Payload: events.FeedPayload{
			Amount:       res.Amount.String(),
			Recommended:  res.Recommended.StringFixed(2),
			InWindow:     res.InWindow,
			HealthBefore: string(res.HealthBefore),
			HealthAfter:  string(res.HealthAfter),
		},
	}
	switch res.Outcome {
	case FeedAccepted:
		evt.Type = events.EventTypeFeedAccepted
	case FeedForgiven:
		evt.Type = events.EventTypeFeedForgiven
	case FeedRejected:
		evt.Type = events.EventTypeFeedRejected
	default:
		evt.Type = events.EventTypeFeedRefused
	}
	e.record(evt)

	if res.HealthAfter == fish.HealthDead && res.HealthBefore != fish.HealthDead {
		e.record(events.Event{Type: events.EventTypeFishDied, FishID: fishID, SimTime: res.At})
	}
	e.metrics.SetFishCounts(e.registry.Len(), e.registry.AliveCount())
	e.notify()
	return res
}

// Start starts the clock.
func (e *Engine) Start() {
	if e.clock.IsRunning() {
		return
	}
	e.clock.Start()
	e.recordClock(events.EventTypeClockStarted)
}

// Stop stops the clock. Must not be called from an Observer.
func (e *Engine) Stop() {
	if !e.clock.IsRunning() {
		return
	}
	e.clock.Stop()
	e.recordClock(events.EventTypeClockStopped)
}

// Pause suspends time progression without releasing the tick source.
func (e *Engine) Pause() {
	if !e.clock.IsRunning() || e.clock.IsPaused() {
		return
	}
	e.clock.Pause()
	e.recordClock(events.EventTypeClockPaused)
}

// Resume continues a paused clock.
func (e *Engine) Resume() {
	if !e.clock.IsRunning() || !e.clock.IsPaused() {
		return
	}
	e.clock.Resume()
	e.recordClock(events.EventTypeClockResumed)
}

// SetSpeed changes the clock speed. Non-positive speeds are ignored.
func (e *Engine) SetSpeed(speed float64) bool {
	if !e.clock.SetSpeed(speed) {
		return false
	}
	e.metrics.SetSpeed(speed)
	e.record(events.Event{
		Type:    events.EventTypeSpeedChanged,
		SimTime: e.clock.Now(),
		Payload: events.ClockPayload{Speed: speed, Label: SpeedLabel(speed)},
	})
	e.notify()
	return true
}

// SetTime jumps the clock and resets daily totals if the day changed.
func (e *Engine) SetTime(t time.Time) {
	previous := e.clock.Now()
	e.clock.SetTime(t)
	e.record(events.Event{Type: events.EventTypeTimeSet, SimTime: t})
	if e.registry.UpdateTodayFeedingAmount(t, previous) {
		e.record(events.Event{Type: events.EventTypeDayRollover, SimTime: t})
	}
	e.notify()
}

func (e *Engine) onTick(current, previous time.Time) {
	started := time.Now()

	if e.registry.UpdateTodayFeedingAmount(current, previous) {
		e.logger.Info("New day %s, daily feeding totals reset", events.SimDayOf(current))
		e.record(events.Event{Type: events.EventTypeDayRollover, SimTime: current})
	}

	changes := e.registry.UpdateHealth()
	for _, ch := range changes {
		e.record(events.Event{
			Type:    events.EventTypeHealthDeclined,
			FishID:  ch.FishID,
			SimTime: ch.At,
			Payload: events.HealthPayload{
				From:            string(ch.From),
				To:              string(ch.To),
				SkippedFeedings: ch.SkippedFeedings,
			},
		})
		if ch.To == fish.HealthDead {
			e.logger.Warn("%s (#%d) died", ch.Name, ch.FishID)
			e.record(events.Event{Type: events.EventTypeFishDied, FishID: ch.FishID, SimTime: ch.At})
		}
	}

	e.metrics.RecordHealthDecline(len(changes))
	e.metrics.SetFishCounts(e.registry.Len(), e.registry.AliveCount())
	e.metrics.RecordTick(time.Since(started), current)
	e.notify()
}

func (e *Engine) recordClock(t events.EventType) {
	e.record(events.Event{
		Type:    t,
		SimTime: e.clock.Now(),
		Payload: events.ClockPayload{Speed: e.clock.Speed(), Label: SpeedLabel(e.clock.Speed())},
	})
	e.notify()
}

func (e *Engine) record(evt events.Event) {
	err := e.eventLog.Append(evt)
	e.metrics.RecordEventWrite(err)
	if err != nil {
		e.logger.Warn("Journal write failed for %s: %v", evt.Type, err)
	}
	e.logger.Event(string(evt.Type), eventSubject(evt), evt.SimTime.Format(FormattedTimeLayout))
}

func eventSubject(evt events.Event) string {
	if evt.FishID == 0 {
		return "clock"
	}
	return "fish-" + strconv.Itoa(evt.FishID)
}

func (e *Engine) notify() {
	e.obsMu.RLock()
	if len(e.observers) == 0 {
		e.obsMu.RUnlock()
		return
	}
	list := make([]Observer, 0, len(e.observers))
	for _, fn := range e.observers {
		list = append(list, fn)
	}
	e.obsMu.RUnlock()

	snap := e.Snapshot()
	for _, fn := range list {
		fn(snap)
	}
}
