package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
)

// TickRate is the real-time cadence of the clock.
const TickRate = 1 * time.Second

// FormattedTimeLayout renders simulated time as dd.MM.yyyy HH:mm:ss.
const FormattedTimeLayout = "02.01.2006 15:04:05"

// SpeedPreset is a named playback speed offered to the presentation layer.
type SpeedPreset struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

// SpeedPresets lists the standard playback speeds.
var SpeedPresets = []SpeedPreset{
	{Value: 1, Label: "1x"},
	{Value: 60, Label: "1m/s"},
	{Value: 120, Label: "2m/s"},
	{Value: 3600, Label: "1h/s"},
}

// TickListener is notified after simulated time moved from previous to current.
type TickListener func(current, previous time.Time)

// ClockState is a read-only view of the clock.
type ClockState struct {
	CurrentTime time.Time `json:"current_time"`
	Speed       float64   `json:"speed"`
	Running     bool      `json:"running"`
	Paused      bool      `json:"paused"`
}

// Clock owns simulated time. It advances TickRate*speed on every tick while
// running and not paused.
type Clock struct {
	mu      sync.RWMutex
	current time.Time
	speed   float64
	running bool
	paused  bool
	handle  *TickHandle

	// generation invalidates callbacks from a cancelled tick source.
	generation uint64

	// tickMu serializes a whole tick (advance + listeners) against Stop, so
	// no listener runs after Stop returns. Listeners must not call Stop.
	tickMu    sync.Mutex
	listeners []TickListener

	source TickSource
	logger *logger.Logger
}

// NewClock creates a stopped clock at start with speed 1.
func NewClock(source TickSource, start time.Time, log *logger.Logger) *Clock {
	return &Clock{
		current: start,
		speed:   1,
		source:  source,
		logger:  log,
	}
}

// DefaultStartTime returns today's date in loc at hour:00:00.
func DefaultStartTime(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, loc)
}

// OnTick registers a listener for time advances.
func (c *Clock) OnTick(l TickListener) {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Start begins ticking. Starting a running clock is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.paused = false

	if c.handle == nil {
		c.generation++
		gen := c.generation
		h := c.source.Start(TickRate, func() { c.tick(gen) })
		c.handle = &h
	}
	c.logger.Info("Simulation clock started at %s (speed %vx)", c.current.Format(FormattedTimeLayout), c.speed)
}

// Stop cancels the tick source and clears the paused flag. Safe to call repeatedly.
func (c *Clock) Stop() {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		c.source.Cancel(*c.handle)
		c.handle = nil
	}
	wasRunning := c.running
	c.running = false
	c.paused = false
	if wasRunning {
		c.logger.Info("Simulation clock stopped at %s", c.current.Format(FormattedTimeLayout))
	}
}

// Pause suppresses advances while keeping the tick source alive. No-op unless running.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.paused = true
}

// Resume re-enables advances. No-op unless running.
func (c *Clock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.paused = false
}

// SetSpeed replaces the multiplier for the next tick. Non-positive speeds are ignored.
func (c *Clock) SetSpeed(speed float64) bool {
	if speed <= 0 {
		c.logger.Warn("Ignoring non-positive simulation speed %v", speed)
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	return true
}

// SetTime force-sets simulated time without notifying listeners.
func (c *Clock) SetTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Now returns the current simulated time.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Speed returns the current multiplier.
func (c *Clock) Speed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.speed
}

// IsRunning reports whether the clock has been started and not stopped.
func (c *Clock) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// IsPaused reports whether advances are suppressed.
func (c *Clock) IsPaused() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.paused
}

// State returns a consistent copy of the clock fields.
func (c *Clock) State() ClockState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ClockState{
		CurrentTime: c.current,
		Speed:       c.speed,
		Running:     c.running,
		Paused:      c.paused,
	}
}

// FormattedTime renders the current time for display.
func (c *Clock) FormattedTime() string {
	return c.Now().Format(FormattedTimeLayout)
}

// tick processes a single real-time tick.
func (c *Clock) tick(gen uint64) {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	c.mu.Lock()
	if c.handle == nil || c.generation != gen || !c.running || c.paused {
		c.mu.Unlock()
		return
	}
	previous := c.current
	c.current = previous.Add(advanceFor(c.speed))
	current := c.current
	c.mu.Unlock()

	for _, l := range c.listeners {
		l(current, previous)
	}
}

// advanceFor converts one real tick into simulated time.
func advanceFor(speed float64) time.Duration {
	return time.Duration(float64(TickRate) * speed)
}

// String implements fmt.Stringer for debugging.
func (s ClockState) String() string {
	return fmt.Sprintf("%s speed=%vx running=%v paused=%v", s.CurrentTime.Format(FormattedTimeLayout), s.Speed, s.Running, s.Paused)
}

// SpeedLabel returns the preset label for speed, or "" for custom speeds.
func SpeedLabel(speed float64) string {
	for _, p := range SpeedPresets {
		if p.Value == speed {
			return p.Label
		}
	}
	return ""
}
