package engine

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TickHandle identifies one recurring tick registration.
type TickHandle uint64

// TickSource schedules a callback at a fixed real-time cadence.
type TickSource interface {
	Start(interval time.Duration, fn func()) TickHandle
	Cancel(h TickHandle)
}

// ClockworkTickSource drives callbacks from a clockwork clock. Production uses
// the real clock; tests hand in clockwork.NewFakeClock and call Advance.
type ClockworkTickSource struct {
	clock clockwork.Clock

	mu    sync.Mutex
	next  TickHandle
	stops map[TickHandle]chan struct{}
}

// NewClockworkTickSource creates a tick source on top of clk. A nil clk means real time.
func NewClockworkTickSource(clk clockwork.Clock) *ClockworkTickSource {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	return &ClockworkTickSource{
		clock: clk,
		stops: make(map[TickHandle]chan struct{}),
	}
}

// Start spawns a goroutine that calls fn every interval until Cancel.
func (s *ClockworkTickSource) Start(interval time.Duration, fn func()) TickHandle {
	s.mu.Lock()
	s.next++
	h := s.next
	stop := make(chan struct{})
	s.stops[h] = stop
	s.mu.Unlock()

	ticker := s.clock.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

// Cancel stops the goroutine behind h. Unknown handles are ignored.
func (s *ClockworkTickSource) Cancel(h TickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.stops[h]; ok {
		close(stop)
		delete(s.stops, h)
	}
}

// Active returns how many registrations are live.
func (s *ClockworkTickSource) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stops)
}

// ManualTickSource never fires on its own; Fire invokes every live callback
// synchronously. It backs tests and the scenario runner.
type ManualTickSource struct {
	mu        sync.Mutex
	next      TickHandle
	callbacks map[TickHandle]func()
	intervals map[TickHandle]time.Duration
}

// NewManualTickSource creates an idle manual tick source.
func NewManualTickSource() *ManualTickSource {
	return &ManualTickSource{
		callbacks: make(map[TickHandle]func()),
		intervals: make(map[TickHandle]time.Duration),
	}
}

// Start records fn without scheduling anything.
func (s *ManualTickSource) Start(interval time.Duration, fn func()) TickHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.callbacks[s.next] = fn
	s.intervals[s.next] = interval
	return s.next
}

// Cancel forgets the callback behind h.
func (s *ManualTickSource) Cancel(h TickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.callbacks, h)
	delete(s.intervals, h)
}

// Fire runs every live callback n times.
func (s *ManualTickSource) Fire(n int) {
	for i := 0; i < n; i++ {
		s.mu.Lock()
		fns := make([]func(), 0, len(s.callbacks))
		for _, fn := range s.callbacks {
			fns = append(fns, fn)
		}
		s.mu.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
}

// Active returns how many registrations are live.
func (s *ManualTickSource) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.callbacks)
}

// Interval returns the cadence requested for h.
func (s *ManualTickSource) Interval(h TickHandle) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.intervals[h]
	return d, ok
}
