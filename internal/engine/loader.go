package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/domain/transform"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
)

// ErrLoadInProgress is returned when Load is called while a fetch is running.
var ErrLoadInProgress = errors.New("fish load already in progress")

// Fetcher retrieves raw fish definitions.
type Fetcher interface {
	FetchRawFish(ctx context.Context) ([]fish.RawRecord, error)
}

// Loader fetches raw records, transforms them at the current simulated time
// and hands the result to the registry.
type Loader struct {
	fetcher  Fetcher
	registry *Registry
	clock    TimeSource
	logger   *logger.Logger

	mu       sync.Mutex
	fetching bool
	lastErr  error
}

// NewLoader creates a loader feeding the given registry.
func NewLoader(fetcher Fetcher, registry *Registry, clock TimeSource, log *logger.Logger) *Loader {
	return &Loader{
		fetcher:  fetcher,
		registry: registry,
		clock:    clock,
		logger:   log,
	}
}

// Load fetches and ingests the fish list. On any failure the registry keeps
// its previous contents and the error is retained for LastError.
func (l *Loader) Load(ctx context.Context) (int, error) {
	l.mu.Lock()
	if l.fetching {
		l.mu.Unlock()
		return 0, ErrLoadInProgress
	}
	l.fetching = true
	l.lastErr = nil
	l.mu.Unlock()

	n, err := l.load(ctx)

	l.mu.Lock()
	l.fetching = false
	l.lastErr = err
	l.mu.Unlock()
	return n, err
}

func (l *Loader) load(ctx context.Context) (int, error) {
	records, err := l.fetcher.FetchRawFish(ctx)
	if err != nil {
		l.logger.Error("Fish fetch failed: %v", err)
		return 0, err
	}

	fishes, err := transform.Fish(records, l.clock.Now())
	if err != nil {
		l.logger.Error("Fish records rejected: %v", err)
		return 0, err
	}

	l.registry.Ingest(fishes)
	l.logger.Info("Loaded %d fish", len(fishes))
	return len(fishes), nil
}

// IsFetching reports whether a load is in flight.
func (l *Loader) IsFetching() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fetching
}

// LastError returns the error of the most recent load, or nil.
func (l *Loader) LastError() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}
