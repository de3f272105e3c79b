package engine

import (
	"sync"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/domain/rules"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/shopspring/decimal"
)

// TimeSource supplies the current simulated time.
type TimeSource interface {
	Now() time.Time
}

// FeedOutcome classifies a feeding attempt.
type FeedOutcome string

const (
	FeedAccepted       FeedOutcome = "ACCEPTED"        // on time and exact amount
	FeedForgiven       FeedOutcome = "FORGIVEN"        // catch-up after a single miss
	FeedRejected       FeedOutcome = "REJECTED"        // wrong time or amount
	FeedRefusedDead    FeedOutcome = "REFUSED_DEAD"    // fish is dead, nothing changed
	FeedRefusedUnknown FeedOutcome = "REFUSED_UNKNOWN" // no fish with that id
)

// FeedResult describes what a feeding attempt did.
type FeedResult struct {
	FishID       int               `json:"fish_id"`
	Outcome      FeedOutcome       `json:"outcome"`
	Amount       decimal.Decimal   `json:"amount"`
	Recommended  decimal.Decimal   `json:"recommended"`
	InWindow     bool              `json:"in_window"`
	Exact        bool              `json:"exact"`
	HealthBefore fish.HealthStatus `json:"health_before"`
	HealthAfter  fish.HealthStatus `json:"health_after"`
	At           time.Time         `json:"at"`
}

// OK reports whether the feeding counted as a success.
func (r FeedResult) OK() bool {
	return r.Outcome == FeedAccepted || r.Outcome == FeedForgiven
}

// HealthChange records one health step taken during reconciliation.
type HealthChange struct {
	FishID          int               `json:"fish_id"`
	Name            string            `json:"name"`
	From            fish.HealthStatus `json:"from"`
	To              fish.HealthStatus `json:"to"`
	SkippedFeedings int               `json:"skipped_feedings"`
	At              time.Time         `json:"at"`
}

// ScheduleInfo summarizes a fish's feeding schedule relative to now.
type ScheduleInfo struct {
	FeedingsPerDay     float64   `json:"feedings_per_day"`
	LastFeedTime       time.Time `json:"last_feed_time"`
	NextFeedTime       time.Time `json:"next_feed_time"`
	HoursSinceLastFeed float64   `json:"hours_since_last_feed"`
	HoursUntilNextFeed float64   `json:"hours_until_next_feed"`
}

// Registry owns the fish collection. A single mutex guards it because
// reconciliation touches every fish at once.
type Registry struct {
	mu        sync.RWMutex
	fish      []*fish.Fish
	clock     TimeSource
	tolerance time.Duration
	logger    *logger.Logger
}

// NewRegistry creates an empty registry reading time from clock.
func NewRegistry(clock TimeSource, tolerance time.Duration, log *logger.Logger) *Registry {
	if tolerance <= 0 {
		tolerance = rules.DefaultFeedingTolerance
	}
	return &Registry{
		clock:     clock,
		tolerance: tolerance,
		logger:    log,
	}
}

// Tolerance returns the feeding window half-width in use.
func (r *Registry) Tolerance() time.Duration {
	return r.tolerance
}

// Ingest replaces the collection with copies of fishes. Nil entries are skipped.
func (r *Registry) Ingest(fishes []*fish.Fish) {
	owned := make([]*fish.Fish, 0, len(fishes))
	for _, f := range fishes {
		if f == nil {
			continue
		}
		c := f.Clone()
		owned = append(owned, &c)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.fish = owned
	r.logger.Info("Registry now holds %d fish", len(r.fish))
}

// Feed applies a feeding and reports success.
func (r *Registry) Feed(fishID int, amount float64) bool {
	return r.Attempt(fishID, amount).OK()
}

// Attempt applies a feeding and reports which path it took.
func (r *Registry) Attempt(fishID int, amount float64) FeedResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	fed := decimal.NewFromFloat(amount)
	result := FeedResult{FishID: fishID, Amount: fed, At: now}

	target := r.find(fishID)
	if target == nil {
		r.logger.Warn("Fish with id %d not found", fishID)
		result.Outcome = FeedRefusedUnknown
		return result
	}

	result.HealthBefore = target.HealthStatus
	result.HealthAfter = target.HealthStatus
	if target.IsDead() {
		r.logger.Warn("Cannot feed %s because it is dead", target.Name)
		result.Outcome = FeedRefusedDead
		return result
	}

	result.Recommended = r.recommendedPerMeal(target)
	result.Exact = fed.Equal(result.Recommended)
	result.InWindow = rules.WithinAnyFeedingWindow(now, target.FeedingTimes, r.tolerance)
	r.logger.Debug("fish %d: exact=%v inWindow=%v feedingTimes=%v", fishID, result.Exact, result.InWindow, target.FeedingTimes)

	switch {
	case result.InWindow && result.Exact:
		target.HealthStatus = rules.ImproveHealth(target.HealthStatus)
		target.SkippedFeedings = 0
		target.FeedingSchedule.LastFeedAt = now
		target.FeedingTimes = rules.CalculateFeedingTimes(target.FeedingSchedule)
		target.TodayFeedingAmount = target.TodayFeedingAmount.Add(fed)
		target.FeedingTimes = removeFeedingTime(target.FeedingTimes, now)
		result.Outcome = FeedAccepted

	case target.SkippedFeedings == 1:
		// A single outstanding miss is forgiven regardless of time or amount.
		target.SkippedFeedings = 0
		target.FeedingSchedule.LastFeedAt = now
		target.FeedingTimes = rules.CalculateFeedingTimes(target.FeedingSchedule)
		target.TodayFeedingAmount = target.TodayFeedingAmount.Add(fed)
		result.Outcome = FeedForgiven

	default:
		r.logger.Warn("Cannot feed %s; not time or amount is incorrect (expected %s) but %s was fed at %s",
			target.Name, result.Recommended, fed, now.Format(FormattedTimeLayout))
		target.HealthStatus = rules.WorsenHealth(target.HealthStatus)
		target.SkippedFeedings = 0
		target.FeedingSchedule.LastFeedAt = now
		target.TodayFeedingAmount = target.TodayFeedingAmount.Add(fed)
		result.Outcome = FeedRejected
	}

	result.HealthAfter = target.HealthStatus
	return result
}

// UpdateHealth penalizes every living fish that is outside all of its
// feeding windows and past its missed-feeding deadline.
func (r *Registry) UpdateHealth() []HealthChange {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var changes []HealthChange

	for _, f := range r.fish {
		if f.IsDead() {
			continue
		}
		if rules.WithinAnyFeedingWindow(now, f.FeedingTimes, r.tolerance) {
			continue
		}
		if !rules.HasMissedFeeding(now, f.FeedingSchedule, f.SkippedFeedings, r.tolerance) {
			continue
		}

		from := f.HealthStatus
		f.HealthStatus = rules.WorsenHealth(f.HealthStatus)
		f.SkippedFeedings++
		changes = append(changes, HealthChange{
			FishID:          f.ID,
			Name:            f.Name,
			From:            from,
			To:              f.HealthStatus,
			SkippedFeedings: f.SkippedFeedings,
			At:              now,
		})
	}
	return changes
}

// UpdateTodayFeedingAmount zeroes every fish's daily total when current and
// old fall on different calendar dates. It reports whether a reset happened.
func (r *Registry) UpdateTodayFeedingAmount(current, old time.Time) bool {
	if sameCalendarDay(current, old) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.fish {
		f.TodayFeedingAmount = decimal.Zero
	}
	return true
}

// RecommendedDailyFeeding is 1% of the fish's weight.
func (r *Registry) RecommendedDailyFeeding(f fish.Fish) decimal.Decimal {
	return rules.RecommendedDailyFeeding(f.WeightGrams)
}

// RecommendedPerMeal is the daily ration divided over the day's meals.
func (r *Registry) RecommendedPerMeal(f fish.Fish) decimal.Decimal {
	return r.recommendedPerMeal(&f)
}

// FeedingScheduleInfo reports last/next feed times for a fish.
func (r *Registry) FeedingScheduleInfo(fishID int) (ScheduleInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	target := r.find(fishID)
	if target == nil {
		r.logger.Warn("Fish with id %d not found", fishID)
		return ScheduleInfo{}, false
	}
	return scheduleInfo(target.FeedingSchedule, r.clock.Now()), true
}

// IsAllDead reports whether every fish is dead. An empty registry counts as all dead.
func (r *Registry) IsAllDead() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.fish {
		if !f.IsDead() {
			return false
		}
	}
	return true
}

// AliveCount returns how many fish are not dead.
func (r *Registry) AliveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, f := range r.fish {
		if !f.IsDead() {
			n++
		}
	}
	return n
}

// Len returns the number of fish.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fish)
}

// Get returns a copy of the fish with id.
func (r *Registry) Get(fishID int) (fish.Fish, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target := r.find(fishID)
	if target == nil {
		return fish.Fish{}, false
	}
	return target.Clone(), true
}

// All returns copies of every fish in registry order.
func (r *Registry) All() []fish.Fish {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]fish.Fish, 0, len(r.fish))
	for _, f := range r.fish {
		out = append(out, f.Clone())
	}
	return out
}

func (r *Registry) find(fishID int) *fish.Fish {
	for _, f := range r.fish {
		if f.ID == fishID {
			return f
		}
	}
	return nil
}

func (r *Registry) recommendedPerMeal(f *fish.Fish) decimal.Decimal {
	return rules.RecommendedPerMeal(f.WeightGrams, f.FeedingSchedule.IntervalHours)
}

func removeFeedingTime(times []time.Time, consumed time.Time) []time.Time {
	out := times[:0]
	for _, at := range times {
		if !at.Equal(consumed) {
			out = append(out, at)
		}
	}
	return out
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}

func scheduleInfo(s fish.FeedingSchedule, now time.Time) ScheduleInfo {
	next := s.LastFeedAt.Add(s.Interval())
	return ScheduleInfo{
		FeedingsPerDay:     rules.MealsPerDay(s.IntervalHours),
		LastFeedTime:       s.LastFeedAt,
		NextFeedTime:       next,
		HoursSinceLastFeed: now.Sub(s.LastFeedAt).Hours(),
		HoursUntilNextFeed: next.Sub(now).Hours(),
	}
}
