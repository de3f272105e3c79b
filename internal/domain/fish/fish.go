// Package fish defines the core domain entities for the simulated aquarium.
// This package is PURE and must NOT import any infrastructure packages (network, events, platform).
package fish

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is returned when a raw fish definition cannot be turned into a Fish.
var ErrInvalidRecord = errors.New("invalid fish record")

// HealthStatus is the ordinal health of a fish. DEAD is terminal.
type HealthStatus string

const (
	HealthDead     HealthStatus = "DEAD"
	HealthBad      HealthStatus = "BAD"
	HealthStandard HealthStatus = "STANDARD"
	HealthGood     HealthStatus = "GOOD"
)

// Rank orders statuses DEAD < BAD < STANDARD < GOOD. Unknown statuses rank -1.
func (h HealthStatus) Rank() int {
	switch h {
	case HealthDead:
		return 0
	case HealthBad:
		return 1
	case HealthStandard:
		return 2
	case HealthGood:
		return 3
	default:
		return -1
	}
}

// Valid reports whether h is one of the four known statuses.
func (h HealthStatus) Valid() bool {
	return h.Rank() >= 0
}

// FeedingSchedule tracks when a fish was last fed and how often it eats.
type FeedingSchedule struct {
	LastFeedAt    time.Time `json:"last_feed_at"`
	IntervalHours int       `json:"interval_hours"` // expected to divide 24
}

// Interval returns the gap between two meals.
func (s FeedingSchedule) Interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

// Fish represents the state of a single simulated fish.
type Fish struct {
	ID          int     `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	WeightGrams float64 `json:"weight"`

	HealthStatus    HealthStatus    `json:"health_status"`
	FeedingSchedule FeedingSchedule `json:"feeding_schedule"`
	FeedingTimes    []time.Time     `json:"feeding_times"`

	// SkippedFeedings counts windows missed since the last feeding attempt.
	SkippedFeedings    int             `json:"skipped_feedings"`
	TodayFeedingAmount decimal.Decimal `json:"today_feeding_amount"`
}

// IsDead reports whether the fish reached the terminal status.
func (f *Fish) IsDead() bool {
	return f.HealthStatus == HealthDead
}

// Clone returns a deep copy safe to hand to readers outside the registry lock.
func (f *Fish) Clone() Fish {
	out := *f
	out.FeedingTimes = append([]time.Time(nil), f.FeedingTimes...)
	return out
}

// RawSchedule is the feeding schedule as delivered by the fish API.
type RawSchedule struct {
	LastFeed        string `json:"lastFeed"` // "HH:MM"
	IntervalInHours int    `json:"intervalInHours"`
}

// RawRecord is one fish definition as delivered by the fish API.
type RawRecord struct {
	ID              int         `json:"id"`
	Type            string      `json:"type"`
	Name            string      `json:"name"`
	Weight          float64     `json:"weight"` // grams
	FeedingSchedule RawSchedule `json:"feedingSchedule"`
}
