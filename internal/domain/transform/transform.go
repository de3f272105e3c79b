// Package transform turns raw fish definitions into registry-ready fish.
// Like rules, it is pure: the caller supplies the simulated "now".
package transform

import (
	"fmt"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/domain/rules"
	"github.com/shopspring/decimal"
)

const lastFeedLayout = "15:04"

// Fish converts raw records into fish anchored on the simulated calendar day of now.
// A single malformed record fails the whole batch.
func Fish(records []fish.RawRecord, now time.Time) ([]*fish.Fish, error) {
	out := make([]*fish.Fish, 0, len(records))
	seen := make(map[int]bool, len(records))

	for i, raw := range records {
		if seen[raw.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", fish.ErrInvalidRecord, raw.ID)
		}
		seen[raw.ID] = true

		f, err := Record(raw, now)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Record converts a single raw definition.
func Record(raw fish.RawRecord, now time.Time) (*fish.Fish, error) {
	if raw.Weight <= 0 {
		return nil, fmt.Errorf("%w: fish %d has non-positive weight %v", fish.ErrInvalidRecord, raw.ID, raw.Weight)
	}
	if raw.FeedingSchedule.IntervalInHours <= 0 {
		return nil, fmt.Errorf("%w: fish %d has non-positive interval %d", fish.ErrInvalidRecord, raw.ID, raw.FeedingSchedule.IntervalInHours)
	}

	lastFeed, err := LastFeedOn(raw.FeedingSchedule.LastFeed, now)
	if err != nil {
		return nil, fmt.Errorf("fish %d: %w", raw.ID, err)
	}

	f := &fish.Fish{
		ID:           raw.ID,
		Type:         raw.Type,
		Name:         raw.Name,
		WeightGrams:  raw.Weight,
		HealthStatus: fish.HealthStandard,
		FeedingSchedule: fish.FeedingSchedule{
			LastFeedAt:    lastFeed,
			IntervalHours: raw.FeedingSchedule.IntervalInHours,
		},
		SkippedFeedings:    0,
		TodayFeedingAmount: decimal.Zero,
	}
	f.FeedingTimes = rules.CalculateFeedingTimes(f.FeedingSchedule)
	return f, nil
}

// LastFeedOn interprets an "HH:MM" clock reading on the calendar day of now,
// in now's location.
func LastFeedOn(clock string, now time.Time) (time.Time, error) {
	parsed, err := time.Parse(lastFeedLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: last feed %q is not HH:MM", fish.ErrInvalidRecord, clock)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, parsed.Hour(), parsed.Minute(), 0, 0, now.Location()), nil
}
