// Package rules contains the pure calculation logic for feeding and health.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"math"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/shopspring/decimal"
)

// DefaultFeedingTolerance is the half-width of a feeding window.
const DefaultFeedingTolerance = 10 * time.Minute

// HoursPerDay is the length of the daily feeding cycle.
const HoursPerDay = 24

// dailyRationShift expresses "1% of body weight" as a decimal shift.
const dailyRationShift = -2

var improveTable = map[fish.HealthStatus]fish.HealthStatus{
	fish.HealthBad:      fish.HealthStandard,
	fish.HealthStandard: fish.HealthGood,
	fish.HealthGood:     fish.HealthGood,
	fish.HealthDead:     fish.HealthDead,
}

var worsenTable = map[fish.HealthStatus]fish.HealthStatus{
	fish.HealthGood:     fish.HealthStandard,
	fish.HealthStandard: fish.HealthBad,
	fish.HealthBad:      fish.HealthDead,
	fish.HealthDead:     fish.HealthDead,
}

// IsWithinFeedingWindow reports whether now lies in [scheduled-tolerance, scheduled+tolerance].
func IsWithinFeedingWindow(now, scheduled time.Time, tolerance time.Duration) bool {
	return !now.Before(scheduled.Add(-tolerance)) && !now.After(scheduled.Add(tolerance))
}

// WithinAnyFeedingWindow reports whether now falls in the window of any scheduled time.
func WithinAnyFeedingWindow(now time.Time, scheduled []time.Time, tolerance time.Duration) bool {
	for _, at := range scheduled {
		if IsWithinFeedingWindow(now, at, tolerance) {
			return true
		}
	}
	return false
}

// MealsPerDay returns 24/intervalHours. It is fractional when the interval does not divide 24.
func MealsPerDay(intervalHours int) float64 {
	if intervalHours <= 0 {
		return 0
	}
	return float64(HoursPerDay) / float64(intervalHours)
}

// CalculateFeedingTimes builds the ladder of feeding instants for one day,
// starting at the last feed and stepping by the interval.
func CalculateFeedingTimes(schedule fish.FeedingSchedule) []time.Time {
	count := int(math.Ceil(MealsPerDay(schedule.IntervalHours)))
	times := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		times = append(times, schedule.LastFeedAt.Add(time.Duration(i)*schedule.Interval()))
	}
	return times
}

// ImproveHealth moves one step towards GOOD. DEAD stays DEAD.
func ImproveHealth(status fish.HealthStatus) fish.HealthStatus {
	if next, ok := improveTable[status]; ok {
		return next
	}
	return status
}

// WorsenHealth moves one step towards DEAD. DEAD stays DEAD.
func WorsenHealth(status fish.HealthStatus) fish.HealthStatus {
	if next, ok := worsenTable[status]; ok {
		return next
	}
	return status
}

// RecommendedDailyFeeding is 1% of body weight, rounded to two decimals.
func RecommendedDailyFeeding(weightGrams float64) decimal.Decimal {
	return decimal.NewFromFloat(weightGrams).Shift(dailyRationShift).Round(2)
}

// RecommendedPerMeal splits the daily ration evenly over the day's meals, rounded to two decimals.
func RecommendedPerMeal(weightGrams float64, intervalHours int) decimal.Decimal {
	meals := MealsPerDay(intervalHours)
	if meals == 0 {
		return decimal.Zero
	}
	return RecommendedDailyFeeding(weightGrams).Div(decimal.NewFromFloat(meals)).Round(2)
}

// MissedFeedingDeadline returns how long after the last feed a fish may go
// before the next miss is counted. Each outstanding miss widens the deadline
// by one interval.
func MissedFeedingDeadline(intervalHours, skippedFeedings int) time.Duration {
	return time.Duration(intervalHours) * time.Hour * time.Duration(skippedFeedings+1)
}

// HasMissedFeeding applies the reconciliation rule:
// now - lastFeed + tolerance > interval * (skipped + 1).
func HasMissedFeeding(now time.Time, schedule fish.FeedingSchedule, skippedFeedings int, tolerance time.Duration) bool {
	elapsed := now.Sub(schedule.LastFeedAt) + tolerance
	return elapsed > MissedFeedingDeadline(schedule.IntervalHours, skippedFeedings)
}
