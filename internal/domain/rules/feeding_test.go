package rules

import (
	"testing"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/shopspring/decimal"
)

var base = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

func TestIsWithinFeedingWindowBoundaries(t *testing.T) {
	tol := DefaultFeedingTolerance
	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"exact", base, true},
		{"lower edge", base.Add(-tol), true},
		{"upper edge", base.Add(tol), true},
		{"just before", base.Add(-tol - time.Millisecond), false},
		{"just after", base.Add(tol + time.Millisecond), false},
		{"inside", base.Add(5 * time.Minute), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsWithinFeedingWindow(tc.now, base, tol); got != tc.want {
				t.Errorf("IsWithinFeedingWindow(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestIsWithinFeedingWindowIsSymmetric(t *testing.T) {
	for _, offset := range []time.Duration{0, time.Second, 9 * time.Minute, 10 * time.Minute, 11 * time.Minute, 3 * time.Hour} {
		before := IsWithinFeedingWindow(base.Add(-offset), base, DefaultFeedingTolerance)
		after := IsWithinFeedingWindow(base.Add(offset), base, DefaultFeedingTolerance)
		if before != after {
			t.Errorf("window not symmetric at offset %v: before=%v after=%v", offset, before, after)
		}
	}
}

func TestCalculateFeedingTimesLadder(t *testing.T) {
	for _, interval := range []int{1, 2, 3, 4, 6, 8, 12, 24} {
		schedule := fish.FeedingSchedule{LastFeedAt: base, IntervalHours: interval}
		times := CalculateFeedingTimes(schedule)

		if len(times) != 24/interval {
			t.Fatalf("interval %d: expected %d feeding times, got %d", interval, 24/interval, len(times))
		}
		if !times[0].Equal(base) {
			t.Errorf("interval %d: ladder should start at last feed, got %v", interval, times[0])
		}
		for i := 1; i < len(times); i++ {
			if gap := times[i].Sub(times[i-1]); gap != time.Duration(interval)*time.Hour {
				t.Errorf("interval %d: gap %d is %v", interval, i, gap)
			}
		}
	}
}

func TestCalculateFeedingTimesNonDivisor(t *testing.T) {
	times := CalculateFeedingTimes(fish.FeedingSchedule{LastFeedAt: base, IntervalHours: 5})
	if len(times) != 5 {
		t.Errorf("expected ceil(24/5)=5 feeding times, got %d", len(times))
	}
}

func TestHealthTransitions(t *testing.T) {
	improve := map[fish.HealthStatus]fish.HealthStatus{
		fish.HealthBad:      fish.HealthStandard,
		fish.HealthStandard: fish.HealthGood,
		fish.HealthGood:     fish.HealthGood,
		fish.HealthDead:     fish.HealthDead,
	}
	for from, want := range improve {
		if got := ImproveHealth(from); got != want {
			t.Errorf("ImproveHealth(%s) = %s, want %s", from, got, want)
		}
	}

	worsen := map[fish.HealthStatus]fish.HealthStatus{
		fish.HealthGood:     fish.HealthStandard,
		fish.HealthStandard: fish.HealthBad,
		fish.HealthBad:      fish.HealthDead,
		fish.HealthDead:     fish.HealthDead,
	}
	for from, want := range worsen {
		if got := WorsenHealth(from); got != want {
			t.Errorf("WorsenHealth(%s) = %s, want %s", from, got, want)
		}
	}
}

func TestDeadIsAbsorbing(t *testing.T) {
	status := fish.HealthDead
	steps := []func(fish.HealthStatus) fish.HealthStatus{ImproveHealth, ImproveHealth, WorsenHealth, ImproveHealth}
	for _, step := range steps {
		status = step(status)
		if status != fish.HealthDead {
			t.Fatalf("dead fish came back as %s", status)
		}
	}
}

func TestRecommendedAmounts(t *testing.T) {
	daily := RecommendedDailyFeeding(100)
	if !daily.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("expected daily 1.00, got %s", daily)
	}

	perMeal := RecommendedPerMeal(100, 12)
	if !perMeal.Equal(decimal.RequireFromString("0.50")) {
		t.Errorf("expected per meal 0.50, got %s", perMeal)
	}
}

func TestPerMealTimesMealsMatchesDaily(t *testing.T) {
	for _, weight := range []float64{1, 7.5, 33, 100, 250, 1234.56} {
		for _, interval := range []int{1, 2, 3, 4, 6, 8, 12, 24} {
			meals := decimal.NewFromInt(int64(24 / interval))
			total := RecommendedPerMeal(weight, interval).Mul(meals)
			daily := RecommendedDailyFeeding(weight)

			// each meal is rounded to 0.005 at most
			tolerance := decimal.NewFromFloat(0.005).Mul(meals)
			if total.Sub(daily).Abs().GreaterThan(tolerance) {
				t.Errorf("weight %v interval %d: per meal * meals = %s, daily = %s", weight, interval, total, daily)
			}
		}
	}
}

func TestHasMissedFeeding(t *testing.T) {
	schedule := fish.FeedingSchedule{LastFeedAt: base, IntervalHours: 12}
	tol := DefaultFeedingTolerance

	if HasMissedFeeding(base.Add(11*time.Hour+50*time.Minute), schedule, 0, tol) {
		t.Errorf("exactly at the threshold should not count as a miss")
	}
	if !HasMissedFeeding(base.Add(11*time.Hour+50*time.Minute+time.Second), schedule, 0, tol) {
		t.Errorf("just past the threshold should count as a miss")
	}
	if HasMissedFeeding(base.Add(13*time.Hour), schedule, 1, tol) {
		t.Errorf("one outstanding miss should widen the deadline to 24h")
	}
}
