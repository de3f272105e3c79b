package scenario

import (
	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
)

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

// nemo eats at 09:00 and 21:00, 0.50g per meal.
func nemo() fish.RawRecord {
	return fish.RawRecord{
		ID:     1,
		Type:   "Clownfish",
		Name:   "Nemo",
		Weight: 100,
		FeedingSchedule: fish.RawSchedule{
			LastFeed:        "09:00",
			IntervalInHours: 12,
		},
	}
}

// Builtin returns the scenarios shipped with the runner.
func Builtin() []Scenario {
	return []Scenario{
		{
			Name:  "correct feeding improves health",
			Start: "21:00",
			Fish:  []fish.RawRecord{nemo()},
			Steps: []Step{
				{Kind: StepFeed, FishID: 1, Amount: 0.5, Expect: &Expect{
					FishID: 1, Outcome: "ACCEPTED", Health: "GOOD", Amount: "0.50",
				}},
				// The 21:00 slot is consumed, so a second meal is off schedule.
				{Kind: StepFeed, FishID: 1, Amount: 0.5, Expect: &Expect{
					FishID: 1, Outcome: "REJECTED", Health: "STANDARD", Amount: "1.00",
				}},
			},
		},
		{
			Name:  "missed feedings kill",
			Start: "12:00",
			Fish:  []fish.RawRecord{nemo()},
			Steps: []Step{
				{Kind: StepSpeed, Speed: 3600},
				{Kind: StepAdvance, Ticks: 9, Expect: &Expect{FishID: 1, Health: "STANDARD", Skipped: intp(0)}},
				{Kind: StepAdvance, Ticks: 1, Expect: &Expect{FishID: 1, Health: "BAD", Skipped: intp(1)}},
				{Kind: StepAdvance, Ticks: 11, Expect: &Expect{FishID: 1, Health: "DEAD", AllDead: boolp(true)}},
			},
		},
		{
			Name:  "single miss is forgiven",
			Start: "12:00",
			Fish:  []fish.RawRecord{nemo()},
			Steps: []Step{
				{Kind: StepSpeed, Speed: 3600},
				{Kind: StepAdvance, Ticks: 10, Expect: &Expect{FishID: 1, Health: "BAD", Skipped: intp(1)}},
				{Kind: StepFeed, FishID: 1, Amount: 0.2, Expect: &Expect{
					FishID: 1, Outcome: "FORGIVEN", Health: "BAD", Skipped: intp(0), Amount: "0.20",
				}},
			},
		},
		{
			Name:  "dead fish stay dead",
			Start: "12:00",
			Fish:  []fish.RawRecord{nemo()},
			Steps: []Step{
				{Kind: StepSpeed, Speed: 3600},
				{Kind: StepAdvance, Ticks: 21, Expect: &Expect{FishID: 1, Health: "DEAD"}},
				{Kind: StepFeed, FishID: 1, Amount: 0.5, Expect: &Expect{
					FishID: 1, Outcome: "REFUSED_DEAD", Health: "DEAD", Amount: "0.00",
				}},
				{Kind: StepAdvance, Ticks: 24, Expect: &Expect{FishID: 1, Health: "DEAD", AllDead: boolp(true)}},
			},
		},
		{
			Name:  "daily total resets at midnight",
			Start: "21:00",
			Fish:  []fish.RawRecord{nemo()},
			Steps: []Step{
				{Kind: StepFeed, FishID: 1, Amount: 0.5, Expect: &Expect{FishID: 1, Amount: "0.50"}},
				{Kind: StepSetTime, At: "00:30", Days: 1, Expect: &Expect{FishID: 1, Amount: "0.00", Health: "GOOD"}},
			},
		},
	}
}
