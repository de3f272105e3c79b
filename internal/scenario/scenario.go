// Package scenario replays scripted aquarium days against the engine with a
// manual tick source and checks the fish end up where expected.
package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/domain/transform"
	"github.com/MRamiBalles/aquarium-sim/internal/engine"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
)

// Step kinds.
const (
	StepAdvance = "advance"  // fire Ticks clock ticks
	StepFeed    = "feed"     // feed FishID with Amount
	StepSpeed   = "speed"    // set the clock speed
	StepSetTime = "set_time" // jump to At (HH:MM, same day or +Days)
)

// Expect is checked after a step.
type Expect struct {
	FishID  int    `json:"fish_id"`
	Health  string `json:"health,omitempty"`
	Skipped *int   `json:"skipped,omitempty"`
	Outcome string `json:"outcome,omitempty"` // feed steps only
	Amount  string `json:"amount,omitempty"`  // today's total, two decimals
	AllDead *bool  `json:"all_dead,omitempty"`
}

// Step is one scripted action.
type Step struct {
	Kind   string  `json:"kind"`
	Ticks  int     `json:"ticks,omitempty"`
	FishID int     `json:"fish_id,omitempty"`
	Amount float64 `json:"amount,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	At     string  `json:"at,omitempty"`
	Days   int     `json:"days,omitempty"`
	Expect *Expect `json:"expect,omitempty"`
}

// Scenario is a named script.
type Scenario struct {
	Name  string           `json:"name"`
	Start string           `json:"start"` // HH:MM on the scenario day
	Fish  []fish.RawRecord `json:"fish"`
	Steps []Step           `json:"steps"`
}

// Result captures the outcome of one scenario.
type Result struct {
	ScenarioName string
	FailedStep   int // -1 when passed
	Passed       bool
	Reason       string
	Events       int
}

// Day is the calendar date every scenario runs on.
var Day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type staticFetcher []fish.RawRecord

func (f staticFetcher) FetchRawFish(ctx context.Context) ([]fish.RawRecord, error) {
	return f, nil
}

// Decode reads a JSON array of scenarios.
func Decode(r io.Reader) ([]Scenario, error) {
	var out []Scenario
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode scenarios: %w", err)
	}
	return out, nil
}

// Runner executes scenarios.
type Runner struct {
	logger  *logger.Logger
	results []Result
}

// NewRunner creates a runner logging to log.
func NewRunner(log *logger.Logger) *Runner {
	return &Runner{logger: log}
}

// Run executes every scenario and returns their results.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []Result {
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			break
		}
		res := r.runOne(ctx, sc)
		if res.Passed {
			r.logger.Info("PASS %s (%d events)", sc.Name, res.Events)
		} else {
			r.logger.Warn("FAIL %s at step %d: %s", sc.Name, res.FailedStep, res.Reason)
		}
		r.results = append(r.results, res)
	}
	return r.results
}

// GetResults returns everything run so far.
func (r *Runner) GetResults() []Result {
	return r.results
}

func (r *Runner) runOne(ctx context.Context, sc Scenario) Result {
	fail := func(step int, format string, args ...any) Result {
		return Result{ScenarioName: sc.Name, FailedStep: step, Reason: fmt.Sprintf(format, args...)}
	}

	start, err := transform.LastFeedOn(sc.Start, Day)
	if err != nil {
		return fail(-1, "bad start: %v", err)
	}

	src := engine.NewManualTickSource()
	eng := engine.NewEngine(engine.Options{
		Source:  src,
		Fetcher: staticFetcher(sc.Fish),
		Start:   start,
		Logger:  r.logger,
	})
	if err := eng.Load(ctx); err != nil {
		return fail(-1, "load: %v", err)
	}
	eng.Start()
	defer eng.Stop()

	for i, step := range sc.Steps {
		var feed *engine.FeedResult
		switch step.Kind {
		case StepAdvance:
			src.Fire(step.Ticks)
		case StepFeed:
			res := eng.Feed(step.FishID, step.Amount)
			feed = &res
		case StepSpeed:
			if !eng.SetSpeed(step.Speed) {
				return fail(i, "speed %v rejected", step.Speed)
			}
		case StepSetTime:
			at, err := transform.LastFeedOn(step.At, Day)
			if err != nil {
				return fail(i, "bad time: %v", err)
			}
			eng.SetTime(at.AddDate(0, 0, step.Days))
		default:
			return fail(i, "unknown step kind %q", step.Kind)
		}

		if step.Expect != nil {
			if reason := check(eng, step.Expect, feed); reason != "" {
				return fail(i, "%s", reason)
			}
		}
	}

	return Result{ScenarioName: sc.Name, FailedStep: -1, Passed: true, Events: eng.EventLog().Len()}
}

func check(eng *engine.Engine, want *Expect, feed *engine.FeedResult) string {
	if want.AllDead != nil && eng.Registry().IsAllDead() != *want.AllDead {
		return fmt.Sprintf("expected all_dead=%v", *want.AllDead)
	}
	if want.Outcome != "" {
		if feed == nil {
			return "outcome expected on a non-feed step"
		}
		if string(feed.Outcome) != want.Outcome {
			return fmt.Sprintf("expected outcome %s, got %s", want.Outcome, feed.Outcome)
		}
	}
	if want.FishID == 0 {
		return ""
	}

	f, ok := eng.Registry().Get(want.FishID)
	if !ok {
		return fmt.Sprintf("fish %d not found", want.FishID)
	}
	if want.Health != "" && string(f.HealthStatus) != want.Health {
		return fmt.Sprintf("fish %d: expected health %s, got %s at %s",
			f.ID, want.Health, f.HealthStatus, eng.Clock().FormattedTime())
	}
	if want.Skipped != nil && f.SkippedFeedings != *want.Skipped {
		return fmt.Sprintf("fish %d: expected %d skipped feedings, got %d", f.ID, *want.Skipped, f.SkippedFeedings)
	}
	if want.Amount != "" && f.TodayFeedingAmount.StringFixed(2) != want.Amount {
		return fmt.Sprintf("fish %d: expected today's amount %s, got %s", f.ID, want.Amount, f.TodayFeedingAmount.StringFixed(2))
	}
	return ""
}
