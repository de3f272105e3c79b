// Package view turns engine snapshots into display-ready, localized values.
package view

import (
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MRamiBalles/aquarium-sim/internal/domain/fish"
	"github.com/MRamiBalles/aquarium-sim/internal/domain/rules"
	"github.com/MRamiBalles/aquarium-sim/internal/engine"
)

var healthEmoji = map[fish.HealthStatus]string{
	fish.HealthGood:     "😊",
	fish.HealthStandard: "😐",
	fish.HealthBad:      "😨",
	fish.HealthDead:     "💀",
}

var healthKey = map[fish.HealthStatus]string{
	fish.HealthGood:     keyHealthGood,
	fish.HealthStandard: keyHealthStandard,
	fish.HealthBad:      keyHealthBad,
	fish.HealthDead:     keyHealthDead,
}

var trMagnitudes = []humanize.RelTimeMagnitude{
	{D: time.Second, Format: "şimdi", DivBy: time.Second},
	{D: 2 * time.Second, Format: "1 saniye %s", DivBy: 1},
	{D: time.Minute, Format: "%d saniye %s", DivBy: time.Second},
	{D: 2 * time.Minute, Format: "1 dakika %s", DivBy: 1},
	{D: time.Hour, Format: "%d dakika %s", DivBy: time.Minute},
	{D: 2 * time.Hour, Format: "1 saat %s", DivBy: 1},
	{D: humanize.Day, Format: "%d saat %s", DivBy: time.Hour},
	{D: 2 * humanize.Day, Format: "1 gün %s", DivBy: 1},
	{D: math.MaxInt64, Format: "%d gün %s", DivBy: humanize.Day},
}

// Localizer renders values for one locale ("tr" or "en").
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer returns a localizer; anything but "en" renders Turkish.
func NewLocalizer(locale string) *Localizer {
	tag := language.Turkish
	if locale == "en" {
		tag = language.English
	}
	return &Localizer{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale returns the active language tag.
func (l *Localizer) Locale() language.Tag {
	return l.tag
}

// HealthLabel returns "<emoji> <text>" for a status.
func (l *Localizer) HealthLabel(s fish.HealthStatus) string {
	emoji, ok := healthEmoji[s]
	if !ok {
		return "❓ " + l.printer.Sprintf(keyHealthUnknown)
	}
	return emoji + " " + l.printer.Sprintf(healthKey[s])
}

// HealthClass returns the CSS class for a status.
func HealthClass(s fish.HealthStatus) string {
	if !s.Valid() {
		return "health-unknown"
	}
	return "health-" + strings.ToLower(string(s))
}

// FeedingAdvice tells how long until the next feeding.
func (l *Localizer) FeedingAdvice(f fish.Fish, now time.Time) string {
	next := f.FeedingSchedule.LastFeedAt.Add(f.FeedingSchedule.Interval())
	minutes := int(next.Sub(now) / time.Minute)
	hours := minutes / 60
	remaining := minutes % 60

	if remaining == 0 && hours > 0 {
		return l.printer.Sprintf(keyAdviceHours, hours)
	}
	if hours <= 0 && remaining <= 0 {
		return l.printer.Sprintf(keyAdviceFeedNow)
	}
	return l.printer.Sprintf(keyAdviceHoursMinutes, hours, remaining)
}

// TimeSinceLastFeed humanizes the time since the last feeding.
func (l *Localizer) TimeSinceLastFeed(f fish.Fish, now time.Time) string {
	last := f.FeedingSchedule.LastFeedAt
	if l.tag == language.English {
		return humanize.RelTime(last, now, "ago", "from now")
	}
	return humanize.CustomRelTime(last, now, "önce", "sonra", trMagnitudes)
}

// FormatTime renders simulated time for the locale.
func (l *Localizer) FormatTime(t time.Time) string {
	if l.tag == language.English {
		return t.Format("01/02/2006, 15:04:05")
	}
	return t.Format(engine.FormattedTimeLayout)
}

// LoadFailed is the user-facing message for a failed fish load.
func (l *Localizer) LoadFailed() string {
	return l.printer.Sprintf(keyLoadFailed)
}

// AllDead is the banner shown once every fish has died.
func (l *Localizer) AllDead() string {
	return l.printer.Sprintf(keyAllDead)
}

// FormatAmount renders grams with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FishView is one fish card.
type FishView struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	WeightGrams        float64  `json:"weight"`
	HealthStatus       string   `json:"health_status"`
	HealthLabel        string   `json:"health_label"`
	HealthClass        string   `json:"health_class"`
	IsDead             bool     `json:"is_dead"`
	RecommendedDaily   string   `json:"recommended_daily"`
	RecommendedPerMeal string   `json:"recommended_per_meal"`
	TodayFeedingAmount string   `json:"today_feeding_amount"`
	FeedingAdvice      string   `json:"feeding_advice"`
	TimeSinceLastFeed  string   `json:"time_since_last_feed"`
	LastFeed           string   `json:"last_feed"`
	FeedingTimes       []string `json:"feeding_times"`
	SkippedFeedings    int      `json:"skipped_feedings"`
}

// StateView is the whole screen.
type StateView struct {
	FormattedTime string     `json:"formatted_time"`
	Speed         float64    `json:"speed"`
	SpeedLabel    string     `json:"speed_label,omitempty"`
	Running       bool       `json:"running"`
	Paused        bool       `json:"paused"`
	IsFetching    bool       `json:"is_fetching"`
	Error         string     `json:"error,omitempty"`
	AllDead       bool       `json:"all_dead"`
	Banner        string     `json:"banner,omitempty"`
	Fish          []FishView `json:"fish"`
}

// Render builds the screen state from a snapshot.
func (l *Localizer) Render(s engine.Snapshot) StateView {
	now := s.Clock.CurrentTime
	v := StateView{
		FormattedTime: l.FormatTime(now),
		Speed:         s.Clock.Speed,
		SpeedLabel:    engine.SpeedLabel(s.Clock.Speed),
		Running:       s.Clock.Running,
		Paused:        s.Clock.Paused,
		IsFetching:    s.IsFetching,
		AllDead:       s.AllDead && len(s.Fish) > 0,
		Fish:          make([]FishView, 0, len(s.Fish)),
	}
	if s.LoadError != "" {
		v.Error = l.LoadFailed()
	}
	if v.AllDead {
		v.Banner = l.AllDead()
	}
	for _, f := range s.Fish {
		v.Fish = append(v.Fish, l.RenderFish(f, now))
	}
	return v
}

// RenderFish builds one fish card.
func (l *Localizer) RenderFish(f fish.Fish, now time.Time) FishView {
	times := make([]string, len(f.FeedingTimes))
	for i, t := range f.FeedingTimes {
		times[i] = t.Format("15:04")
	}
	return FishView{
		ID:                 f.ID,
		Name:               f.Name,
		Type:               f.Type,
		WeightGrams:        f.WeightGrams,
		HealthStatus:       string(f.HealthStatus),
		HealthLabel:        l.HealthLabel(f.HealthStatus),
		HealthClass:        HealthClass(f.HealthStatus),
		IsDead:             f.IsDead(),
		RecommendedDaily:   FormatAmount(rules.RecommendedDailyFeeding(f.WeightGrams)),
		RecommendedPerMeal: FormatAmount(rules.RecommendedPerMeal(f.WeightGrams, f.FeedingSchedule.IntervalHours)),
		TodayFeedingAmount: FormatAmount(f.TodayFeedingAmount),
		FeedingAdvice:      l.FeedingAdvice(f, now),
		TimeSinceLastFeed:  l.TimeSinceLastFeed(f, now),
		LastFeed:           l.FormatTime(f.FeedingSchedule.LastFeedAt),
		FeedingTimes:       times,
		SkippedFeedings:    f.SkippedFeedings,
	}
}

// EventSummary describes a journal event type in one sentence.
func (l *Localizer) EventSummary(eventType string) string {
	return l.printer.Sprintf(eventKey(eventType))
}
