package view

// Message keys registered in the tr and en catalogs.
const (
	keyHealthGood     = "health.good"
	keyHealthStandard = "health.standard"
	keyHealthBad      = "health.bad"
	keyHealthDead     = "health.dead"
	keyHealthUnknown  = "health.unknown"

	keyAdviceHours        = "advice.hours"
	keyAdviceHoursMinutes = "advice.hours_minutes"
	keyAdviceFeedNow      = "advice.feed_now"

	keyLoadFailed = "load.failed"
	keyAllDead    = "tank.all_dead"
)

func eventKey(eventType string) string {
	return "event." + eventType
}
