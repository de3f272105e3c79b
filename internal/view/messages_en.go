package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, keyHealthGood, "Good")
	message.SetString(lang, keyHealthStandard, "Normal")
	message.SetString(lang, keyHealthBad, "Bad")
	message.SetString(lang, keyHealthDead, "Dead")
	message.SetString(lang, keyHealthUnknown, "Unknown")

	message.SetString(lang, keyAdviceHours, "%d hours")
	message.SetString(lang, keyAdviceHoursMinutes, "%d hours %d minutes")
	message.SetString(lang, keyAdviceFeedNow, "Time to feed!")

	message.SetString(lang, keyLoadFailed, "Fish could not be loaded")
	message.SetString(lang, keyAllDead, "All fish have died")

	message.SetString(lang, eventKey("FISH_LOADED"), "Fish were loaded.")
	message.SetString(lang, eventKey("FEED_ACCEPTED"), "Fed on time with the right amount.")
	message.SetString(lang, eventKey("FEED_FORGIVEN"), "A missed meal was made up.")
	message.SetString(lang, eventKey("FEED_REJECTED"), "Fed at the wrong time or with the wrong amount.")
	message.SetString(lang, eventKey("FEED_REFUSED"), "Feeding was refused.")
	message.SetString(lang, eventKey("HEALTH_DECLINED"), "A meal was missed and health declined.")
	message.SetString(lang, eventKey("FISH_DIED"), "A fish died.")
	message.SetString(lang, eventKey("DAY_ROLLOVER"), "A new day started.")
	message.SetString(lang, eventKey("CLOCK_STARTED"), "Clock started.")
	message.SetString(lang, eventKey("CLOCK_STOPPED"), "Clock stopped.")
	message.SetString(lang, eventKey("CLOCK_PAUSED"), "Clock paused.")
	message.SetString(lang, eventKey("CLOCK_RESUMED"), "Clock resumed.")
	message.SetString(lang, eventKey("SPEED_CHANGED"), "Simulation speed changed.")
	message.SetString(lang, eventKey("TIME_SET"), "Clock was set.")
}
