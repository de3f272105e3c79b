package view

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Turkish

	message.SetString(lang, keyHealthGood, "İyi")
	message.SetString(lang, keyHealthStandard, "Normal")
	message.SetString(lang, keyHealthBad, "Kötü")
	message.SetString(lang, keyHealthDead, "Öldü")
	message.SetString(lang, keyHealthUnknown, "Bilinmiyor")

	message.SetString(lang, keyAdviceHours, "%d saat")
	message.SetString(lang, keyAdviceHoursMinutes, "%d saat %d dakika")
	message.SetString(lang, keyAdviceFeedNow, "Beslenme zamanı geldi!")

	message.SetString(lang, keyLoadFailed, "Balıklar yüklenemedi")
	message.SetString(lang, keyAllDead, "Tüm balıklar öldü")

	message.SetString(lang, eventKey("FISH_LOADED"), "Balıklar yüklendi.")
	message.SetString(lang, eventKey("FEED_ACCEPTED"), "Balık zamanında ve doğru miktarda beslendi.")
	message.SetString(lang, eventKey("FEED_FORGIVEN"), "Kaçırılan öğün telafi edildi.")
	message.SetString(lang, eventKey("FEED_REJECTED"), "Yanlış zamanda veya yanlış miktarda beslendi.")
	message.SetString(lang, eventKey("FEED_REFUSED"), "Besleme reddedildi.")
	message.SetString(lang, eventKey("HEALTH_DECLINED"), "Öğün kaçırıldı, sağlık kötüleşti.")
	message.SetString(lang, eventKey("FISH_DIED"), "Bir balık öldü.")
	message.SetString(lang, eventKey("DAY_ROLLOVER"), "Yeni gün başladı.")
	message.SetString(lang, eventKey("CLOCK_STARTED"), "Saat başlatıldı.")
	message.SetString(lang, eventKey("CLOCK_STOPPED"), "Saat durduruldu.")
	message.SetString(lang, eventKey("CLOCK_PAUSED"), "Saat duraklatıldı.")
	message.SetString(lang, eventKey("CLOCK_RESUMED"), "Saat devam ediyor.")
	message.SetString(lang, eventKey("SPEED_CHANGED"), "Simülasyon hızı değişti.")
	message.SetString(lang, eventKey("TIME_SET"), "Saat ayarlandı.")
}
