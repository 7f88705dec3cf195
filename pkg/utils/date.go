package utils

import (
	"log"
	"time"
)

// GetEasternTimeLocation returns the US market session time zone.
func GetEasternTimeLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

func TimeNowET() time.Time {
	return time.Now().In(GetEasternTimeLocation())
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// CalendarDaysBetween returns whole calendar days from a to b, ignoring the
// time-of-day component of both. The dates are diffed in UTC so a DST
// transition between them cannot shave an hour off the count.
func CalendarDaysBetween(a, b time.Time) int {
	local := b.In(a.Location())
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

func FormatMonth(t time.Time) string {
	return t.Format("2006-01")
}
