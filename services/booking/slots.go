package booking

import (
	"fmt"
	"time"

	"homeservice/models"
)

const (
	DateLayout = "2006-01-02"

	OpeningHour = 8
	ClosingHour = 20 // last bookable start hour
)

// ParseDate reads a YYYY-MM-DD date as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return d, nil
}

// GenerateSlots lists the hourly start times bookable on date, as seen at now.
// A future date gets every hour from 08:00 to 20:00. Today drops hours that
// have already started, except the current one, and is empty from 20:00 on.
// Past dates get none.
func GenerateSlots(date time.Time, now time.Time) []models.TimeSlot {
	loc := date.Location()
	now = now.In(loc)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	first := OpeningHour
	switch {
	case day.Before(today):
		return []models.TimeSlot{}
	case day.Equal(today):
		if now.Hour() >= ClosingHour {
			return []models.TimeSlot{}
		}
		if now.Hour() > first {
			first = now.Hour()
		}
	}

	slots := make([]models.TimeSlot, 0, ClosingHour-OpeningHour+1)
	for h := first; h <= ClosingHour; h++ {
		start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, loc)
		slots = append(slots, models.TimeSlot{
			Time:  start.Format("15:04"),
			Label: start.Format("3:04 PM"),
		})
	}
	return slots
}

// SlotAvailable reports whether slot is one of the generated start times.
func SlotAvailable(slots []models.TimeSlot, slot string) bool {
	for _, s := range slots {
		if s.Time == slot {
			return true
		}
	}
	return false
}
