package queue

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/motogarage/backend/internal/models"
)

// weekdayKey maps a time.Weekday to the lowercase key used in WeekHours.
func weekdayKey(d time.Weekday) string {
	return models.WeekdayKeys[int(d)]
}

// parseClock parses an "HH:MM" string into minutes since midnight.
func parseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// minutesIntoDay returns now's local clock time as minutes since midnight.
func minutesIntoDay(now time.Time) int {
	return now.Hour()*60 + now.Minute()
}

// IsOpenAt reports whether the weekly schedule admits customers at now. The
// window is half-open: open <= now < close. A day with Enabled=false is
// closed regardless of the clock. Malformed hours close the day; the caller
// logs the fallback.
func IsOpenAt(hours models.WeekHours, now time.Time) (bool, error) {
	day, ok := hours[weekdayKey(now.Weekday())]
	if !ok || !day.Enabled {
		return false, nil
	}
	openMin, err := parseClock(day.Open)
	if err != nil {
		return false, err
	}
	closeMin, err := parseClock(day.Close)
	if err != nil {
		return false, err
	}
	cur := minutesIntoDay(now)
	return cur >= openMin && cur < closeMin, nil
}

// ValidateWeekHours checks that a replacement schedule names all seven days
// with parseable windows. Partial updates are not supported.
func ValidateWeekHours(hours models.WeekHours) error {
	for _, key := range models.WeekdayKeys {
		day, ok := hours[key]
		if !ok {
			return &ValidationError{Reason: "operating hours missing " + key}
		}
		openMin, err := parseClock(day.Open)
		if err != nil {
			return &ValidationError{Reason: key + ": " + err.Error()}
		}
		closeMin, err := parseClock(day.Close)
		if err != nil {
			return &ValidationError{Reason: key + ": " + err.Error()}
		}
		if day.Enabled && openMin >= closeMin {
			return &ValidationError{Reason: key + ": open must be before close"}
		}
	}
	if len(hours) != len(models.WeekdayKeys) {
		return &ValidationError{Reason: "operating hours must name exactly seven days"}
	}
	return nil
}

// DefaultWeekHours is the schedule used when none has been configured:
// Monday through Saturday 08:00-17:00, Sunday closed.
func DefaultWeekHours() models.WeekHours {
	hours := models.WeekHours{}
	for _, key := range models.WeekdayKeys {
		hours[key] = models.DayHours{Open: "08:00", Close: "17:00", Enabled: key != "sunday"}
	}
	return hours
}
