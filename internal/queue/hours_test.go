package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/motogarage/backend/internal/models"
)

func mondayAt(hour, min int) time.Time {
	// 2025-03-03 is a Monday.
	return time.Date(2025, 3, 3, hour, min, 0, 0, time.Local)
}

func TestIsOpenAtWithinWindow(t *testing.T) {
	hours := DefaultWeekHours()

	open, err := IsOpenAt(hours, mondayAt(10, 30))
	require.NoError(t, err)
	assert.True(t, open)
}

func TestIsOpenAtBeforeOpening(t *testing.T) {
	hours := DefaultWeekHours()

	open, err := IsOpenAt(hours, mondayAt(7, 59))
	require.NoError(t, err)
	assert.False(t, open)
}

func TestIsOpenAtBoundaries(t *testing.T) {
	hours := DefaultWeekHours()

	open, err := IsOpenAt(hours, mondayAt(8, 0))
	require.NoError(t, err)
	assert.True(t, open, "opening minute is inside the window")

	open, err = IsOpenAt(hours, mondayAt(17, 0))
	require.NoError(t, err)
	assert.False(t, open, "closing minute is outside the window")
}

func TestIsOpenAtDisabledDay(t *testing.T) {
	hours := DefaultWeekHours()
	hours["monday"] = models.DayHours{Open: "00:00", Close: "23:59", Enabled: false}

	open, err := IsOpenAt(hours, mondayAt(12, 0))
	require.NoError(t, err)
	assert.False(t, open, "disabled day stays closed even inside the window")
}

func TestIsOpenAtMissingDay(t *testing.T) {
	hours := models.WeekHours{}

	open, err := IsOpenAt(hours, mondayAt(12, 0))
	require.NoError(t, err)
	assert.False(t, open)
}

func TestIsOpenAtMalformedHours(t *testing.T) {
	hours := DefaultWeekHours()
	hours["monday"] = models.DayHours{Open: "eight", Close: "17:00", Enabled: true}

	_, err := IsOpenAt(hours, mondayAt(12, 0))
	assert.Error(t, err)
}

func TestValidateWeekHoursRequiresSevenDays(t *testing.T) {
	hours := DefaultWeekHours()
	delete(hours, "wednesday")

	err := ValidateWeekHours(hours)
	require.Error(t, err)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestValidateWeekHoursAcceptsDefault(t *testing.T) {
	assert.NoError(t, ValidateWeekHours(DefaultWeekHours()))
}

func TestValidateWeekHoursRejectsBadClock(t *testing.T) {
	hours := DefaultWeekHours()
	hours["friday"] = models.DayHours{Open: "08:00", Close: "25:00", Enabled: true}

	assert.Error(t, ValidateWeekHours(hours))
}

func TestValidateWeekHoursRejectsInvertedWindow(t *testing.T) {
	hours := DefaultWeekHours()
	hours["tuesday"] = models.DayHours{Open: "17:00", Close: "08:00", Enabled: true}

	err := ValidateWeekHours(hours)
	require.Error(t, err)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	// A disabled day's window is never consulted, so its ordering is not
	// enforced.
	hours["tuesday"] = models.DayHours{Open: "00:00", Close: "00:00", Enabled: false}
	assert.NoError(t, ValidateWeekHours(hours))
}
