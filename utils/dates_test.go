package utils_test

import (
	"testing"
	"time"

	"birthday-backend/utils"

	"github.com/stretchr/testify/assert"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestNextBirthday_LaterThisYear(t *testing.T) {
	today := time.Date(2024, 6, 10, 14, 30, 0, 0, ist)
	next := utils.NextBirthday(time.June, 15, today)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, ist), next)
}

func TestNextBirthday_AlreadyPassedRollsToNextYear(t *testing.T) {
	today := time.Date(2024, 6, 10, 14, 30, 0, 0, ist)
	next := utils.NextBirthday(time.June, 1, today)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, ist), next)
}

func TestNextBirthday_SameDayCountsAsToday(t *testing.T) {
	today := time.Date(2024, 6, 10, 23, 59, 0, 0, ist)
	next := utils.NextBirthday(time.June, 10, today)
	assert.Equal(t, time.Date(2024, 6, 10, 0, 0, 0, 0, ist), next)
	assert.Equal(t, 0, utils.DaysUntilBirthday(time.June, 10, today))
}

func TestNextBirthday_LeapDayInLeapYear(t *testing.T) {
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, ist)
	next := utils.NextBirthday(time.February, 29, today)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, ist), next)
}

func TestNextBirthday_LeapDayInNonLeapYearSkipsAhead(t *testing.T) {
	today := time.Date(2025, 1, 10, 0, 0, 0, 0, ist)
	next := utils.NextBirthday(time.February, 29, today)
	// 2026 is not a leap year either, so the date normalizes to Mar 1.
	assert.Equal(t, 2026, next.Year())
	assert.Equal(t, time.March, next.Month())
	assert.Equal(t, 1, next.Day())
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2024, 6, 10, 23, 0, 0, 0, ist)
	end := time.Date(2024, 6, 12, 1, 0, 0, 0, ist)
	assert.Equal(t, 2, utils.DaysBetween(start, end))
}

func TestIsBirthdayToday(t *testing.T) {
	today := time.Date(2024, 3, 8, 9, 0, 0, 0, ist)
	assert.True(t, utils.IsBirthdayToday(time.March, 8, today))
	assert.False(t, utils.IsBirthdayToday(time.March, 9, today))
	// Month and day must not be swapped.
	assert.False(t, utils.IsBirthdayToday(time.August, 3, today))
}

func TestIsLeapYear(t *testing.T) {
	assert.True(t, utils.IsLeapYear(2024))
	assert.True(t, utils.IsLeapYear(2000))
	assert.False(t, utils.IsLeapYear(2025))
	assert.False(t, utils.IsLeapYear(1900))
}

func TestCalculateAge(t *testing.T) {
	birthdate := time.Date(1990, 6, 15, 0, 0, 0, 0, ist)

	beforeBirthday := time.Date(2024, 6, 10, 0, 0, 0, 0, ist)
	assert.Equal(t, 33, utils.CalculateAge(birthdate, beforeBirthday))

	onBirthday := time.Date(2024, 6, 15, 0, 0, 0, 0, ist)
	assert.Equal(t, 34, utils.CalculateAge(birthdate, onBirthday))

	afterBirthday := time.Date(2024, 12, 1, 0, 0, 0, 0, ist)
	assert.Equal(t, 34, utils.CalculateAge(birthdate, afterBirthday))
}
