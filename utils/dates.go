// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func DaysBetween(start, end time.Time) int {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	return int(end.Sub(start).Hours() / 24)
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// NextBirthday returns the next occurrence of a birthday on or after today,
// in today's location. A Feb 29 birthdate in a non-leap year falls through to
// next year's date (normalized to Mar 1 when that year is not a leap year
// either).
func NextBirthday(birthMonth time.Month, birthDay int, today time.Time) time.Time {
	year := today.Year()
	loc := today.Location()

	if birthMonth == time.February && birthDay == 29 && !IsLeapYear(year) {
		return time.Date(year+1, birthMonth, birthDay, 0, 0, 0, 0, loc)
	}

	next := time.Date(year, birthMonth, birthDay, 0, 0, 0, 0, loc)
	if next.Before(BeginningOfDay(today)) {
		next = time.Date(year+1, birthMonth, birthDay, 0, 0, 0, 0, loc)
	}
	return next
}

func DaysUntilBirthday(birthMonth time.Month, birthDay int, today time.Time) int {
	return DaysBetween(today, NextBirthday(birthMonth, birthDay, today))
}

// IsBirthdayToday matches on month and day only; the birth year is ignored.
func IsBirthdayToday(birthMonth time.Month, birthDay int, today time.Time) bool {
	return today.Month() == birthMonth && today.Day() == birthDay
}

func CalculateAge(birthdate, today time.Time) int {
	age := today.Year() - birthdate.Year()
	thisYears := time.Date(today.Year(), birthdate.Month(), birthdate.Day(), 0, 0, 0, 0, today.Location())
	if BeginningOfDay(today).Before(thisYears) {
		age--
	}
	return age
}
