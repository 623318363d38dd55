package analysis

import (
	"fmt"
	"time"
)

// ISOWeek is an ISO-8601 (year, week) pair. Week numbers alone repeat every
// year, so both parts are always kept together.
type ISOWeek struct {
	Year int
	Week int
}

// WeekOf returns the ISO week containing day
func WeekOf(day time.Time) ISOWeek {
	y, w := day.ISOWeek()
	return ISOWeek{Year: y, Week: w}
}

// Before reports whether w sorts before other
func (w ISOWeek) Before(other ISOWeek) bool {
	if w.Year != other.Year {
		return w.Year < other.Year
	}
	return w.Week < other.Week
}

func (w ISOWeek) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Week)
}

// MonthKey is a (year, month) pair
type MonthKey struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing day
func MonthOf(day time.Time) MonthKey {
	return MonthKey{Year: day.Year(), Month: day.Month()}
}

// Before reports whether m sorts before other
func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m MonthKey) String() string {
	return fmt.Sprintf("%d-%02d", m.Year, int(m.Month))
}

// weekRange returns Monday and Sunday of the calendar week containing day
func weekRange(day time.Time) (time.Time, time.Time) {
	daysFromMonday := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start := DayOf(day).AddDate(0, 0, -daysFromMonday)
	return start, start.AddDate(0, 0, 6)
}

// monthRange returns the first and last day of the calendar month containing day
func monthRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// trailingRange returns the n-day window ending at and including day
func trailingRange(day time.Time, n int) (time.Time, time.Time) {
	end := DayOf(day)
	return end.AddDate(0, 0, -(n - 1)), end
}

func inRange(day, start, end time.Time) bool {
	return !day.Before(start) && !day.After(end)
}
