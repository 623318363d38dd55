package analysis

import (
	"math"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// checkIn builds a check-in record with scores in recovery, energy, sleep,
// stress, pain order; 0 leaves a field unreported
func checkIn(athlete string, date time.Time, values ...int) Record {
	r := Record{AthleteID: athlete, SessionDate: date, Shift: Shift1}
	s := scores(values...)
	r.Recovery, r.Energy, r.Sleep, r.Stress, r.Pain = s.Recovery, s.Energy, s.Sleep, s.Stress, s.Pain
	return r
}

func checkOut(athlete string, date time.Time, minutes, rpe int) Record {
	return Record{
		AthleteID:      athlete,
		SessionDate:    date,
		Shift:          Shift1,
		SessionMinutes: intPtr(minutes),
		RPE:            intPtr(rpe),
	}
}

// loadRecord builds a check-out whose internal load equals ua (ua must be a multiple of 10)
func loadRecord(athlete string, date time.Time, ua int) Record {
	return checkOut(athlete, date, ua/10, 10)
}

func mustTable(t *testing.T, records ...Record) *Table {
	t.Helper()
	table, err := NewTable(records)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	return table
}

func assertFloatPtr(t *testing.T, name string, got, want *float64, delta float64) {
	t.Helper()
	switch {
	case want == nil && got == nil:
	case want == nil:
		t.Errorf("%s = %v, want nil", name, *got)
	case got == nil:
		t.Errorf("%s = nil, want %v", name, *want)
	case math.Abs(*got-*want) > delta:
		t.Errorf("%s = %v, want %v", name, *got, *want)
	}
}
