package analysis

import (
	"testing"
)

func TestWellnessIndex(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   *float64
	}{
		{"all ones", scores(1, 1, 1, 1, 1), floatPtr(4.5)},
		{"all fives", scores(5, 5, 5, 5, 5), floatPtr(6.5)},
		{"best case", scores(5, 1, 5, 1, 1), floatPtr(0.5)},
		{"clamped at ten", scores(1, 5, 1, 5, 5), floatPtr(10)},
		{"incomplete", scores(1, 1, 1, 1), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatPtr(t, "WellnessIndex()", WellnessIndex(tt.scores), tt.want, 1e-9)
		})
	}
}

func TestWellnessAlerts(t *testing.T) {
	table := mustTable(t,
		checkIn("a", day(2024, 3, 1), 1, 5, 1, 5, 5), // 10, superseded below
		checkIn("a", day(2024, 3, 2), 5, 1, 5, 1, 1), // 0.5
		checkIn("b", day(2024, 3, 2), 1, 5, 1, 5, 5), // 10
		checkIn("c", day(2024, 3, 2), 1, 5),          // incomplete
		checkIn("d", day(2024, 3, 5), 1, 5, 1, 5, 5), // after reference
	)

	report := WellnessAlerts(table, day(2024, 3, 3), DefaultAlertThreshold)
	if len(report.Alerts) != 2 {
		t.Fatalf("len(Alerts) = %d, want 2", len(report.Alerts))
	}
	if report.Alerts[0].AthleteID != "b" || !report.Alerts[0].Flagged {
		t.Errorf("Alerts[0] = %+v, want b flagged", report.Alerts[0])
	}
	if report.Alerts[1].Flagged {
		t.Errorf("a flagged from a superseded check-in")
	}
	if report.FlaggedCount != 1 {
		t.Errorf("FlaggedCount = %d, want 1", report.FlaggedCount)
	}
	assertFloatPtr(t, "FlaggedPercent", report.FlaggedPercent, floatPtr(50), 1e-9)
}

func TestReadings(t *testing.T) {
	if got := WellnessReading(21); got != "optimal" {
		t.Errorf("WellnessReading(21) = %q", got)
	}
	if got := WellnessReading(15); got != "moderate" {
		t.Errorf("WellnessReading(15) = %q", got)
	}
	if got := WellnessReading(14.9); got != "fatigued" {
		t.Errorf("WellnessReading(14.9) = %q", got)
	}
	if got := RPEReading(nil); got != "no data" {
		t.Errorf("RPEReading(nil) = %q", got)
	}
	if got := RPEReading(floatPtr(7)); got != "moderate" {
		t.Errorf("RPEReading(7) = %q", got)
	}
}
