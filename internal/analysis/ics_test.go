package analysis

import (
	"testing"
)

func scores(values ...int) Scores {
	var s Scores
	fields := []**int{&s.Recovery, &s.Energy, &s.Sleep, &s.Stress, &s.Pain}
	for i, v := range values {
		if v != 0 {
			*fields[i] = intPtr(v)
		}
	}
	return s
}

func TestClassifyICS(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   ICSClass
	}{
		{"all green", scores(1, 2, 1, 2, 1), ICSGreen},
		{"any red", scores(1, 1, 1, 1, 4), ICSRed},
		{"red outweighs greens", scores(5, 1, 1, 1, 1), ICSRed},
		{"three yellows", scores(2, 3, 3, 2, 3), ICSRed},
		{"three yellows without pain", scores(3, 3, 3, 1, 1), ICSRed},
		{"two yellows with pain", scores(3, 1, 1, 1, 3), ICSRed},
		{"two yellows without pain", scores(2, 2, 3, 3, 2), ICSYellow},
		{"one yellow not pain", scores(3, 1, 1, 1, 1), ICSGreen},
		{"pain is the only yellow", scores(1, 1, 1, 1, 3), ICSYellow},
		{"missing field", scores(1, 1, 1, 1, 0), ICSUnknown},
		{"nothing reported", Scores{}, ICSUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyICS(tt.scores); got != tt.want {
				t.Errorf("ClassifyICS() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Every combination of {missing, 1..5} over the five fields
func TestClassifyICSTotality(t *testing.T) {
	var v [5]int
	cases := 0
	for v[0] = 0; v[0] <= 5; v[0]++ {
		for v[1] = 0; v[1] <= 5; v[1]++ {
			for v[2] = 0; v[2] <= 5; v[2]++ {
				for v[3] = 0; v[3] <= 5; v[3]++ {
					for v[4] = 0; v[4] <= 5; v[4]++ {
						cases++
						checkICSCase(t, v)
					}
				}
			}
		}
	}
	if cases != 7776 {
		t.Fatalf("evaluated %d cases, want 6^5", cases)
	}
}

func checkICSCase(t *testing.T, v [5]int) {
	t.Helper()
	if got, want := ClassifyICS(scores(v[:]...)), expectedICS(v); got != want {
		t.Fatalf("ClassifyICS(%v) = %v, want %v", v, got, want)
	}
}

// expectedICS restates the rule table from counts alone, in its own order.
// Scores are recovery, energy, sleep, stress, pain; 0 is missing.
func expectedICS(v [5]int) ICSClass {
	var missing, reds, yellows int
	for _, x := range v {
		switch {
		case x == 0:
			missing++
		case x >= 4:
			reds++
		case x == 3:
			yellows++
		}
	}
	painYellow := v[4] == 3

	if missing > 0 {
		return ICSUnknown
	}
	if reds > 0 {
		return ICSRed
	}
	switch yellows {
	case 0:
		return ICSGreen
	case 1:
		if painYellow {
			return ICSYellow
		}
		return ICSGreen
	case 2:
		if painYellow {
			return ICSRed
		}
		return ICSYellow
	default:
		return ICSRed
	}
}

func TestExpectedICSSpotChecks(t *testing.T) {
	tests := []struct {
		v    [5]int
		want ICSClass
	}{
		{[5]int{1, 2, 1, 2, 1}, ICSGreen},
		{[5]int{3, 1, 1, 1, 1}, ICSGreen},
		{[5]int{1, 1, 1, 1, 3}, ICSYellow},
		{[5]int{3, 3, 1, 1, 1}, ICSYellow},
		{[5]int{3, 1, 1, 1, 3}, ICSRed},
		{[5]int{3, 3, 3, 1, 1}, ICSRed},
		{[5]int{1, 1, 5, 1, 1}, ICSRed},
		{[5]int{1, 1, 0, 1, 5}, ICSUnknown},
	}
	for _, tt := range tests {
		if got := expectedICS(tt.v); got != tt.want {
			t.Errorf("expectedICS(%v) = %v, want %v", tt.v, got, tt.want)
		}
		if got := ClassifyICS(scores(tt.v[:]...)); got != tt.want {
			t.Errorf("ClassifyICS(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestLatestICS(t *testing.T) {
	table := mustTable(t,
		checkIn("a", day(2024, 3, 1), 4, 1, 1, 1, 1),
		checkIn("a", day(2024, 3, 3), 1, 1, 1, 1, 1),
		checkIn("a", day(2024, 3, 5), 1, 1, 0, 1, 1), // incomplete
		checkOut("a", day(2024, 3, 6), 60, 5),
	)

	tests := []struct {
		name    string
		ref     int
		want    ICSClass
		wantDay int
		found   bool
	}{
		{"skips unknown days", 6, ICSGreen, 3, true},
		{"reference bounds the search", 2, ICSRed, 1, true},
		{"nothing before first check-in", 0, ICSUnknown, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := day(2024, 2, 29).AddDate(0, 0, tt.ref)
			got, date, found := LatestICS(table, "a", ref)
			if got != tt.want || found != tt.found {
				t.Fatalf("LatestICS() = %v, %v, want %v, %v", got, found, tt.want, tt.found)
			}
			if found && date.Day() != tt.wantDay {
				t.Errorf("date = %v, want day %d", date, tt.wantDay)
			}
		})
	}
}

func TestCountAndClassifyRows(t *testing.T) {
	table := mustTable(t,
		checkIn("a", day(2024, 3, 1), 1, 1, 1, 1, 1),
		checkIn("b", day(2024, 3, 1), 5, 1, 1, 1, 1),
		checkIn("c", day(2024, 3, 1), 3, 3, 1, 1, 1),
		checkIn("d", day(2024, 3, 1), 3),
		checkOut("e", day(2024, 3, 1), 60, 5),
	)

	counts := CountICS(table)
	want := ICSCounts{Red: 1, Yellow: 1, Green: 1, Unknown: 1}
	if counts != want {
		t.Errorf("CountICS() = %+v, want %+v", counts, want)
	}
	if counts.Total() != 4 {
		t.Errorf("Total() = %d, want 4", counts.Total())
	}

	entries := ClassifyRows(table)
	if len(entries) != 4 {
		t.Fatalf("len(ClassifyRows()) = %d, want 4", len(entries))
	}
	if entries[0].AthleteID != "b" || entries[0].Class != ICSRed {
		t.Errorf("first entry = %+v, want b RED", entries[0])
	}
	if entries[3].Class != ICSUnknown {
		t.Errorf("last entry = %v, want UNKNOWN", entries[3].Class)
	}
}
