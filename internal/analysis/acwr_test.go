package analysis

import (
	"math"
	"testing"
)

func TestACWR(t *testing.T) {
	tests := []struct {
		name    string
		acute   float64
		chronic *float64
		want    *float64
	}{
		{"balanced", 700, floatPtr(100), floatPtr(1.0)},
		{"spike", 1400, floatPtr(100), floatPtr(2.0)},
		{"no acute load", 0, floatPtr(100), floatPtr(0)},
		{"chronic undefined", 700, nil, nil},
		{"chronic zero", 700, floatPtr(0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertFloatPtr(t, "ACWR()", ACWR(tt.acute, tt.chronic), tt.want, 1e-9)
		})
	}
}

func TestACWRMonotonicInAcuteLoad(t *testing.T) {
	chronic := floatPtr(250)
	prev := ACWR(0, chronic)
	for acute := 10.0; acute <= 5000; acute += 10 {
		got := ACWR(acute, chronic)
		if *got <= *prev {
			t.Fatalf("ACWR(%v) = %v, not above ACWR(%v) = %v", acute, *got, acute-10, *prev)
		}
		prev = got
	}
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		acwr *float64
		want ACWRBand
	}{
		{nil, BandUnknown},
		{floatPtr(0), BandLow},
		{floatPtr(0.79), BandLow},
		{floatPtr(0.8), BandSweetSpot},
		{floatPtr(1.29), BandSweetSpot},
		{floatPtr(1.3), BandElevated},
		{floatPtr(1.49), BandElevated},
		{floatPtr(1.5), BandDanger},
		{floatPtr(3), BandDanger},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := BandFor(tt.acwr); got != tt.want {
				t.Errorf("BandFor(%v) = %v, want %v", tt.acwr, got, tt.want)
			}
		})
	}
}

func TestComputeIndices(t *testing.T) {
	w := ComputeWindows(DailyLoads(scenarioTable(t)), day(2024, 3, 31))
	idx := ComputeIndices(w)

	// (1200 / 7) / 400
	assertFloatPtr(t, "ACWR", idx.ACWR, floatPtr(0.4286), 0.0001)
	if idx.Band != BandLow {
		t.Errorf("Band = %v, want low", idx.Band)
	}
	assertFloatPtr(t, "AdaptationIndex", idx.AdaptationIndex, floatPtr(400-171.43), 0.01)
	assertFloatPtr(t, "Monotony", idx.Monotony, floatPtr(4.899), 0.001)
	assertFloatPtr(t, "Variability", idx.Variability, floatPtr(81.65), 0.01)
}

func TestComputeIndicesUndefinedInputs(t *testing.T) {
	idx := ComputeIndices(ComputeWindows(nil, day(2024, 3, 31)))

	if idx.ACWR != nil || idx.AdaptationIndex != nil || idx.Monotony != nil || idx.Variability != nil {
		t.Errorf("ComputeIndices(empty) = %+v, want all nil", idx)
	}
	if idx.Band != BandUnknown {
		t.Errorf("Band = %v, want no data", idx.Band)
	}

	zeroStdDev := RollingWindowStats{WeeklyMean: floatPtr(300), WeeklyStdDev: floatPtr(0)}
	if got := ComputeIndices(zeroStdDev).Monotony; got != nil {
		t.Errorf("Monotony = %v, want nil when stddev is 0", *got)
	}
}

func TestACWRSeries(t *testing.T) {
	loads := DailyLoads(scenarioTable(t))
	points := ACWRSeries(loads, day(2024, 3, 31))

	// March 4 through March 31
	if len(points) != 28 {
		t.Fatalf("len(ACWRSeries()) = %d, want 28", len(points))
	}
	last := points[len(points)-1]
	assertFloatPtr(t, "last ACWR", last.ACWR, floatPtr(0.4286), 0.0001)

	first := points[0]
	// first day: acute 400/7 over chronic 400
	assertFloatPtr(t, "first ACWR", first.ACWR, floatPtr(1.0/7), 1e-9)
	for _, p := range points {
		if p.ACWR != nil && (math.IsNaN(*p.ACWR) || math.IsInf(*p.ACWR, 0)) {
			t.Fatalf("ACWR on %v is %v", p.Date, *p.ACWR)
		}
	}

	if ACWRSeries(nil, day(2024, 3, 31)) != nil {
		t.Error("ACWRSeries(nil) should be nil")
	}
}

func TestBuildLoadReport(t *testing.T) {
	b1 := loadRecord("b", day(2024, 3, 30), 200)
	b2 := loadRecord("b", day(2024, 3, 29), 100)
	b2.Shift = Shift2
	table := mustTable(t, append(scenarioRecords(), b1, b2)...)

	t.Run("whole team", func(t *testing.T) {
		report := BuildLoadReport(table, LoadFilter{})
		if report.Empty {
			t.Fatal("report unexpectedly empty")
		}
		if !report.ReferenceDay.Equal(day(2024, 3, 30)) {
			t.Errorf("ReferenceDay = %v, want last day with data", report.ReferenceDay)
		}
		if report.Windows.DayLoad != 700 {
			t.Errorf("DayLoad = %v, want 700", report.Windows.DayLoad)
		}
	})

	t.Run("shift filter", func(t *testing.T) {
		report := BuildLoadReport(table, LoadFilter{Shifts: []Shift{Shift2}})
		if len(report.Daily) != 1 || report.Daily[0].Load != 100 {
			t.Errorf("Daily = %+v, want only the shift 2 session", report.Daily)
		}
	})

	t.Run("athlete and range", func(t *testing.T) {
		report := BuildLoadReport(table, LoadFilter{
			Athletes: []string{"a"},
			Start:    day(2024, 3, 20),
			End:      day(2024, 3, 31),
		})
		if !report.ReferenceDay.Equal(day(2024, 3, 31)) {
			t.Errorf("ReferenceDay = %v, want filter end", report.ReferenceDay)
		}
		if report.Windows.Acute7dSum != 1200 {
			t.Errorf("Acute7dSum = %v, want 1200", report.Windows.Acute7dSum)
		}
		if len(report.Daily) != 4 {
			t.Errorf("len(Daily) = %d, want 4", len(report.Daily))
		}
		if got := report.Interpretation.AcuteFatigue; got != (Reading{LevelModerate, "controlled"}) {
			t.Errorf("AcuteFatigue = %+v, want controlled", got)
		}
		if got := report.Interpretation.ACWR.Level; got != LevelModerate {
			t.Errorf("ACWR reading level = %v, want moderate (under-loaded)", got)
		}
	})

	t.Run("empty selection", func(t *testing.T) {
		report := BuildLoadReport(table, LoadFilter{Athletes: []string{"nobody"}})
		if !report.Empty {
			t.Error("Empty = false, want true")
		}
	})
}

func TestLoadReadings(t *testing.T) {
	tests := []struct {
		name string
		got  Reading
		want Level
	}{
		{"weekly high", WeeklyLoadReading(2501), LevelHigh},
		{"weekly at 2500", WeeklyLoadReading(2500), LevelModerate},
		{"weekly moderate floor", WeeklyLoadReading(1500), LevelModerate},
		{"weekly low", WeeklyLoadReading(1499), LevelLow},
		{"acute elevated", AcuteFatigueReading(2001), LevelHigh},
		{"acute at 2000", AcuteFatigueReading(2000), LevelModerate},
		{"acute controlled floor", AcuteFatigueReading(1000), LevelModerate},
		{"acute low", AcuteFatigueReading(999), LevelLow},
		{"acwr missing", ACWRReading(nil), LevelUnknown},
		{"acwr overload", ACWRReading(floatPtr(1.51)), LevelHigh},
		{"acwr at 1.5", ACWRReading(floatPtr(1.5)), LevelLow},
		{"acwr under-loaded", ACWRReading(floatPtr(0.79)), LevelModerate},
		{"acwr balanced", ACWRReading(floatPtr(0.8)), LevelLow},
		{"monotony missing", MonotonyReading(nil), LevelUnknown},
		{"monotony high", MonotonyReading(floatPtr(1.81)), LevelHigh},
		{"monotony at 1.8", MonotonyReading(floatPtr(1.8)), LevelModerate},
		{"monotony moderate floor", MonotonyReading(floatPtr(1.5)), LevelModerate},
		{"monotony good", MonotonyReading(floatPtr(1.49)), LevelLow},
		{"adaptation missing", AdaptationReading(nil), LevelUnknown},
		{"adaptation negative", AdaptationReading(floatPtr(-0.1)), LevelHigh},
		{"adaptation neutral", AdaptationReading(floatPtr(0)), LevelModerate},
		{"adaptation positive", AdaptationReading(floatPtr(12)), LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.Level != tt.want {
				t.Errorf("Level = %v (%q), want %v", tt.got.Level, tt.got.Text, tt.want)
			}
			if tt.got.Text == "" {
				t.Error("Text is empty")
			}
		})
	}
}

func TestInjuryRiskLevel(t *testing.T) {
	tests := []struct {
		name   string
		acwr   *float64
		energy *float64
		want   Level
	}{
		{"no ratio", nil, floatPtr(2), LevelUnknown},
		{"no check-in", floatPtr(1.0), nil, LevelUnknown},
		{"ratio above 1.5", floatPtr(1.6), floatPtr(1), LevelHigh},
		{"tired", floatPtr(1.0), floatPtr(4), LevelHigh},
		{"ratio at 1.5", floatPtr(1.5), floatPtr(1), LevelModerate},
		{"ratio at 1.3", floatPtr(1.3), floatPtr(1), LevelModerate},
		{"energy 3", floatPtr(1.0), floatPtr(3), LevelModerate},
		{"fresh and balanced", floatPtr(1.29), floatPtr(2), LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InjuryRiskLevel(tt.acwr, tt.energy); got != tt.want {
				t.Errorf("InjuryRiskLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWithInjuryRisk(t *testing.T) {
	tired := checkIn("a", day(2024, 3, 2), 1, 4, 1, 1, 1)
	tired.Shift = Shift2
	table := mustTable(t,
		loadRecord("a", day(2024, 3, 1), 400),
		loadRecord("a", day(2024, 3, 2), 400),
		tired,
	)
	points := WithInjuryRisk(ACWRSeries(DailyLoads(table), day(2024, 3, 3)), table)
	if len(points) != 3 {
		t.Fatalf("len(points) = %d, want 3", len(points))
	}

	// 3/1 has a ratio but no check-in
	if points[0].InjuryRisk != LevelUnknown || points[0].Energy != nil {
		t.Errorf("3/1 = %v, energy %v, want unknown without energy", points[0].InjuryRisk, points[0].Energy)
	}
	assertFloatPtr(t, "3/2 energy", points[1].Energy, floatPtr(4), 0)
	if points[1].InjuryRisk != LevelHigh {
		t.Errorf("3/2 InjuryRisk = %v, want high", points[1].InjuryRisk)
	}
}
