package analysis

import (
	"time"
)

// ACWR band thresholds
const (
	ACWRSweetSpotLow = 0.8
	ACWRElevatedLow  = 1.3
	ACWRDangerLow    = 1.5
)

// ACWRBand is the risk zone of an acute:chronic workload ratio
type ACWRBand int

const (
	BandUnknown ACWRBand = iota
	BandLow
	BandSweetSpot
	BandElevated
	BandDanger
)

func (b ACWRBand) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandSweetSpot:
		return "sweet spot"
	case BandElevated:
		return "elevated"
	case BandDanger:
		return "danger"
	default:
		return "no data"
	}
}

// Description returns a human-readable reading of the band
func (b ACWRBand) Description() string {
	switch b {
	case BandLow:
		return "Under-loaded relative to baseline"
	case BandSweetSpot:
		return "Load matches chronic baseline"
	case BandElevated:
		return "Load spike - monitor closely"
	case BandDanger:
		return "Danger zone - reduce load"
	default:
		return "Not enough load history"
	}
}

// Level grades how much a reading should concern staff
type Level int

const (
	LevelUnknown Level = iota
	LevelLow
	LevelModerate
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "low"
	case LevelModerate:
		return "moderate"
	case LevelHigh:
		return "high"
	default:
		return "no data"
	}
}

// Reading is a graded interpretation of one load figure
type Reading struct {
	Level Level
	Text  string
}

// Load interpretation thresholds. Loads are in UA.
const (
	WeeklyLoadHighAbove      = 2500.0
	WeeklyLoadModerateFrom   = 1500.0
	AcuteFatigueHighAbove    = 2000.0
	AcuteFatigueModerateFrom = 1000.0
	MonotonyHighAbove        = 1.8
	MonotonyModerateFrom     = 1.5
)

// WeeklyLoadReading grades the calendar week's total load
func WeeklyLoadReading(weeklySum float64) Reading {
	switch {
	case weeklySum > WeeklyLoadHighAbove:
		return Reading{LevelHigh, "high"}
	case weeklySum >= WeeklyLoadModerateFrom:
		return Reading{LevelModerate, "moderate"}
	default:
		return Reading{LevelLow, "low"}
	}
}

// AcuteFatigueReading grades the 7-day acute load sum
func AcuteFatigueReading(acuteSum float64) Reading {
	switch {
	case acuteSum > AcuteFatigueHighAbove:
		return Reading{LevelHigh, "elevated"}
	case acuteSum >= AcuteFatigueModerateFrom:
		return Reading{LevelModerate, "controlled"}
	default:
		return Reading{LevelLow, "low"}
	}
}

// ACWRReading interprets the ratio. Exactly 1.5 still reads as balanced
// here, unlike BandFor.
func ACWRReading(acwr *float64) Reading {
	switch {
	case acwr == nil:
		return Reading{LevelUnknown, "not enough data"}
	case *acwr > ACWRDangerLow:
		return Reading{LevelHigh, "high overload risk"}
	case *acwr < ACWRSweetSpotLow:
		return Reading{LevelModerate, "under-loaded or lacking stimulus"}
	default:
		return Reading{LevelLow, "acute and chronic load balanced"}
	}
}

// MonotonyReading grades session-to-session variation within the week
func MonotonyReading(monotony *float64) Reading {
	switch {
	case monotony == nil:
		return Reading{LevelUnknown, "no variability data"}
	case *monotony > MonotonyHighAbove:
		return Reading{LevelHigh, "little variability between sessions"}
	case *monotony >= MonotonyModerateFrom:
		return Reading{LevelModerate, "moderate variability"}
	default:
		return Reading{LevelLow, "good weekly variability"}
	}
}

// AdaptationReading reads the sign of the adaptation index
func AdaptationReading(adaptation *float64) Reading {
	switch {
	case adaptation == nil:
		return Reading{LevelUnknown, "not available"}
	case *adaptation < 0:
		return Reading{LevelHigh, "negative, fatigue dominates"}
	case *adaptation == 0:
		return Reading{LevelModerate, "neutral"}
	default:
		return Reading{LevelLow, "positive, training is being absorbed"}
	}
}

// LoadInterpretation is the written summary of a load report
type LoadInterpretation struct {
	WeeklyLoad   Reading
	AcuteFatigue Reading
	ACWR         Reading
	Monotony     Reading
	Adaptation   Reading
}

// Interpret grades the windows and indices of one load series
func Interpret(w RollingWindowStats, idx LoadIndices) LoadInterpretation {
	return LoadInterpretation{
		WeeklyLoad:   WeeklyLoadReading(w.WeeklySum),
		AcuteFatigue: AcuteFatigueReading(w.Acute7dSum),
		ACWR:         ACWRReading(idx.ACWR),
		Monotony:     MonotonyReading(idx.Monotony),
		Adaptation:   AdaptationReading(idx.AdaptationIndex),
	}
}

// InjuryRiskLevel grades one day from its ACWR and reported energy (1-5,
// higher is more tired). Either input missing gives LevelUnknown.
func InjuryRiskLevel(acwr, energy *float64) Level {
	if acwr == nil || energy == nil {
		return LevelUnknown
	}
	x, e := *acwr, *energy
	switch {
	case x > ACWRDangerLow || e >= 4:
		return LevelHigh
	case (x >= ACWRElevatedLow && x <= ACWRDangerLow) || (e >= 3 && e < 4):
		return LevelModerate
	default:
		return LevelLow
	}
}

// BandFor classifies an ACWR value; nil is BandUnknown
func BandFor(acwr *float64) ACWRBand {
	if acwr == nil {
		return BandUnknown
	}
	switch x := *acwr; {
	case x < ACWRSweetSpotLow:
		return BandLow
	case x < ACWRElevatedLow:
		return BandSweetSpot
	case x < ACWRDangerLow:
		return BandElevated
	default:
		return BandDanger
	}
}

// ACWR returns (acuteSum / 7) / chronicMean, or nil when the chronic mean
// is missing or zero.
func ACWR(acuteSum float64, chronicMean *float64) *float64 {
	if chronicMean == nil || *chronicMean == 0 {
		return nil
	}
	v := (acuteSum / AcuteWindowDays) / *chronicMean
	return &v
}

// LoadIndices are the ratios derived from a RollingWindowStats
type LoadIndices struct {
	ACWR            *float64
	AdaptationIndex *float64 // chronic mean - acute per day; negative means recent fatigue dominates
	Monotony        *float64 // weekly mean / weekly stddev
	Variability     *float64 // weekly stddev
	Band            ACWRBand
}

// ComputeIndices derives ACWR, adaptation, monotony and variability
func ComputeIndices(w RollingWindowStats) LoadIndices {
	idx := LoadIndices{
		ACWR:        ACWR(w.Acute7dSum, w.Chronic28dMean),
		Variability: copyFloat(w.WeeklyStdDev),
	}
	idx.Band = BandFor(idx.ACWR)

	if w.Chronic28dMean != nil {
		a := *w.Chronic28dMean - w.Acute7dMeanPerDay
		idx.AdaptationIndex = &a
	}
	if w.WeeklyMean != nil && w.WeeklyStdDev != nil && *w.WeeklyStdDev > 0 {
		m := *w.WeeklyMean / *w.WeeklyStdDev
		idx.Monotony = &m
	}
	return idx
}

// ACWRPoint is one day of an ACWR time series
type ACWRPoint struct {
	Date           time.Time
	Load           float64
	Acute7dSum     float64
	Chronic28dMean *float64
	ACWR           *float64
	Band           ACWRBand

	Energy     *float64 // set by WithInjuryRisk
	InjuryRisk Level
}

// ACWRSeries evaluates the ratio for every calendar day from the first
// load day up to ref. Days without a session still get a point.
func ACWRSeries(loads []DailyLoad, ref time.Time) []ACWRPoint {
	if len(loads) == 0 {
		return nil
	}
	ref = DayOf(ref)
	first := DayOf(loads[0].Date)
	for _, dl := range loads[1:] {
		if d := DayOf(dl.Date); d.Before(first) {
			first = d
		}
	}

	var points []ACWRPoint
	for d := first; !d.After(ref); d = d.AddDate(0, 0, 1) {
		w := ComputeWindows(loads, d)
		acwr := ACWR(w.Acute7dSum, w.Chronic28dMean)
		points = append(points, ACWRPoint{
			Date:           d,
			Load:           w.DayLoad,
			Acute7dSum:     w.Acute7dSum,
			Chronic28dMean: w.Chronic28dMean,
			ACWR:           acwr,
			Band:           BandFor(acwr),
		})
	}
	return points
}

// WithInjuryRisk fills each point's energy from the athlete's check-in that
// day (the latest shift reporting one) and grades its injury risk.
func WithInjuryRisk(points []ACWRPoint, athlete *Table) []ACWRPoint {
	energy := make(map[string]float64)
	for _, r := range athlete.CheckIns().Rows() {
		if r.Energy != nil {
			energy[dayKey(r.Day)] = float64(*r.Energy)
		}
	}
	for i := range points {
		if e, ok := energy[dayKey(points[i].Date)]; ok {
			points[i].Energy = &e
		}
		points[i].InjuryRisk = InjuryRiskLevel(points[i].ACWR, points[i].Energy)
	}
	return points
}

// LoadFilter narrows the table for a load report. Empty fields do not filter.
type LoadFilter struct {
	Athletes []string // ids or names
	Shifts   []Shift
	Start    time.Time
	End      time.Time
}

// LoadReport is the team load view of a filtered selection
type LoadReport struct {
	Filter         LoadFilter
	Empty          bool
	ReferenceDay   time.Time
	Daily          []DailyLoad // summed across the selection
	Windows        RollingWindowStats
	Indices        LoadIndices
	Interpretation LoadInterpretation
}

// BuildLoadReport filters check-out rows, sums them per day across the
// selection and computes windows at the filter end (or the last day with
// data when no end is given).
func BuildLoadReport(t *Table, f LoadFilter) LoadReport {
	report := LoadReport{Filter: f}

	selected := t.CheckOuts().Filter(f.matches).Between(f.Start, f.End)
	report.Daily = GroupDailyLoads(DailyLoads(selected))
	if len(report.Daily) == 0 {
		report.Empty = true
		return report
	}

	report.ReferenceDay = report.Daily[len(report.Daily)-1].Date
	if !f.End.IsZero() {
		report.ReferenceDay = DayOf(f.End)
	}
	report.Windows = ComputeWindows(report.Daily, report.ReferenceDay)
	report.Indices = ComputeIndices(report.Windows)
	report.Interpretation = Interpret(report.Windows, report.Indices)
	return report
}

func (f LoadFilter) matches(r Row) bool {
	if len(f.Athletes) > 0 {
		found := false
		for _, a := range f.Athletes {
			if a == r.AthleteID || (r.AthleteName != "" && a == r.AthleteName) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Shifts) > 0 {
		for _, s := range f.Shifts {
			if s == r.Shift {
				return true
			}
		}
		return false
	}
	return true
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
