package analysis

import (
	"sort"
	"time"
)

// DefaultAlertThreshold is the 0-10 wellness risk at which an athlete is flagged
const DefaultAlertThreshold = 7.0

// WellnessIndex rescales one complete check-in to 0-10:
// ((energy + stress + pain) - (recovery + sleep) + 8) / 20 * 10.
// The raw difference spans [-8, 12]. nil when any score is missing.
func WellnessIndex(s Scores) *float64 {
	if !s.Complete() {
		return nil
	}
	raw := float64(*s.Energy+*s.Stress+*s.Pain) - float64(*s.Recovery+*s.Sleep)
	idx := clamp((raw+8)/20*10, 0, 10)
	return &idx
}

// WellnessComposite is the sum of the five scores on the 5-25 scale, nil
// when incomplete.
func WellnessComposite(s Scores) *float64 {
	if !s.Complete() {
		return nil
	}
	v := float64(*s.Recovery + *s.Energy + *s.Sleep + *s.Stress + *s.Pain)
	return &v
}

// WellnessReading describes a group composite on the 25-point scale
func WellnessReading(composite float64) string {
	switch {
	case composite > 20:
		return "optimal"
	case composite >= 15:
		return "moderate"
	default:
		return "fatigued"
	}
}

// RPEReading describes a mean RPE
func RPEReading(rpe *float64) string {
	switch {
	case rpe == nil || *rpe == 0:
		return "no data"
	case *rpe < 5:
		return "low"
	case *rpe <= 7:
		return "moderate"
	default:
		return "high"
	}
}

// WellnessAlert is an athlete's latest complete check-in and its index
type WellnessAlert struct {
	AthleteID   string
	AthleteName string
	Date        time.Time
	Scores      Scores
	Index       float64
	Flagged     bool
}

// WellnessAlertReport covers every athlete with a complete check-in
type WellnessAlertReport struct {
	Threshold      float64
	Alerts         []WellnessAlert // highest index first
	FlaggedCount   int
	FlaggedPercent *float64
}

// WellnessAlerts indexes each athlete's most recent complete check-in up to
// ref (zero ref means no bound) and flags those at or above threshold.
func WellnessAlerts(t *Table, ref time.Time, threshold float64) WellnessAlertReport {
	report := WellnessAlertReport{Threshold: threshold}

	latest := make(map[string]Row)
	for _, r := range t.Between(time.Time{}, ref).Rows() {
		if r.Scores().Complete() {
			latest[r.AthleteID] = r
		}
	}

	for _, r := range latest {
		idx := WellnessIndex(r.Scores())
		alert := WellnessAlert{
			AthleteID:   r.AthleteID,
			AthleteName: r.AthleteName,
			Date:        r.Day,
			Scores:      r.Scores(),
			Index:       *idx,
			Flagged:     *idx >= threshold,
		}
		if alert.Flagged {
			report.FlaggedCount++
		}
		report.Alerts = append(report.Alerts, alert)
	}
	sort.Slice(report.Alerts, func(i, j int) bool {
		if report.Alerts[i].Index != report.Alerts[j].Index {
			return report.Alerts[i].Index > report.Alerts[j].Index
		}
		return report.Alerts[i].AthleteID < report.Alerts[j].AthleteID
	})

	if n := len(report.Alerts); n > 0 {
		pct := float64(report.FlaggedCount) / float64(n) * 100
		report.FlaggedPercent = &pct
	}
	return report
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
