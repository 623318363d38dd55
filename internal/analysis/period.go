package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// ErrUnknownPeriod is returned by ParsePeriod for an unrecognized name
var ErrUnknownPeriod = errors.New("unknown period")

// Period selects the slice of the table shown on the dashboard
type Period int

const (
	PeriodToday Period = iota
	PeriodLastDay
	PeriodWeek
	PeriodMonth
)

func (p Period) String() string {
	switch p {
	case PeriodToday:
		return "today"
	case PeriodLastDay:
		return "last_day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	default:
		return "unknown"
	}
}

// Label is the display name of the period
func (p Period) Label() string {
	switch p {
	case PeriodToday:
		return "Today"
	case PeriodLastDay:
		return "Last day"
	case PeriodWeek:
		return "Week"
	default:
		return "Month"
	}
}

// ParsePeriod accepts the String form and a few spellings of each period
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "hoy":
		return PeriodToday, nil
	case "last_day", "lastday", "last-day", "day":
		return PeriodLastDay, nil
	case "week", "semana":
		return PeriodWeek, nil
	case "month", "mes":
		return PeriodMonth, nil
	default:
		return PeriodToday, fmt.Errorf("%w: %q", ErrUnknownPeriod, s)
	}
}

// Periods lists every period in display order
func Periods() []Period {
	return []Period{PeriodToday, PeriodLastDay, PeriodWeek, PeriodMonth}
}

// PeriodView is a table narrowed to a period. Empty is set instead of an
// error when nothing falls in the period.
type PeriodView struct {
	Period Period
	Start  time.Time
	End    time.Time
	Table  *Table
	Empty  bool
}

// FilterPeriod narrows t. Today matches the calendar date of today; the
// other periods are anchored at the last day with data: LastDay is that
// day, Week the 7 days before it and Month the 30 days before it, both
// inclusive.
func FilterPeriod(t *Table, p Period, today time.Time) PeriodView {
	view := PeriodView{Period: p}

	var start, end time.Time
	if p == PeriodToday {
		start, end = DayOf(today), DayOf(today)
	} else {
		maxDay, ok := t.MaxDay()
		if !ok {
			view.Table = &Table{}
			view.Empty = true
			return view
		}
		end = maxDay
		switch p {
		case PeriodLastDay:
			start = maxDay
		case PeriodWeek:
			start = maxDay.AddDate(0, 0, -7)
		default:
			start = maxDay.AddDate(0, 0, -30)
		}
	}

	view.Start, view.End = start, end
	view.Table = t.Between(start, end)
	view.Empty = view.Table.Empty()
	return view
}

// DefaultPeriod picks the narrowest period that has recent data: Today if
// today has rows, LastDay if yesterday does, Week if any of the six days
// before that does, otherwise Month.
func DefaultPeriod(t *Table, today time.Time) Period {
	today = DayOf(today)
	has := make(map[string]bool)
	for _, d := range t.Days() {
		has[dayKey(d)] = true
	}

	switch {
	case has[dayKey(today)]:
		return PeriodToday
	case has[dayKey(today.AddDate(0, 0, -1))]:
		return PeriodLastDay
	}
	for i := 2; i <= 7; i++ {
		if has[dayKey(today.AddDate(0, 0, -i))] {
			return PeriodWeek
		}
	}
	return PeriodMonth
}

// Aggregation of a metric within a bucket
type Aggregation int

const (
	AggMean Aggregation = iota
	AggSum
)

// Metric extracts one numeric value from a row. Reading, when set, labels
// the headline value of a card.
type Metric struct {
	Name    string
	Agg     Aggregation
	Value   func(Row) *float64
	Reading func(*float64) string
}

// Dashboard metrics
var (
	MetricWellness = Metric{Name: "wellness", Agg: AggMean, Value: func(r Row) *float64 {
		return WellnessComposite(r.Scores())
	}, Reading: func(v *float64) string {
		if v == nil {
			return "no data"
		}
		return WellnessReading(*v)
	}}
	MetricRPE = Metric{Name: "rpe", Agg: AggMean, Value: func(r Row) *float64 {
		return intToFloat(r.RPE)
	}, Reading: RPEReading}
	MetricLoad = Metric{Name: "load", Agg: AggSum, Value: func(r Row) *float64 {
		return r.InternalLoad()
	}}
	MetricPain = Metric{Name: "pain", Agg: AggMean, Value: func(r Row) *float64 {
		return intToFloat(r.Pain)
	}}
)

// TrendPoint is one bucket of a trend series
type TrendPoint struct {
	Label string
	Start time.Time // first day of the bucket
	Value float64
}

// Trend groups the metric into calendar buckets for the period (day for
// Today and LastDay, ISO week for Week, month for Month) in chronological
// order. Buckets without a value are omitted.
func Trend(t *Table, p Period, m Metric) []TrendPoint {
	type bucket struct {
		label string
		start time.Time
		total float64
		n     int
	}
	buckets := make(map[string]*bucket)

	for _, r := range t.Rows() {
		v := m.Value(r)
		if v == nil {
			continue
		}
		var label string
		var start time.Time
		switch p {
		case PeriodWeek:
			label = r.Week.String()
			start, _ = weekRange(r.Day)
		case PeriodMonth:
			label = r.Month.String()
			start, _ = monthRange(r.Day)
		default:
			label = dayKey(r.Day)
			start = r.Day
		}
		b, ok := buckets[label]
		if !ok {
			b = &bucket{label: label, start: start}
			buckets[label] = b
		}
		b.total += *v
		b.n++
	}

	points := make([]TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		value := b.total
		if m.Agg == AggMean {
			value = b.total / float64(b.n)
		}
		points = append(points, TrendPoint{Label: b.label, Start: b.start, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Start.Before(points[j].Start) })
	return points
}

// TrendValues returns the bare values of a trend series
func TrendValues(points []TrendPoint) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

// CalcDelta returns the percent change between the last two values,
// rounded to one decimal. It is 0 with fewer than two values or when the
// previous value is 0.
func CalcDelta(values []float64) float64 {
	n := len(values)
	if n < 2 || values[n-2] == 0 {
		return 0
	}
	return round1((values[n-1] - values[n-2]) / values[n-2] * 100)
}

// MetricBlock is one dashboard card: headline value, sparkline and delta
type MetricBlock struct {
	Metric  string
	Value   *float64
	Series  []float64
	Delta   float64
	Reading string // empty for metrics without one
}

// MetricBlockFor summarizes a metric over a period view. Single-day periods
// report the mean (or sum) of the view with no delta; Week and Month report
// the last bucket of the trend and its change from the one before.
func MetricBlockFor(view PeriodView, m Metric) MetricBlock {
	block := metricBlock(view, m)
	if m.Reading != nil {
		block.Reading = m.Reading(block.Value)
	}
	return block
}

func metricBlock(view PeriodView, m Metric) MetricBlock {
	block := MetricBlock{Metric: m.Name}

	if view.Period == PeriodToday || view.Period == PeriodLastDay {
		var total float64
		n := 0
		for _, r := range view.Table.Rows() {
			if v := m.Value(r); v != nil {
				total += *v
				n++
			}
		}
		if n == 0 {
			return block
		}
		value := total
		if m.Agg == AggMean {
			value = round1(total / float64(n))
		}
		block.Value = &value
		block.Series = []float64{value}
		return block
	}

	block.Series = TrendValues(Trend(view.Table, view.Period, m))
	if n := len(block.Series); n > 0 {
		value := block.Series[n-1]
		if m.Agg == AggMean {
			value = round1(value)
		}
		block.Value = &value
		block.Delta = CalcDelta(block.Series)
	}
	return block
}

// Wellness thresholds for the at-risk rule
const (
	AtRiskCompositeBelow = 15.0 // mean score x 5
	AtRiskPainAbove      = 3.0
)

// AthleteWellness holds one athlete's period means of the five scores.
// A field nobody reported is nil.
type AthleteWellness struct {
	AthleteID   string
	AthleteName string
	Recovery    *float64
	Energy      *float64
	Sleep       *float64
	Stress      *float64
	Pain        *float64
	MeanScore   *float64 // mean of the field means, 1-5
	AtRisk      bool
}

// Composite returns MeanScore on the 25-point scale
func (w AthleteWellness) Composite() *float64 {
	if w.MeanScore == nil {
		return nil
	}
	v := *w.MeanScore * 5
	return &v
}

// AthleteWellnessMeans averages each athlete's check-in fields over the
// table. An athlete is at risk when their composite is under 15 or their
// mean pain is above 3.
func AthleteWellnessMeans(t *Table) []AthleteWellness {
	type acc struct {
		sum [5]float64
		n   [5]int
	}
	accs := make(map[string]*acc)
	checkIns := t.CheckIns()
	for _, r := range checkIns.Rows() {
		a, ok := accs[r.AthleteID]
		if !ok {
			a = &acc{}
			accs[r.AthleteID] = a
		}
		for i, v := range []*int{r.Recovery, r.Energy, r.Sleep, r.Stress, r.Pain} {
			if v != nil {
				a.sum[i] += float64(*v)
				a.n[i]++
			}
		}
	}

	names := checkIns.AthleteNames()
	out := make([]AthleteWellness, 0, len(accs))
	for _, id := range checkIns.Athletes() {
		a := accs[id]
		var means [5]*float64
		var total float64
		fields := 0
		for i := range means {
			means[i] = meanOf(a.sum[i], a.n[i])
			if means[i] != nil {
				total += *means[i]
				fields++
			}
		}
		w := AthleteWellness{
			AthleteID:   id,
			AthleteName: names[id],
			Recovery:    means[0],
			Energy:      means[1],
			Sleep:       means[2],
			Stress:      means[3],
			Pain:        means[4],
			MeanScore:   meanOf(total, fields),
		}
		if c := w.Composite(); c != nil && *c < AtRiskCompositeBelow {
			w.AtRisk = true
		}
		if w.Pain != nil && *w.Pain > AtRiskPainAbove {
			w.AtRisk = true
		}
		out = append(out, w)
	}
	return out
}

// AlertSummary is the group "at risk" card
type AlertSummary struct {
	AtRisk    int
	Athletes  int
	Percent   float64 // rounded to one decimal, 0 when no athletes
	AtRiskIDs []string
}

// CountAlerts counts athletes at risk over the table's check-ins
func CountAlerts(t *Table) AlertSummary {
	var summary AlertSummary
	for _, w := range AthleteWellnessMeans(t) {
		summary.Athletes++
		if w.AtRisk {
			summary.AtRisk++
			summary.AtRiskIDs = append(summary.AtRiskIDs, w.AthleteID)
		}
	}
	if summary.Athletes > 0 {
		summary.Percent = round1(float64(summary.AtRisk) / float64(summary.Athletes) * 100)
	}
	return summary
}

// PlayerSummary is one row of the period summary table
type PlayerSummary struct {
	AthleteWellness
	MeanRPE    *float64
	TotalLoad  float64
	Records    int
	PeriodDays int // distinct days in the whole period, shared by every row
}

// PlayerSummaries builds the per-athlete summary of a period
func PlayerSummaries(t *Table) []PlayerSummary {
	wellness := make(map[string]AthleteWellness)
	for _, w := range AthleteWellnessMeans(t) {
		wellness[w.AthleteID] = w
	}
	names := t.AthleteNames()
	periodDays := len(t.Days())

	var out []PlayerSummary
	for _, id := range t.Athletes() {
		rows := t.ForAthlete(id).Rows()
		s := PlayerSummary{PeriodDays: periodDays, Records: len(rows)}
		if w, ok := wellness[id]; ok {
			s.AthleteWellness = w
		} else {
			s.AthleteWellness = AthleteWellness{AthleteID: id, AthleteName: names[id]}
		}

		var rpeSum float64
		rpeN := 0
		for _, r := range rows {
			if r.RPE != nil {
				rpeSum += float64(*r.RPE)
				rpeN++
			}
			if ua := r.InternalLoad(); ua != nil {
				s.TotalLoad += *ua
			}
		}
		s.MeanRPE = meanOf(rpeSum, rpeN)
		out = append(out, s)
	}
	return out
}

// RosterEntry is an athlete expected to submit
type RosterEntry struct {
	AthleteID   string
	AthleteName string
}

// Pending lists roster athletes still owing a submission
type Pending struct {
	CheckIn  []RosterEntry // no record at all in the table
	CheckOut []RosterEntry // no check-out data in the table
}

// PendingSubmissions compares a roster against the table, typically a
// single-day period view. Both lists are sorted by name.
func PendingSubmissions(t *Table, roster []RosterEntry) Pending {
	anyRecord := make(map[string]bool)
	checkedOut := make(map[string]bool)
	for _, r := range t.Rows() {
		anyRecord[r.AthleteID] = true
		if r.HasCheckOut() {
			checkedOut[r.AthleteID] = true
		}
	}

	var p Pending
	for _, a := range roster {
		if !anyRecord[a.AthleteID] {
			p.CheckIn = append(p.CheckIn, a)
		}
		if !checkedOut[a.AthleteID] {
			p.CheckOut = append(p.CheckOut, a)
		}
	}
	sortRoster(p.CheckIn)
	sortRoster(p.CheckOut)
	return p
}

func sortRoster(entries []RosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].AthleteName), strings.ToLower(entries[j].AthleteName)
		if a != b {
			return a < b
		}
		return entries[i].AthleteID < entries[j].AthleteID
	})
}

// MatchdayLabel renders days relative to matchday: MD-2, MD, MD+1
func MatchdayLabel(offset *int) string {
	switch {
	case offset == nil:
		return ""
	case *offset == 0:
		return "MD"
	case *offset > 0:
		return fmt.Sprintf("MD+%d", *offset)
	default:
		return fmt.Sprintf("MD%d", *offset)
	}
}

func intToFloat(p *int) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p)
	return &v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
